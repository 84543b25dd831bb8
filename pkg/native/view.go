package native

/*
#include "gridframe.h"
*/
import "C"

import (
	"math"
	"unsafe"

	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
)

// View is a dataframe.UpdatingDataframe over foreign gf_series buffers.
// Values are read in place: a NULL string and a NaN double are absent, ints
// and booleans are always present.
type View struct {
	columns []dataframe.SeriesMetadata
	rows    int
	strings [][]*C.char
	doubles [][]C.double
	ints    [][]C.int32_t
}

// NewView wraps a gf_dataframe. Every series must have a known type code
// and the same length.
func NewView(p unsafe.Pointer) (*View, error) {
	if p == nil {
		return nil, errors.Marshalling("dataframe pointer is NULL")
	}
	df := (*C.gf_dataframe)(p)
	n := int(df.series_count)
	if n < 0 {
		return nil, errors.Marshalling("negative series count %d", n)
	}
	if n > 0 && df.series == nil {
		return nil, errors.Marshalling("dataframe has %d series but no series array", n)
	}

	v := &View{
		columns: make([]dataframe.SeriesMetadata, n),
		strings: make([][]*C.char, n),
		doubles: make([][]C.double, n),
		ints:    make([][]C.int32_t, n),
	}
	for i, s := range unsafe.Slice(df.series, n) {
		if s.name == nil {
			return nil, errors.Marshalling("series %d has no name", i).WithDetail("series", i)
		}
		name := C.GoString(s.name)
		typ, err := SeriesTypeCodes.Value(int32(s._type))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeMarshalling, "series "+name).WithDetail("column", name)
		}
		length := int(s.data.length)
		if length < 0 || (length > 0 && s.data.ptr == nil) {
			return nil, errors.Marshalling("series %q has an invalid data array", name).WithDetail("column", name)
		}
		if i == 0 {
			v.rows = length
		} else if length != v.rows {
			return nil, errors.InvalidValue("series %q has %d rows, expected %d", name, length, v.rows).
				WithDetail("column", name)
		}

		v.columns[i] = dataframe.SeriesMetadata{
			Name:       name,
			Type:       typ,
			Index:      s.index != 0,
			Modifiable: s.modifiable != 0,
			Default:    s.is_default != 0,
		}
		switch typ {
		case dataframe.SeriesTypeString:
			v.strings[i] = unsafe.Slice((**C.char)(s.data.ptr), length)
		case dataframe.SeriesTypeDouble:
			v.doubles[i] = unsafe.Slice((*C.double)(s.data.ptr), length)
		default:
			v.ints[i] = unsafe.Slice((*C.int32_t)(s.data.ptr), length)
		}
	}
	return v, nil
}

func (v *View) RowCount() int { return v.rows }

func (v *View) Columns() []dataframe.SeriesMetadata { return v.columns }

func (v *View) StringValue(column, row int) (string, bool) {
	p := v.strings[column][row]
	if p == nil {
		return "", false
	}
	return C.GoString(p), true
}

func (v *View) DoubleValue(column, row int) (float64, bool) {
	d := float64(v.doubles[column][row])
	return d, !math.IsNaN(d)
}

func (v *View) IntValue(column, row int) (int32, bool) {
	return int32(v.ints[column][row]), true
}

func (v *View) BooleanValue(column, row int) (bool, bool) {
	return v.ints[column][row] != 0, true
}

// Copy returns the viewed columns in Go memory.
func (v *View) Copy() []*dataframe.Column {
	out := make([]*dataframe.Column, len(v.columns))
	for i, meta := range v.columns {
		col := &dataframe.Column{SeriesMetadata: meta}
		switch meta.Type {
		case dataframe.SeriesTypeString:
			col.Strings = make([]string, v.rows)
			col.Nulls = make([]bool, v.rows)
			for r := 0; r < v.rows; r++ {
				s, ok := v.StringValue(i, r)
				col.Strings[r], col.Nulls[r] = s, !ok
			}
		case dataframe.SeriesTypeDouble:
			col.Doubles = make([]float64, v.rows)
			for r, d := range v.doubles[i] {
				col.Doubles[r] = float64(d)
			}
		case dataframe.SeriesTypeInt:
			col.Ints = make([]int32, v.rows)
			for r, n := range v.ints[i] {
				col.Ints[r] = int32(n)
			}
		case dataframe.SeriesTypeBoolean:
			col.Booleans = make([]bool, v.rows)
			for r, n := range v.ints[i] {
				col.Booleans[r] = n != 0
			}
		}
		out[i] = col
	}
	return out
}
