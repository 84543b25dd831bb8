package arrowframe

import (
	"math"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
)

// Frame reads an arrow.Record as a dataframe.UpdatingDataframe. Nulls are
// absent values, and so are NaN doubles.
type Frame struct {
	rec     arrow.Record
	columns []dataframe.SeriesMetadata
	strings []*array.String
	doubles []*array.Float64
	ints    []*array.Int32
	bools   []*array.Boolean
}

// SeriesType maps an Arrow data type to a series type. Only utf8, float64,
// int32 and bool columns can be exchanged.
func SeriesType(t arrow.DataType) (dataframe.SeriesType, error) {
	switch t.ID() {
	case arrow.STRING:
		return dataframe.SeriesTypeString, nil
	case arrow.FLOAT64:
		return dataframe.SeriesTypeDouble, nil
	case arrow.INT32:
		return dataframe.SeriesTypeInt, nil
	case arrow.BOOL:
		return dataframe.SeriesTypeBoolean, nil
	default:
		return 0, errors.Marshalling("unsupported arrow type %s", t)
	}
}

func flag(md arrow.Metadata, key string) bool {
	i := md.FindKey(key)
	if i < 0 {
		return false
	}
	v, _ := strconv.ParseBool(md.Values()[i])
	return v
}

// NewFrame wraps rec. The frame retains the record until Release.
func NewFrame(rec arrow.Record) (*Frame, error) {
	n := int(rec.NumCols())
	f := &Frame{
		rec:     rec,
		columns: make([]dataframe.SeriesMetadata, n),
		strings: make([]*array.String, n),
		doubles: make([]*array.Float64, n),
		ints:    make([]*array.Int32, n),
		bools:   make([]*array.Boolean, n),
	}
	for i, field := range rec.Schema().Fields() {
		typ, err := SeriesType(field.Type)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeMarshalling, "column "+strconv.Quote(field.Name)).
				WithDetail("column", field.Name)
		}
		f.columns[i] = dataframe.SeriesMetadata{
			Name:       field.Name,
			Type:       typ,
			Index:      flag(field.Metadata, MetaIndex),
			Modifiable: flag(field.Metadata, MetaModifiable),
			Default:    flag(field.Metadata, MetaDefault),
		}
		switch col := rec.Column(i).(type) {
		case *array.String:
			f.strings[i] = col
		case *array.Float64:
			f.doubles[i] = col
		case *array.Int32:
			f.ints[i] = col
		case *array.Boolean:
			f.bools[i] = col
		}
	}
	rec.Retain()
	return f, nil
}

// Release drops the frame's reference to the record.
func (f *Frame) Release() {
	if f.rec != nil {
		f.rec.Release()
		f.rec = nil
	}
}

func (f *Frame) RowCount() int { return int(f.rec.NumRows()) }

func (f *Frame) Columns() []dataframe.SeriesMetadata { return f.columns }

func (f *Frame) StringValue(column, row int) (string, bool) {
	a := f.strings[column]
	if a.IsNull(row) {
		return "", false
	}
	return a.Value(row), true
}

func (f *Frame) DoubleValue(column, row int) (float64, bool) {
	a := f.doubles[column]
	if a.IsNull(row) {
		return 0, false
	}
	v := a.Value(row)
	return v, !math.IsNaN(v)
}

func (f *Frame) IntValue(column, row int) (int32, bool) {
	a := f.ints[column]
	if a.IsNull(row) {
		return 0, false
	}
	return a.Value(row), true
}

func (f *Frame) BooleanValue(column, row int) (bool, bool) {
	a := f.bools[column]
	if a.IsNull(row) {
		return false, false
	}
	return a.Value(row), true
}
