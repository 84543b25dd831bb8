package native

/*
#include <stdlib.h>
#include "gridframe.h"
*/
import "C"

import (
	"strconv"
	"unsafe"

	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/metrics"
)

// Dataframe owns one gf_dataframe. Every accessor fails once the memory
// has been released or detached.
type Dataframe struct {
	ptr  *C.gf_dataframe
	live bool
}

func errReleased() *errors.Error {
	return errors.New(errors.ErrorTypeInternal, "native dataframe used after release")
}

// Release frees the memory. A second call returns an error.
func (d *Dataframe) Release() error {
	if d.ptr == nil {
		return errReleased()
	}
	freeDataframe(d.ptr)
	d.ptr = nil
	if d.live {
		metrics.NativeDataframesLive.Dec()
	}
	return nil
}

// Detach transfers ownership to a foreign caller, who must return the
// pointer to FreeDataframe.
func (d *Dataframe) Detach() (unsafe.Pointer, error) {
	if d.ptr == nil {
		return nil, errReleased()
	}
	p := unsafe.Pointer(d.ptr)
	d.ptr = nil
	return p, nil
}

// Adopt takes back ownership of a pointer returned by Detach.
func Adopt(p unsafe.Pointer) *Dataframe {
	return &Dataframe{ptr: (*C.gf_dataframe)(p), live: true}
}

// FreeDataframe releases a detached gf_dataframe. A nil pointer is ignored.
func FreeDataframe(p unsafe.Pointer) {
	if p == nil {
		return
	}
	freeDataframe((*C.gf_dataframe)(p))
	metrics.NativeDataframesLive.Dec()
}

// SeriesCount returns the number of series.
func (d *Dataframe) SeriesCount() (int, error) {
	if d.ptr == nil {
		return 0, errReleased()
	}
	return int(d.ptr.series_count), nil
}

// View reads the dataframe in place. The view must not be used after the
// dataframe is released.
func (d *Dataframe) View() (*View, error) {
	if d.ptr == nil {
		return nil, errReleased()
	}
	return NewView(unsafe.Pointer(d.ptr))
}

// Columns copies the dataframe back into Go memory.
func (d *Dataframe) Columns() ([]*dataframe.Column, error) {
	v, err := d.View()
	if err != nil {
		return nil, err
	}
	return v.Copy(), nil
}

// Marshal copies in-process columns into a new native dataframe.
func Marshal(columns []*dataframe.Column) (*Dataframe, error) {
	for _, col := range columns {
		if _, err := SeriesTypeCodes.Code(col.Type); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeMarshalling, "column "+strconv.Quote(col.Name)).
				WithDetail("column", col.Name)
		}
	}
	h := NewHandler()
	dataframe.Replay(columns, h)
	return h.Dataframe()
}

// MarshalMetadata writes series descriptions as a gf_dataframe whose data
// arrays are empty. The result must be freed with FreeMetadata.
func MarshalMetadata(meta []dataframe.SeriesMetadata) (unsafe.Pointer, error) {
	h := newHandler(false)
	h.SetSeriesCount(len(meta))
	for _, m := range meta {
		switch m.Type {
		case dataframe.SeriesTypeString:
			h.AddStringSeries(m, 0)
		case dataframe.SeriesTypeDouble:
			h.AddDoubleSeries(m, 0)
		case dataframe.SeriesTypeInt:
			h.AddIntSeries(m, 0)
		default:
			h.AddBooleanSeries(m, 0)
		}
	}
	d, err := h.Dataframe()
	if err != nil {
		return nil, err
	}
	return d.Detach()
}

// FreeMetadata releases the result of MarshalMetadata.
func FreeMetadata(p unsafe.Pointer) {
	freeDataframe((*C.gf_dataframe)(p))
}
