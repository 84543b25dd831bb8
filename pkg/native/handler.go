// Package native marshals projections to and from C memory.
//
// The layout is declared in gridframe.h. A materialization is written
// straight into C buffers by Handler and handed out as a Dataframe, which
// owns the memory until Release, or until Detach gives it to a foreign
// caller who must pass it back to FreeDataframe exactly once. Text columns
// own one buffer per value, so they are freed in two levels.
//
// On the write path View wraps foreign gf_series buffers as a
// dataframe.UpdatingDataframe and reads them in place; only names and
// flags are copied.
package native

/*
#include <stdlib.h>
#include "gridframe.h"
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/metrics"
)

// Handler is a dataframe.Handler writing into C memory. Obtain the result
// with Dataframe, or Discard it when the materialization failed.
type Handler struct {
	df    *C.gf_dataframe
	count int
	err   error
	live  bool
}

// NewHandler returns a handler for one materialization.
func NewHandler() *Handler {
	return newHandler(true)
}

func newHandler(live bool) *Handler {
	df := (*C.gf_dataframe)(C.calloc(1, C.size_t(unsafe.Sizeof(C.gf_dataframe{}))))
	return &Handler{df: df, live: live}
}

func (h *Handler) SetSeriesCount(count int) {
	if count > 0 {
		h.df.series = (*C.gf_series)(C.calloc(C.size_t(count), C.size_t(unsafe.Sizeof(C.gf_series{}))))
	}
	h.count = count
}

// next initialises the following gf_series slot and allocates size zeroed
// elements of elem bytes.
func (h *Handler) next(meta dataframe.SeriesMetadata, size int, elem uintptr) unsafe.Pointer {
	i := int(h.df.series_count)
	if i >= h.count {
		panic(fmt.Sprintf("native: series %q exceeds announced count %d", meta.Name, h.count))
	}
	code, err := SeriesTypeCodes.Code(meta.Type)
	if err != nil && h.err == nil {
		h.err = err
	}

	s := &unsafe.Slice(h.df.series, h.count)[i]
	h.df.series_count = C.int32_t(i + 1)
	s.name = C.CString(meta.Name)
	s._type = C.int32_t(code)
	s.index = cbool(meta.Index)
	s.modifiable = cbool(meta.Modifiable)
	s.is_default = cbool(meta.Default)
	s.data.length = C.int64_t(size)
	if size > 0 {
		s.data.ptr = C.calloc(C.size_t(size), C.size_t(elem))
	}
	return s.data.ptr
}

func (h *Handler) AddStringSeries(meta dataframe.SeriesMetadata, size int) dataframe.StringWriter {
	p := h.next(meta, size, unsafe.Sizeof((*C.char)(nil)))
	return stringWriter{unsafe.Slice((**C.char)(p), size)}
}

func (h *Handler) AddDoubleSeries(meta dataframe.SeriesMetadata, size int) dataframe.DoubleWriter {
	p := h.next(meta, size, unsafe.Sizeof(C.double(0)))
	return doubleWriter{unsafe.Slice((*C.double)(p), size)}
}

func (h *Handler) AddIntSeries(meta dataframe.SeriesMetadata, size int) dataframe.IntWriter {
	p := h.next(meta, size, unsafe.Sizeof(C.int32_t(0)))
	return intWriter{unsafe.Slice((*C.int32_t)(p), size)}
}

func (h *Handler) AddBooleanSeries(meta dataframe.SeriesMetadata, size int) dataframe.BooleanWriter {
	p := h.next(meta, size, unsafe.Sizeof(C.int32_t(0)))
	return booleanWriter{unsafe.Slice((*C.int32_t)(p), size)}
}

// Dataframe hands the written memory to a guard. The handler is empty
// afterwards.
func (h *Handler) Dataframe() (*Dataframe, error) {
	if h.df == nil {
		return nil, errors.New(errors.ErrorTypeInternal, "native handler already consumed")
	}
	if h.err != nil {
		h.Discard()
		return nil, h.err
	}
	d := &Dataframe{ptr: h.df, live: h.live}
	h.df = nil
	if d.live {
		metrics.NativeDataframesLive.Inc()
	}
	return d, nil
}

// Discard frees whatever was written so far.
func (h *Handler) Discard() {
	freeDataframe(h.df)
	h.df = nil
}

func cbool(b bool) C.uint8_t {
	if b {
		return 1
	}
	return 0
}

type stringWriter struct{ data []*C.char }

func (w stringWriter) Set(row int, value string) {
	C.free(unsafe.Pointer(w.data[row]))
	w.data[row] = C.CString(value)
}

func (w stringWriter) SetNull(row int) {
	C.free(unsafe.Pointer(w.data[row]))
	w.data[row] = nil
}

type doubleWriter struct{ data []C.double }

func (w doubleWriter) Set(row int, value float64) { w.data[row] = C.double(value) }

type intWriter struct{ data []C.int32_t }

func (w intWriter) Set(row int, value int32) { w.data[row] = C.int32_t(value) }

type booleanWriter struct{ data []C.int32_t }

func (w booleanWriter) Set(row int, value bool) {
	if value {
		w.data[row] = 1
	} else {
		w.data[row] = 0
	}
}

// freeDataframe releases a gf_dataframe built by Handler: string elements,
// then every data buffer and name, then the series array and the struct.
func freeDataframe(df *C.gf_dataframe) {
	if df == nil {
		return
	}
	series := unsafe.Slice(df.series, int(df.series_count))
	for i := range series {
		s := &series[i]
		if s._type == C.GF_SERIES_STRING && s.data.ptr != nil {
			for _, p := range unsafe.Slice((**C.char)(s.data.ptr), int(s.data.length)) {
				C.free(unsafe.Pointer(p))
			}
		}
		C.free(s.data.ptr)
		C.free(unsafe.Pointer(s.name))
	}
	C.free(unsafe.Pointer(df.series))
	C.free(unsafe.Pointer(df))
}
