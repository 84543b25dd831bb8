// Package arrowframe exchanges projections as Apache Arrow records.
//
// Handler collects a materialization into an arrow.Record, Frame reads an
// arrow.Record as update input, and WriteIPC / ReadIPC move records through
// the Arrow IPC file format with optional LZ4 or Zstandard body compression.
//
// Series flags travel in the field metadata so a record written by Handler
// can be read back as a Frame with the same column descriptions.
package arrowframe

import (
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/gridframe/gridframe/pkg/dataframe"
)

// Field metadata keys.
const (
	MetaIndex      = "gridframe.index"
	MetaModifiable = "gridframe.modifiable"
	MetaDefault    = "gridframe.default"
)

func fieldOf(meta dataframe.SeriesMetadata, typ arrow.DataType, nullable bool) arrow.Field {
	md := arrow.NewMetadata(
		[]string{MetaIndex, MetaModifiable, MetaDefault},
		[]string{strconv.FormatBool(meta.Index), strconv.FormatBool(meta.Modifiable), strconv.FormatBool(meta.Default)},
	)
	return arrow.Field{Name: meta.Name, Type: typ, Nullable: nullable, Metadata: md}
}

// column buffers values in Go memory until the record is built, so writers
// can fill rows in any order.
type column interface {
	field() arrow.Field
	build(mem memory.Allocator) arrow.Array
}

// Handler is a dataframe.Handler producing one arrow.Record.
type Handler struct {
	mem     memory.Allocator
	columns []column
	rows    int
}

// NewHandler returns a handler allocating arrays from mem. A nil mem uses
// the Go allocator.
func NewHandler(mem memory.Allocator) *Handler {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &Handler{mem: mem}
}

func (h *Handler) SetSeriesCount(count int) {
	h.columns = make([]column, 0, count)
}

func (h *Handler) AddStringSeries(meta dataframe.SeriesMetadata, size int) dataframe.StringWriter {
	c := &stringColumn{meta: meta, values: make([]string, size), valid: make([]bool, size)}
	h.add(c, size)
	return c
}

func (h *Handler) AddDoubleSeries(meta dataframe.SeriesMetadata, size int) dataframe.DoubleWriter {
	c := &doubleColumn{meta: meta, values: make([]float64, size)}
	h.add(c, size)
	return c
}

func (h *Handler) AddIntSeries(meta dataframe.SeriesMetadata, size int) dataframe.IntWriter {
	c := &intColumn{meta: meta, values: make([]int32, size)}
	h.add(c, size)
	return c
}

func (h *Handler) AddBooleanSeries(meta dataframe.SeriesMetadata, size int) dataframe.BooleanWriter {
	c := &booleanColumn{meta: meta, values: make([]bool, size)}
	h.add(c, size)
	return c
}

func (h *Handler) add(c column, size int) {
	h.columns = append(h.columns, c)
	h.rows = size
}

// Schema returns the schema of the record Record would build.
func (h *Handler) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(h.columns))
	for i, c := range h.columns {
		fields[i] = c.field()
	}
	return arrow.NewSchema(fields, nil)
}

// Record builds the collected columns. The caller owns the record and must
// Release it.
func (h *Handler) Record() arrow.Record {
	arrays := make([]arrow.Array, len(h.columns))
	for i, c := range h.columns {
		arrays[i] = c.build(h.mem)
	}
	rec := array.NewRecord(h.Schema(), arrays, int64(h.rows))
	for _, a := range arrays {
		a.Release()
	}
	return rec
}

type stringColumn struct {
	meta   dataframe.SeriesMetadata
	values []string
	valid  []bool
}

func (c *stringColumn) Set(row int, v string) { c.values[row], c.valid[row] = v, true }
func (c *stringColumn) SetNull(row int)       { c.values[row], c.valid[row] = "", false }

func (c *stringColumn) field() arrow.Field {
	return fieldOf(c.meta, arrow.BinaryTypes.String, !c.meta.Index)
}

func (c *stringColumn) build(mem memory.Allocator) arrow.Array {
	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.AppendValues(c.values, c.valid)
	return b.NewArray()
}

type doubleColumn struct {
	meta   dataframe.SeriesMetadata
	values []float64
}

func (c *doubleColumn) Set(row int, v float64) { c.values[row] = v }

func (c *doubleColumn) field() arrow.Field {
	return fieldOf(c.meta, arrow.PrimitiveTypes.Float64, false)
}

func (c *doubleColumn) build(mem memory.Allocator) arrow.Array {
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues(c.values, nil)
	return b.NewArray()
}

type intColumn struct {
	meta   dataframe.SeriesMetadata
	values []int32
}

func (c *intColumn) Set(row int, v int32) { c.values[row] = v }

func (c *intColumn) field() arrow.Field {
	return fieldOf(c.meta, arrow.PrimitiveTypes.Int32, false)
}

func (c *intColumn) build(mem memory.Allocator) arrow.Array {
	b := array.NewInt32Builder(mem)
	defer b.Release()
	b.AppendValues(c.values, nil)
	return b.NewArray()
}

type booleanColumn struct {
	meta   dataframe.SeriesMetadata
	values []bool
}

func (c *booleanColumn) Set(row int, v bool) { c.values[row] = v }

func (c *booleanColumn) field() arrow.Field {
	return fieldOf(c.meta, arrow.FixedWidthTypes.Boolean, false)
}

func (c *booleanColumn) build(mem memory.Allocator) arrow.Array {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.AppendValues(c.values, nil)
	return b.NewArray()
}
