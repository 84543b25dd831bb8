package dataframe

import (
	"math"
)

// Handler receives the columns of one materialization. The engine calls
// SetSeriesCount once, then one Add*Series per column in output order, and
// fills every row of a column before moving to the next one.
type Handler interface {
	SetSeriesCount(count int)
	AddStringSeries(meta SeriesMetadata, size int) StringWriter
	AddDoubleSeries(meta SeriesMetadata, size int) DoubleWriter
	AddIntSeries(meta SeriesMetadata, size int) IntWriter
	AddBooleanSeries(meta SeriesMetadata, size int) BooleanWriter
}

// StringWriter fills a text column. Rows never set are null.
type StringWriter interface {
	Set(row int, value string)
	SetNull(row int)
}

// DoubleWriter fills a floating point column. NaN marks an undefined value.
type DoubleWriter interface {
	Set(row int, value float64)
}

// IntWriter fills an int32 column.
type IntWriter interface {
	Set(row int, value int32)
}

// BooleanWriter fills a boolean column.
type BooleanWriter interface {
	Set(row int, value bool)
}

// Column is one materialized column held in memory. Exactly one of the
// value slices is populated, according to Type.
type Column struct {
	SeriesMetadata
	Strings  []string
	Nulls    []bool
	Doubles  []float64
	Ints     []int32
	Booleans []bool
}

// Len returns the number of rows.
func (c *Column) Len() int {
	switch c.Type {
	case SeriesTypeString:
		return len(c.Strings)
	case SeriesTypeDouble:
		return len(c.Doubles)
	case SeriesTypeInt:
		return len(c.Ints)
	default:
		return len(c.Booleans)
	}
}

// IsNull reports whether row holds no value. Only text columns carry nulls.
func (c *Column) IsNull(row int) bool {
	return c.Type == SeriesTypeString && c.Nulls != nil && c.Nulls[row]
}

// Value returns the value at row as an interface, nil for a null string.
func (c *Column) Value(row int) interface{} {
	switch c.Type {
	case SeriesTypeString:
		if c.IsNull(row) {
			return nil
		}
		return c.Strings[row]
	case SeriesTypeDouble:
		return c.Doubles[row]
	case SeriesTypeInt:
		return c.Ints[row]
	default:
		return c.Booleans[row]
	}
}

// Collector is the in-process Handler. It keeps every column in memory and
// can be fed back as an UpdatingDataframe.
type Collector struct {
	columns []*Column
	byName  map[string]int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{byName: make(map[string]int)}
}

func (c *Collector) SetSeriesCount(count int) {
	c.columns = make([]*Column, 0, count)
}

func (c *Collector) add(col *Column) {
	c.byName[col.Name] = len(c.columns)
	c.columns = append(c.columns, col)
}

func (c *Collector) AddStringSeries(meta SeriesMetadata, size int) StringWriter {
	col := &Column{SeriesMetadata: meta, Strings: make([]string, size), Nulls: make([]bool, size)}
	for i := range col.Nulls {
		col.Nulls[i] = true
	}
	c.add(col)
	return stringColumnWriter{col}
}

func (c *Collector) AddDoubleSeries(meta SeriesMetadata, size int) DoubleWriter {
	col := &Column{SeriesMetadata: meta, Doubles: make([]float64, size)}
	c.add(col)
	return doubleColumnWriter{col}
}

func (c *Collector) AddIntSeries(meta SeriesMetadata, size int) IntWriter {
	col := &Column{SeriesMetadata: meta, Ints: make([]int32, size)}
	c.add(col)
	return intColumnWriter{col}
}

func (c *Collector) AddBooleanSeries(meta SeriesMetadata, size int) BooleanWriter {
	col := &Column{SeriesMetadata: meta, Booleans: make([]bool, size)}
	c.add(col)
	return booleanColumnWriter{col}
}

// Series returns the collected columns in output order.
func (c *Collector) Series() []*Column {
	return c.columns
}

// Column returns the column called name.
func (c *Collector) Column(name string) (*Column, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.columns[i], true
}

// Names returns the column names in output order.
func (c *Collector) Names() []string {
	names := make([]string, len(c.columns))
	for i, col := range c.columns {
		names[i] = col.Name
	}
	return names
}

// RowCount returns the number of rows, 0 when nothing was collected.
func (c *Collector) RowCount() int {
	if len(c.columns) == 0 {
		return 0
	}
	return c.columns[0].Len()
}

func (c *Collector) Columns() []SeriesMetadata {
	meta := make([]SeriesMetadata, len(c.columns))
	for i, col := range c.columns {
		meta[i] = col.SeriesMetadata
	}
	return meta
}

func (c *Collector) StringValue(column, row int) (string, bool) {
	col := c.columns[column]
	if col.IsNull(row) {
		return "", false
	}
	return col.Strings[row], true
}

func (c *Collector) DoubleValue(column, row int) (float64, bool) {
	v := c.columns[column].Doubles[row]
	return v, !math.IsNaN(v)
}

func (c *Collector) IntValue(column, row int) (int32, bool) {
	return c.columns[column].Ints[row], true
}

func (c *Collector) BooleanValue(column, row int) (bool, bool) {
	return c.columns[column].Booleans[row], true
}

type stringColumnWriter struct{ col *Column }

func (w stringColumnWriter) Set(row int, value string) {
	w.col.Strings[row] = value
	w.col.Nulls[row] = false
}

func (w stringColumnWriter) SetNull(row int) {
	w.col.Strings[row] = ""
	w.col.Nulls[row] = true
}

type doubleColumnWriter struct{ col *Column }

func (w doubleColumnWriter) Set(row int, value float64) { w.col.Doubles[row] = value }

type intColumnWriter struct{ col *Column }

func (w intColumnWriter) Set(row int, value int32) { w.col.Ints[row] = value }

type booleanColumnWriter struct{ col *Column }

func (w booleanColumnWriter) Set(row int, value bool) { w.col.Booleans[row] = value }

// Replay sends columns to h with the call sequence of a materialization.
func Replay(columns []*Column, h Handler) {
	h.SetSeriesCount(len(columns))
	for _, col := range columns {
		n := col.Len()
		switch col.Type {
		case SeriesTypeString:
			w := h.AddStringSeries(col.SeriesMetadata, n)
			for i := 0; i < n; i++ {
				if col.IsNull(i) {
					w.SetNull(i)
				} else {
					w.Set(i, col.Strings[i])
				}
			}
		case SeriesTypeDouble:
			w := h.AddDoubleSeries(col.SeriesMetadata, n)
			for i, v := range col.Doubles {
				w.Set(i, v)
			}
		case SeriesTypeInt:
			w := h.AddIntSeries(col.SeriesMetadata, n)
			for i, v := range col.Ints {
				w.Set(i, v)
			}
		case SeriesTypeBoolean:
			w := h.AddBooleanSeries(col.SeriesMetadata, n)
			for i, v := range col.Booleans {
				w.Set(i, v)
			}
		}
	}
}
