package dataframe

import (
	"github.com/gridframe/gridframe/pkg/errors"
)

// UpdatingDataframe is a column oriented source of optional values used as
// write input and as row selection. Columns are addressed by their position
// in Columns(). The boolean result of each accessor is false when the
// column carries no value for that row, in which case the target attribute
// is left untouched. Accessors are only called with the type the column
// declares.
type UpdatingDataframe interface {
	RowCount() int
	Columns() []SeriesMetadata
	StringValue(column, row int) (string, bool)
	DoubleValue(column, row int) (float64, bool)
	IntValue(column, row int) (int32, bool)
	BooleanValue(column, row int) (bool, bool)
}

// ColumnIndex returns the position of the column called name in df, or -1.
func ColumnIndex(df UpdatingDataframe, name string) int {
	for i, c := range df.Columns() {
		if c.Name == name {
			return i
		}
	}
	return -1
}

type tableColumn struct {
	meta     SeriesMetadata
	strings  []string
	doubles  []float64
	ints     []int32
	booleans []bool
	absent   []bool
}

// Table is an in-memory UpdatingDataframe built from Go slices.
type Table struct {
	rows    int
	columns []*tableColumn
	byName  map[string]int
}

// TableBuilder assembles a Table column by column. The first error is kept
// and returned by Build.
type TableBuilder struct {
	table *Table
	err   error
}

// NewTable starts a table with the given number of rows.
func NewTable(rows int) *TableBuilder {
	return &TableBuilder{table: &Table{rows: rows, byName: make(map[string]int)}}
}

func (b *TableBuilder) add(name string, typ SeriesType, length int, col *tableColumn) *TableBuilder {
	if b.err != nil {
		return b
	}
	if _, dup := b.table.byName[name]; dup {
		b.err = errors.InvalidValue("duplicate column %q", name).WithDetail("column", name)
		return b
	}
	if length != b.table.rows {
		b.err = errors.InvalidValue("column %q has %d values, table has %d rows", name, length, b.table.rows).
			WithDetail("column", name)
		return b
	}
	col.meta = SeriesMetadata{Name: name, Type: typ}
	b.table.byName[name] = len(b.table.columns)
	b.table.columns = append(b.table.columns, col)
	return b
}

// Strings adds a text column.
func (b *TableBuilder) Strings(name string, values []string) *TableBuilder {
	return b.add(name, SeriesTypeString, len(values), &tableColumn{strings: values})
}

// Doubles adds a floating point column.
func (b *TableBuilder) Doubles(name string, values []float64) *TableBuilder {
	return b.add(name, SeriesTypeDouble, len(values), &tableColumn{doubles: values})
}

// Ints adds an int32 column.
func (b *TableBuilder) Ints(name string, values []int32) *TableBuilder {
	return b.add(name, SeriesTypeInt, len(values), &tableColumn{ints: values})
}

// Booleans adds a boolean column.
func (b *TableBuilder) Booleans(name string, values []bool) *TableBuilder {
	return b.add(name, SeriesTypeBoolean, len(values), &tableColumn{booleans: values})
}

// Absent marks the given rows of column name as carrying no value.
func (b *TableBuilder) Absent(name string, rows ...int) *TableBuilder {
	if b.err != nil {
		return b
	}
	i, ok := b.table.byName[name]
	if !ok {
		b.err = errors.NotFound("column %q not found", name).WithDetail("column", name)
		return b
	}
	col := b.table.columns[i]
	if col.absent == nil {
		col.absent = make([]bool, b.table.rows)
	}
	for _, r := range rows {
		if r < 0 || r >= b.table.rows {
			b.err = errors.InvalidValue("row %d out of range", r).WithDetail("column", name).WithDetail("row", r)
			return b
		}
		col.absent[r] = true
	}
	return b
}

// Build returns the table or the first error met while building it.
func (b *TableBuilder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.table, nil
}

// MustBuild is like Build but panics on error. Intended for tests and
// static fixtures.
func (b *TableBuilder) MustBuild() *Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) RowCount() int { return t.rows }

func (t *Table) Columns() []SeriesMetadata {
	meta := make([]SeriesMetadata, len(t.columns))
	for i, c := range t.columns {
		meta[i] = c.meta
	}
	return meta
}

func (t *Table) present(column, row int) bool {
	a := t.columns[column].absent
	return a == nil || !a[row]
}

func (t *Table) StringValue(column, row int) (string, bool) {
	return t.columns[column].strings[row], t.present(column, row)
}

func (t *Table) DoubleValue(column, row int) (float64, bool) {
	return t.columns[column].doubles[row], t.present(column, row)
}

func (t *Table) IntValue(column, row int) (int32, bool) {
	return t.columns[column].ints[row], t.present(column, row)
}

func (t *Table) BooleanValue(column, row int) (bool, bool) {
	return t.columns[column].booleans[row], t.present(column, row)
}
