package dataframe

import (
	"strings"

	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/perunit"
)

// IDColumn is the name of the identifier column used by ByID.
const IDColumn = "id"

// ItemsProvider returns every entity of one type in export order.
type ItemsProvider[R, T any] func(root R) []T

// KeyResolver returns the entity identified by the key columns of row in df.
// It must fail with a not_found error when the key does not resolve and must
// not modify anything.
type KeyResolver[R, T any] func(root R, df UpdatingDataframe, row int) (T, error)

// ByID returns a KeyResolver reading the "id" text column and looking the
// entity up with lookup.
func ByID[R, T any](elementType string, lookup func(root R, id string) (T, bool)) KeyResolver[R, T] {
	return func(root R, df UpdatingDataframe, row int) (T, error) {
		var zero T
		col := ColumnIndex(df, IDColumn)
		if col < 0 {
			return zero, errors.InvalidValue("input has no %q column", IDColumn).
				WithDetail("column", IDColumn).
				WithDetail("element_type", elementType)
		}
		if t := df.Columns()[col].Type; t != SeriesTypeString {
			return zero, errors.InvalidValue("column %q must be %s, got %s", IDColumn, SeriesTypeString, t).
				WithDetail("column", IDColumn)
		}
		id, ok := df.StringValue(col, row)
		if !ok {
			return zero, errors.InvalidValue("row %d has no %s", row, IDColumn).
				WithDetail("column", IDColumn).
				WithDetail("row", row)
		}
		item, ok := lookup(root, id)
		if !ok {
			return zero, errors.NotFound("%s %q not found", strings.ToLower(elementType), id).
				WithDetail("element_type", elementType).
				WithDetail("element_id", id).
				WithDetail("row", row)
		}
		return item, nil
	}
}

type series[T any] struct {
	meta SeriesMetadata
	emit func(items []T, h Handler, ctx perunit.Context) (int, error)
	// nil for read-only series
	update func(item T, df UpdatingDataframe, column, row int, ctx perunit.Context) error
}

// MapperBuilder registers the series of one entity type. Series keep their
// registration order, which is both the output order of the ALL and DEFAULT
// modes and the order setters run in during an update.
type MapperBuilder[R, T any] struct {
	elementType string
	items       ItemsProvider[R, T]
	resolve     KeyResolver[R, T]
	series      []*series[T]
	byName      map[string]int
	idOf        func(T) string
	properties  func(T) map[string]string
	err         error
}

// NewMapperBuilder starts the projection of entities of type T reachable
// from root type R.
func NewMapperBuilder[R, T any](elementType string, items ItemsProvider[R, T], resolve KeyResolver[R, T]) *MapperBuilder[R, T] {
	return &MapperBuilder[R, T]{
		elementType: elementType,
		items:       items,
		resolve:     resolve,
		byName:      make(map[string]int),
	}
}

func (b *MapperBuilder[R, T]) add(s *series[T]) *MapperBuilder[R, T] {
	if b.err != nil {
		return b
	}
	if _, dup := b.byName[s.meta.Name]; dup {
		b.err = errors.InvalidValue("duplicate series %q", s.meta.Name).
			WithDetail("column", s.meta.Name).
			WithDetail("element_type", b.elementType)
		return b
	}
	b.byName[s.meta.Name] = len(b.series)
	b.series = append(b.series, s)
	return b
}

// StringsIndex registers a read-only text index series. The first one
// registered also names entities in error details.
func (b *MapperBuilder[R, T]) StringsIndex(name string, get func(T) string) *MapperBuilder[R, T] {
	if b.idOf == nil {
		b.idOf = get
	}
	return b.Strings(name, get, nil, Index())
}

// Strings registers a text series. A nil set makes it read-only.
func (b *MapperBuilder[R, T]) Strings(name string, get func(T) string, set func(T, string) error, opts ...SeriesOption) *MapperBuilder[R, T] {
	s := &series[T]{meta: newMetadata(name, SeriesTypeString, set != nil, opts)}
	s.emit = func(items []T, h Handler, _ perunit.Context) (int, error) {
		w := h.AddStringSeries(s.meta, len(items))
		for i, item := range items {
			w.Set(i, get(item))
		}
		return 0, nil
	}
	if set != nil {
		s.update = func(item T, df UpdatingDataframe, column, row int, _ perunit.Context) error {
			v, ok := df.StringValue(column, row)
			if !ok {
				return nil
			}
			return set(item, v)
		}
	}
	return b.add(s)
}

// Enums registers an enumeration series, exchanged as the symbolic name of
// the constant. Written names are matched case-exact against allowed.
func (b *MapperBuilder[R, T]) Enums(name string, allowed []string, get func(T) string, set func(T, string) error, opts ...SeriesOption) *MapperBuilder[R, T] {
	if set == nil {
		return b.Strings(name, get, nil, opts...)
	}
	checked := func(item T, v string) error {
		for _, a := range allowed {
			if a == v {
				return set(item, v)
			}
		}
		return errors.InvalidValue("invalid %s %q, expected one of %s", name, v, strings.Join(allowed, ", ")).
			WithDetail("column", name)
	}
	return b.Strings(name, get, checked, opts...)
}

// Doubles registers a floating point series. Getters and setters receive
// the per-call conversion context. Getters return NaN for attributes the
// entity does not have.
func (b *MapperBuilder[R, T]) Doubles(name string, get func(T, perunit.Context) (float64, error), set func(T, float64, perunit.Context) error, opts ...SeriesOption) *MapperBuilder[R, T] {
	s := &series[T]{meta: newMetadata(name, SeriesTypeDouble, set != nil, opts)}
	s.emit = func(items []T, h Handler, ctx perunit.Context) (int, error) {
		w := h.AddDoubleSeries(s.meta, len(items))
		for i, item := range items {
			v, err := get(item, ctx)
			if err != nil {
				return i, err
			}
			w.Set(i, v)
		}
		return 0, nil
	}
	if set != nil {
		s.update = func(item T, df UpdatingDataframe, column, row int, ctx perunit.Context) error {
			v, ok := df.DoubleValue(column, row)
			if !ok {
				return nil
			}
			return set(item, v, ctx)
		}
	}
	return b.add(s)
}

// Ints registers an int32 series.
func (b *MapperBuilder[R, T]) Ints(name string, get func(T) int32, set func(T, int32) error, opts ...SeriesOption) *MapperBuilder[R, T] {
	s := &series[T]{meta: newMetadata(name, SeriesTypeInt, set != nil, opts)}
	s.emit = func(items []T, h Handler, _ perunit.Context) (int, error) {
		w := h.AddIntSeries(s.meta, len(items))
		for i, item := range items {
			w.Set(i, get(item))
		}
		return 0, nil
	}
	if set != nil {
		s.update = func(item T, df UpdatingDataframe, column, row int, _ perunit.Context) error {
			v, ok := df.IntValue(column, row)
			if !ok {
				return nil
			}
			return set(item, v)
		}
	}
	return b.add(s)
}

// Booleans registers a boolean series.
func (b *MapperBuilder[R, T]) Booleans(name string, get func(T) bool, set func(T, bool) error, opts ...SeriesOption) *MapperBuilder[R, T] {
	s := &series[T]{meta: newMetadata(name, SeriesTypeBoolean, set != nil, opts)}
	s.emit = func(items []T, h Handler, _ perunit.Context) (int, error) {
		w := h.AddBooleanSeries(s.meta, len(items))
		for i, item := range items {
			w.Set(i, get(item))
		}
		return 0, nil
	}
	if set != nil {
		s.update = func(item T, df UpdatingDataframe, column, row int, _ perunit.Context) error {
			v, ok := df.BooleanValue(column, row)
			if !ok {
				return nil
			}
			return set(item, v)
		}
	}
	return b.add(s)
}

// Properties enables the property pseudo-series: one nullable, read-only
// text column per distinct key found in the selected entities.
func (b *MapperBuilder[R, T]) Properties(get func(T) map[string]string) *MapperBuilder[R, T] {
	b.properties = get
	return b
}

// Build returns the type-erased mapper.
func (b *MapperBuilder[R, T]) Build() (*Mapper[R], error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.items == nil || b.resolve == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "mapper needs an items provider and a key resolver").
			WithDetail("element_type", b.elementType)
	}
	p := &projection[R, T]{
		elementType: b.elementType,
		items:       b.items,
		resolve:     b.resolve,
		series:      b.series,
		byName:      b.byName,
		idOf:        b.idOf,
		properties:  b.properties,
	}
	return &Mapper[R]{elementType: b.elementType, impl: p}, nil
}

// MustBuild is like Build but panics on error. Mappers are registered once
// at startup, where a broken registration is a programming error.
func (b *MapperBuilder[R, T]) MustBuild() *Mapper[R] {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}

type engine[R any] interface {
	metadata() []SeriesMetadata
	lookup(name string) (SeriesMetadata, bool)
	materialize(root R, f Filter, ctx perunit.Context, h Handler) (int, error)
	update(root R, df UpdatingDataframe, ctx perunit.Context) (int, error)
}

// Mapper projects one entity type of a root R into columns and applies
// column-oriented updates back to it. It holds no state between calls and
// is safe to share, but the root it works on is not synchronized: callers
// serialize calls against the same root.
type Mapper[R any] struct {
	elementType string
	impl        engine[R]
}

// ElementType returns the name the mapper was registered with.
func (m *Mapper[R]) ElementType() string { return m.elementType }

// SeriesMetadata lists the static series in registration order without
// visiting any entity. Property columns are not included.
func (m *Mapper[R]) SeriesMetadata() []SeriesMetadata { return m.impl.metadata() }

// Series returns the metadata of the static series called name.
func (m *Mapper[R]) Series(name string) (SeriesMetadata, bool) { return m.impl.lookup(name) }

// Materialize writes the columns selected by f into h and returns the
// number of rows.
func (m *Mapper[R]) Materialize(root R, f Filter, ctx perunit.Context, h Handler) (int, error) {
	return m.impl.materialize(root, f, ctx, h)
}

// Collect materializes into a new Collector.
func (m *Mapper[R]) Collect(root R, f Filter, ctx perunit.Context) (*Collector, error) {
	c := NewCollector()
	if _, err := m.impl.materialize(root, f, ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies df to the entities it identifies and returns the number
// of rows applied.
//
// Input columns are validated before anything is resolved: an unknown
// column fails with not_found, a read-only one with unsupported_operation
// and a type mismatch with invalid_value. Every row key is then resolved,
// so an unknown key applies nothing. Finally rows are applied in table
// order and, within a row, columns in registration order. A setter failure
// on row k leaves rows before k applied. When two rows name the same
// entity, the later row wins.
func (m *Mapper[R]) Update(root R, df UpdatingDataframe, ctx perunit.Context) (int, error) {
	return m.impl.update(root, df, ctx)
}
