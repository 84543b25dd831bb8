package dataframe

import (
	"fmt"

	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/perunit"
)

type projection[R, T any] struct {
	elementType string
	items       ItemsProvider[R, T]
	resolve     KeyResolver[R, T]
	series      []*series[T]
	byName      map[string]int
	idOf        func(T) string
	properties  func(T) map[string]string
}

func (p *projection[R, T]) metadata() []SeriesMetadata {
	meta := make([]SeriesMetadata, len(p.series))
	for i, s := range p.series {
		meta[i] = s.meta
	}
	return meta
}

func (p *projection[R, T]) lookup(name string) (SeriesMetadata, bool) {
	i, ok := p.byName[name]
	if !ok {
		return SeriesMetadata{}, false
	}
	return p.series[i].meta, true
}

// outputColumn is either a static series or a property key.
type outputColumn[T any] struct {
	static   *series[T]
	property string
}

func (p *projection[R, T]) materialize(root R, f Filter, ctx perunit.Context, h Handler) (int, error) {
	// Names are checked against the static series before any row is
	// resolved. Names left over may still be property keys.
	var pending []string
	switch f.Mode {
	case AttributesAll, AttributesDefault:
	case AttributesExplicit:
		for _, name := range f.Attributes {
			if _, ok := p.byName[name]; ok {
				continue
			}
			if p.properties == nil {
				return 0, p.unknownColumn(name)
			}
			pending = append(pending, name)
		}
	default:
		return 0, errors.InvalidValue("unknown attribute filter mode %s", f.Mode).
			WithDetail("element_type", p.elementType)
	}

	items, err := p.rows(root, f)
	if err != nil {
		return 0, err
	}

	var props *propertyColumns
	if p.properties != nil && (f.Mode == AttributesAll || len(pending) > 0) {
		props, err = collectProperties(items, p.properties, p.byName, f.maxPropertyColumns())
		if err != nil {
			return 0, p.annotateType(err)
		}
		for _, name := range pending {
			if !props.has(name) {
				return 0, p.unknownColumn(name)
			}
		}
	}

	columns := p.columns(f, props)
	h.SetSeriesCount(len(columns))
	for _, c := range columns {
		if c.static == nil {
			props.emit(c.property, h)
			continue
		}
		if row, err := c.static.emit(items, h, ctx); err != nil {
			return 0, p.annotate(err, c.static.meta.Name, row, items[row])
		}
	}
	return len(items), nil
}

func (p *projection[R, T]) columns(f Filter, props *propertyColumns) []outputColumn[T] {
	var out []outputColumn[T]
	switch f.Mode {
	case AttributesAll:
		out = make([]outputColumn[T], 0, len(p.series)+props.len())
		for _, s := range p.series {
			out = append(out, outputColumn[T]{static: s})
		}
		for _, key := range props.names() {
			out = append(out, outputColumn[T]{property: key})
		}
	case AttributesDefault:
		for _, s := range p.series {
			if s.meta.Index || s.meta.Default {
				out = append(out, outputColumn[T]{static: s})
			}
		}
	case AttributesExplicit:
		// index series always lead so rows stay identifiable
		seen := make(map[string]bool, len(f.Attributes))
		for _, s := range p.series {
			if s.meta.Index {
				out = append(out, outputColumn[T]{static: s})
				seen[s.meta.Name] = true
			}
		}
		for _, name := range f.Attributes {
			if seen[name] {
				continue
			}
			seen[name] = true
			if i, ok := p.byName[name]; ok {
				out = append(out, outputColumn[T]{static: p.series[i]})
			} else {
				out = append(out, outputColumn[T]{property: name})
			}
		}
	}
	return out
}

func (p *projection[R, T]) rows(root R, f Filter) ([]T, error) {
	if f.Selection == nil {
		return p.items(root), nil
	}
	n := f.Selection.RowCount()
	items := make([]T, 0, n)
	for r := 0; r < n; r++ {
		item, err := p.resolve(root, f.Selection, r)
		if err != nil {
			if f.SkipMissingRows && errors.IsType(err, errors.ErrorTypeNotFound) {
				continue
			}
			return nil, p.annotateType(err)
		}
		items = append(items, item)
	}
	return items, nil
}

type binding[T any] struct {
	series *series[T]
	column int
}

func (p *projection[R, T]) update(root R, df UpdatingDataframe, ctx perunit.Context) (int, error) {
	input := make(map[string]int)
	for i, c := range df.Columns() {
		if _, dup := input[c.Name]; dup {
			return 0, errors.InvalidValue("duplicate input column %q", c.Name).
				WithDetail("column", c.Name).
				WithDetail("element_type", p.elementType)
		}
		input[c.Name] = i

		si, ok := p.byName[c.Name]
		if !ok {
			return 0, p.unknownColumn(c.Name)
		}
		s := p.series[si]
		if s.meta.Index {
			continue
		}
		if s.update == nil {
			return 0, errors.Unsupported("column %q is read-only", c.Name).
				WithDetail("column", c.Name).
				WithDetail("element_type", p.elementType)
		}
		if c.Type != s.meta.Type {
			return 0, errors.InvalidValue("column %q expects %s values, input has %s", c.Name, s.meta.Type, c.Type).
				WithDetail("column", c.Name).
				WithDetail("element_type", p.elementType)
		}
	}

	bindings := make([]binding[T], 0, len(input))
	for _, s := range p.series {
		if col, ok := input[s.meta.Name]; ok && !s.meta.Index {
			bindings = append(bindings, binding[T]{series: s, column: col})
		}
	}

	n := df.RowCount()
	items := make([]T, n)
	for r := 0; r < n; r++ {
		item, err := p.resolve(root, df, r)
		if err != nil {
			return 0, p.annotateType(err)
		}
		items[r] = item
	}

	for r, item := range items {
		for _, b := range bindings {
			if err := b.series.update(item, df, b.column, r, ctx); err != nil {
				return r, p.annotate(err, b.series.meta.Name, r, item)
			}
		}
	}
	return n, nil
}

func (p *projection[R, T]) unknownColumn(name string) error {
	return errors.NotFound("%s has no column %q", p.elementType, name).
		WithDetail("column", name).
		WithDetail("element_type", p.elementType)
}

func (p *projection[R, T]) annotateType(err error) error {
	var e *errors.Error
	if errors.As(err, &e) {
		if _, ok := e.Detail("element_type"); !ok {
			e.WithDetail("element_type", p.elementType)
		}
		return e
	}
	return errors.Wrap(err, errors.ErrorTypeInternal, p.elementType).WithDetail("element_type", p.elementType)
}

// annotate attaches the column, row and entity of a getter or setter error.
func (p *projection[R, T]) annotate(err error, column string, row int, item T) error {
	var e *errors.Error
	if !errors.As(err, &e) {
		e = errors.Wrap(err, errors.ErrorTypeInternal, fmt.Sprintf("column %q", column))
	}
	if _, ok := e.Detail("column"); !ok {
		e.WithDetail("column", column)
	}
	e.WithDetail("row", row)
	if p.idOf != nil {
		e.WithDetail("element_id", p.idOf(item))
	}
	if _, ok := e.Detail("element_type"); !ok {
		e.WithDetail("element_type", p.elementType)
	}
	return e
}
