package native

import (
	"fmt"

	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/mappers"
)

// Entry binds one enum value to its foreign code.
type Entry[E comparable] struct {
	Value E
	Code  int32
}

// CodeTable is a two-way mapping between an enum and the integer codes
// exchanged across the native boundary.
type CodeTable[E comparable] struct {
	kind   string
	codes  map[E]int32
	values map[int32]E
	order  []E
}

// NewCodeTable builds a table. It panics when a value or a code appears
// twice, since tables are package-level declarations.
func NewCodeTable[E comparable](kind string, entries ...Entry[E]) *CodeTable[E] {
	t := &CodeTable[E]{
		kind:   kind,
		codes:  make(map[E]int32, len(entries)),
		values: make(map[int32]E, len(entries)),
		order:  make([]E, 0, len(entries)),
	}
	for _, e := range entries {
		if _, dup := t.codes[e.Value]; dup {
			panic(fmt.Sprintf("native: %s %v mapped twice", kind, e.Value))
		}
		if _, dup := t.values[e.Code]; dup {
			panic(fmt.Sprintf("native: %s code %d mapped twice", kind, e.Code))
		}
		t.codes[e.Value] = e.Code
		t.values[e.Code] = e.Value
		t.order = append(t.order, e.Value)
	}
	return t
}

// Code returns the foreign code of v.
func (t *CodeTable[E]) Code(v E) (int32, error) {
	c, ok := t.codes[v]
	if !ok {
		return 0, errors.Marshalling("no code for %s %v", t.kind, v).WithDetail(t.kind, fmt.Sprint(v))
	}
	return c, nil
}

// Value returns the enum value of a foreign code.
func (t *CodeTable[E]) Value(code int32) (E, error) {
	v, ok := t.values[code]
	if !ok {
		var zero E
		return zero, errors.Marshalling("unknown %s code %d", t.kind, code).WithDetail("code", code)
	}
	return v, nil
}

// Values returns the mapped values in declaration order.
func (t *CodeTable[E]) Values() []E {
	return append([]E(nil), t.order...)
}

// SeriesTypeCodes maps series types to GF_SERIES_* codes.
var SeriesTypeCodes = NewCodeTable("series type",
	Entry[dataframe.SeriesType]{dataframe.SeriesTypeString, 0},
	Entry[dataframe.SeriesType]{dataframe.SeriesTypeDouble, 1},
	Entry[dataframe.SeriesType]{dataframe.SeriesTypeInt, 2},
	Entry[dataframe.SeriesType]{dataframe.SeriesTypeBoolean, 3},
)

// ElementTypeCodes maps element types to GF_* element codes.
var ElementTypeCodes = NewCodeTable("element type",
	Entry[mappers.ElementType]{mappers.Bus, 0},
	Entry[mappers.ElementType]{mappers.Generator, 1},
	Entry[mappers.ElementType]{mappers.Load, 2},
	Entry[mappers.ElementType]{mappers.Line, 3},
	Entry[mappers.ElementType]{mappers.TwoWindingsTransformer, 4},
)

// FilterModeCodes maps attribute filter modes to GF_ATTRIBUTES_* codes.
var FilterModeCodes = NewCodeTable("filter mode",
	Entry[dataframe.AttributeFilterMode]{dataframe.AttributesAll, 0},
	Entry[dataframe.AttributeFilterMode]{dataframe.AttributesDefault, 1},
	Entry[dataframe.AttributeFilterMode]{dataframe.AttributesExplicit, 2},
)
