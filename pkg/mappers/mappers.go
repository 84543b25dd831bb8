// Package mappers registers the projection of every network element type.
//
// Each element type has one dataframe.Mapper built at package init. The
// series lists are configuration: which attributes exist, which quantity
// family drives their per-unit conversion and whether they can be written.
//
// Conventions:
//   - powers (MW, MVar, MVA) scale with the base apparent power only
//   - voltages scale with the nominal voltage of the bus they are measured
//     at; a generator's target_v uses its regulating bus
//   - line r, x use both sides, line shunts add the asymmetric correction
//   - transformer r, x, g, b are expressed on side 2 and use its nominal
//     voltage for both sides
//   - min_q and max_q read NaN for generators with a capability curve and
//     reject writes
package mappers

import (
	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/network"
)

var registry = map[ElementType]*dataframe.Mapper[*network.Network]{
	Bus:                    busMapper(),
	Generator:              generatorMapper(),
	Load:                   loadMapper(),
	Line:                   lineMapper(),
	TwoWindingsTransformer: transformerMapper(),
}

// For returns the mapper of element type t.
func For(t ElementType) (*dataframe.Mapper[*network.Network], error) {
	m, ok := registry[t]
	if !ok {
		return nil, errors.InvalidValue("no mapper for element type %s", t).WithDetail("element_type", t.String())
	}
	return m, nil
}

// MustFor is like For but panics on an unknown element type.
func MustFor(t ElementType) *dataframe.Mapper[*network.Network] {
	m, err := For(t)
	if err != nil {
		panic(err)
	}
	return m
}
