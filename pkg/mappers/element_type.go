package mappers

import (
	"fmt"

	"github.com/gridframe/gridframe/pkg/errors"
)

// ElementType identifies a projected element type. The numeric values are
// the codes exchanged across the native boundary.
type ElementType int32

const (
	Bus ElementType = iota
	Generator
	Load
	Line
	TwoWindingsTransformer
)

var elementTypeNames = [...]string{
	Bus:                    "BUS",
	Generator:              "GENERATOR",
	Load:                   "LOAD",
	Line:                   "LINE",
	TwoWindingsTransformer: "TWO_WINDINGS_TRANSFORMER",
}

func (t ElementType) String() string {
	if t.Valid() {
		return elementTypeNames[t]
	}
	return fmt.Sprintf("ElementType(%d)", int32(t))
}

// Valid reports whether t is a registered element type.
func (t ElementType) Valid() bool {
	return t >= 0 && int(t) < len(elementTypeNames)
}

// ElementTypes lists every element type in code order.
func ElementTypes() []ElementType {
	types := make([]ElementType, len(elementTypeNames))
	for i := range types {
		types[i] = ElementType(i)
	}
	return types
}

// ParseElementType returns the element type called name, matched
// case-exact.
func ParseElementType(name string) (ElementType, error) {
	for i, n := range elementTypeNames {
		if n == name {
			return ElementType(i), nil
		}
	}
	return 0, errors.InvalidValue("unknown element type %q", name).WithDetail("element_type", name)
}
