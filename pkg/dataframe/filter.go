package dataframe

import "fmt"

// AttributeFilterMode selects which columns a materialization returns.
type AttributeFilterMode int

const (
	// AttributesAll selects every series, including property columns.
	AttributesAll AttributeFilterMode = iota
	// AttributesDefault selects index series and series flagged as default.
	AttributesDefault
	// AttributesExplicit selects the series named in Filter.Attributes.
	AttributesExplicit
)

func (m AttributeFilterMode) String() string {
	switch m {
	case AttributesAll:
		return "ALL"
	case AttributesDefault:
		return "DEFAULT"
	case AttributesExplicit:
		return "EXPLICIT"
	default:
		return fmt.Sprintf("AttributeFilterMode(%d)", int(m))
	}
}

// DefaultMaxPropertyColumns bounds the number of distinct property keys a
// single materialization may turn into columns.
const DefaultMaxPropertyColumns = 1000

// Filter narrows a materialization by column and by row. The zero value
// selects all columns of all rows.
type Filter struct {
	Mode AttributeFilterMode
	// Attributes lists the column names for AttributesExplicit.
	Attributes []string
	// Selection, when set, replaces the items provider: rows are the rows
	// of this table, in its order, resolved through the key resolver.
	Selection UpdatingDataframe
	// SkipMissingRows drops selection rows whose key does not resolve
	// instead of failing with not_found.
	SkipMissingRows bool
	// MaxPropertyColumns overrides DefaultMaxPropertyColumns when positive.
	MaxPropertyColumns int
}

// AllAttributes selects every column of every row.
func AllAttributes() Filter {
	return Filter{Mode: AttributesAll}
}

// DefaultAttributes selects the default columns of every row.
func DefaultAttributes() Filter {
	return Filter{Mode: AttributesDefault}
}

// Attributes selects the named columns of every row.
func Attributes(names ...string) Filter {
	return Filter{Mode: AttributesExplicit, Attributes: names}
}

// WithSelection returns a copy of f restricted to the rows of selection.
func (f Filter) WithSelection(selection UpdatingDataframe) Filter {
	f.Selection = selection
	return f
}

func (f Filter) maxPropertyColumns() int {
	if f.MaxPropertyColumns > 0 {
		return f.MaxPropertyColumns
	}
	return DefaultMaxPropertyColumns
}
