package dataframe

import "fmt"

// SeriesType represents the value type of a column. The numeric values are
// the codes exchanged across the native boundary.
type SeriesType int32

const (
	SeriesTypeString SeriesType = iota
	SeriesTypeDouble
	SeriesTypeInt
	SeriesTypeBoolean
)

func (t SeriesType) String() string {
	switch t {
	case SeriesTypeString:
		return "STRING"
	case SeriesTypeDouble:
		return "DOUBLE"
	case SeriesTypeInt:
		return "INT"
	case SeriesTypeBoolean:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("SeriesType(%d)", int32(t))
	}
}

// SeriesMetadata describes one column of a projection.
type SeriesMetadata struct {
	Name string
	Type SeriesType
	// Index marks the column as part of the row identity.
	Index bool
	// Modifiable is true when the column has a write path.
	Modifiable bool
	// Default is true when the column is selected by the DEFAULT filter mode.
	Default bool
}

// SeriesOption adjusts the metadata of a series at registration time.
type SeriesOption func(*SeriesMetadata)

// Index marks a series as part of the row identity.
func Index() SeriesOption {
	return func(m *SeriesMetadata) { m.Index = true }
}

// NotDefault excludes a series from the DEFAULT filter mode.
func NotDefault() SeriesOption {
	return func(m *SeriesMetadata) { m.Default = false }
}

func newMetadata(name string, typ SeriesType, modifiable bool, opts []SeriesOption) SeriesMetadata {
	m := SeriesMetadata{
		Name:       name,
		Type:       typ,
		Modifiable: modifiable,
		Default:    true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}
