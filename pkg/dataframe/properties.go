package dataframe

import (
	"sort"

	"github.com/gridframe/gridframe/pkg/errors"
)

// propertyColumns holds the result of the first pass over the selected
// entities: their property maps in row order and the sorted distinct keys.
type propertyColumns struct {
	values []map[string]string
	keys   []string
	set    map[string]struct{}
}

// collectProperties gathers distinct keys over items. Keys that collide with
// a static series name are dropped. More than max distinct keys is an error.
func collectProperties[T any](items []T, get func(T) map[string]string, static map[string]int, max int) (*propertyColumns, error) {
	pc := &propertyColumns{
		values: make([]map[string]string, len(items)),
		set:    make(map[string]struct{}),
	}
	for i, item := range items {
		props := get(item)
		pc.values[i] = props
		for k := range props {
			if _, ok := static[k]; ok {
				continue
			}
			if _, ok := pc.set[k]; ok {
				continue
			}
			if len(pc.set) == max {
				return nil, errors.InvalidValue("more than %d distinct property keys", max).
					WithDetail("max_property_columns", max)
			}
			pc.set[k] = struct{}{}
		}
	}
	pc.keys = make([]string, 0, len(pc.set))
	for k := range pc.set {
		pc.keys = append(pc.keys, k)
	}
	sort.Strings(pc.keys)
	return pc, nil
}

func (pc *propertyColumns) len() int {
	if pc == nil {
		return 0
	}
	return len(pc.keys)
}

func (pc *propertyColumns) names() []string {
	if pc == nil {
		return nil
	}
	return pc.keys
}

func (pc *propertyColumns) has(key string) bool {
	_, ok := pc.set[key]
	return ok
}

// emit writes the column for key. Entities without the key get a null.
func (pc *propertyColumns) emit(key string, h Handler) {
	meta := SeriesMetadata{Name: key, Type: SeriesTypeString}
	w := h.AddStringSeries(meta, len(pc.values))
	for i, props := range pc.values {
		if v, ok := props[key]; ok {
			w.Set(i, v)
		} else {
			w.SetNull(i)
		}
	}
}
