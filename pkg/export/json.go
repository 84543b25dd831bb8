package export

import (
	"io"
	"math"

	"github.com/goccy/go-json"

	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
)

type jsonSeries struct {
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Index      bool          `json:"index"`
	Modifiable bool          `json:"modifiable"`
	Default    bool          `json:"default"`
	Values     []interface{} `json:"values"`
}

type jsonFrame struct {
	Rows   int          `json:"rows"`
	Series []jsonSeries `json:"series"`
}

// WriteJSON writes columns as one JSON object holding the row count and
// one entry per series. Null strings and NaN doubles are null.
func WriteJSON(w io.Writer, columns []*dataframe.Column) error {
	frame := jsonFrame{Series: make([]jsonSeries, len(columns))}
	if len(columns) > 0 {
		frame.Rows = columns[0].Len()
	}
	for i, c := range columns {
		values := make([]interface{}, c.Len())
		for r := range values {
			v := c.Value(r)
			if f, ok := v.(float64); ok && math.IsNaN(f) {
				v = nil
			}
			values[r] = v
		}
		frame.Series[i] = jsonSeries{
			Name:       c.Name,
			Type:       c.Type.String(),
			Index:      c.Index,
			Modifiable: c.Modifiable,
			Default:    c.Default,
			Values:     values,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(frame); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode JSON dataframe")
	}
	return nil
}
