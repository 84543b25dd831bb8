package export

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/pool"
)

// WriteCSV writes a header row and one record per row. Null strings and
// NaN doubles are written as empty cells.
func WriteCSV(w io.Writer, columns []*dataframe.Column) error {
	writer := csv.NewWriter(w)

	header := pool.GetStringSlice(len(columns))
	defer pool.PutStringSlice(header)
	for i, c := range columns {
		header[i] = c.Name
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write CSV header")
	}

	rows := 0
	if len(columns) > 0 {
		rows = columns[0].Len()
	}
	record := pool.GetStringSlice(len(columns))
	defer pool.PutStringSlice(record)
	for r := 0; r < rows; r++ {
		for i, c := range columns {
			record[i] = cell(c, r)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write CSV record").WithDetail("row", r)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to flush CSV writer")
	}
	return nil
}

func cell(c *dataframe.Column, row int) string {
	switch c.Type {
	case dataframe.SeriesTypeString:
		if c.IsNull(row) {
			return ""
		}
		return c.Strings[row]
	case dataframe.SeriesTypeDouble:
		v := c.Doubles[row]
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case dataframe.SeriesTypeInt:
		return strconv.FormatInt(int64(c.Ints[row]), 10)
	default:
		return strconv.FormatBool(c.Booleans[row])
	}
}

// SeriesLookup describes the series a column name updates. Mapper.Series
// satisfies it.
type SeriesLookup func(name string) (dataframe.SeriesMetadata, bool)

// ReadCSV reads an update table. Each column is typed after the series of
// the same name; columns unknown to lookup are read as text so the update
// reports them. Empty cells are absent values.
func ReadCSV(r io.Reader, lookup SeriesLookup) (*dataframe.Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInvalidValue, "malformed CSV input")
	}
	if len(records) == 0 {
		return nil, errors.InvalidValue("CSV input has no header row")
	}

	header, body := records[0], records[1:]
	b := dataframe.NewTable(len(body))
	for i, name := range header {
		typ := dataframe.SeriesTypeString
		if meta, ok := lookup(name); ok {
			typ = meta.Type
		}
		if err := addColumn(b, name, typ, i, body); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func addColumn(b *dataframe.TableBuilder, name string, typ dataframe.SeriesType, col int, body [][]string) error {
	var absent []int
	parseErr := func(row int, err error) error {
		return errors.Wrap(err, errors.ErrorTypeInvalidValue, "invalid "+typ.String()+" value").
			WithDetail("column", name).WithDetail("row", row)
	}

	switch typ {
	case dataframe.SeriesTypeString:
		values := make([]string, len(body))
		for r, rec := range body {
			if rec[col] == "" {
				absent = append(absent, r)
			}
			values[r] = rec[col]
		}
		b.Strings(name, values)
	case dataframe.SeriesTypeDouble:
		values := make([]float64, len(body))
		for r, rec := range body {
			if rec[col] == "" {
				absent = append(absent, r)
				continue
			}
			v, err := strconv.ParseFloat(rec[col], 64)
			if err != nil {
				return parseErr(r, err)
			}
			values[r] = v
		}
		b.Doubles(name, values)
	case dataframe.SeriesTypeInt:
		values := make([]int32, len(body))
		for r, rec := range body {
			if rec[col] == "" {
				absent = append(absent, r)
				continue
			}
			v, err := strconv.ParseInt(rec[col], 10, 32)
			if err != nil {
				return parseErr(r, err)
			}
			values[r] = int32(v)
		}
		b.Ints(name, values)
	case dataframe.SeriesTypeBoolean:
		values := make([]bool, len(body))
		for r, rec := range body {
			if rec[col] == "" {
				absent = append(absent, r)
				continue
			}
			v, err := strconv.ParseBool(rec[col])
			if err != nil {
				return parseErr(r, err)
			}
			values[r] = v
		}
		b.Booleans(name, values)
	}
	if len(absent) > 0 {
		b.Absent(name, absent...)
	}
	return nil
}
