// Package export writes materialized columns to files and reads CSV update
// tables back.
//
// Three formats are supported: CSV with a header row, columnar JSON and
// Arrow IPC. Any format can be wrapped in a compressed stream.
//
//	c, _ := mapper.Collect(network, dataframe.AllAttributes(), ctx)
//	err := export.Write(os.Stdout, c.Series(), export.Options{Format: export.FormatCSV})
package export

import (
	"io"
	"strings"

	"github.com/gridframe/gridframe/pkg/arrowframe"
	"github.com/gridframe/gridframe/pkg/compression"
	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
)

// Format is an export file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatArrow Format = "arrow"
)

// ParseFormat reads a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON, FormatArrow:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", errors.InvalidValue("unsupported export format %q", s).WithDetail("format", s)
	}
}

// Options controls Write.
type Options struct {
	Format      Format
	Compression compression.Algorithm
	Level       compression.Level
	// ArrowCodec compresses Arrow IPC bodies. It is independent of
	// Compression, which wraps the whole stream.
	ArrowCodec arrowframe.Codec
}

// Write exports columns to w.
func Write(w io.Writer, columns []*dataframe.Column, opts Options) error {
	level := opts.Level
	if level == 0 {
		level = compression.Default
	}
	cw, err := compression.NewWriter(w, opts.Compression, level)
	if err != nil {
		return err
	}

	switch opts.Format {
	case FormatCSV, "":
		err = WriteCSV(cw, columns)
	case FormatJSON:
		err = WriteJSON(cw, columns)
	case FormatArrow:
		err = WriteArrow(cw, columns, opts.ArrowCodec)
	default:
		err = errors.InvalidValue("unsupported export format %q", string(opts.Format))
	}
	if err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to finish compressed stream")
	}
	return nil
}

// WriteArrow writes columns as an Arrow IPC file.
func WriteArrow(w io.Writer, columns []*dataframe.Column, codec arrowframe.Codec) error {
	h := arrowframe.NewHandler(nil)
	dataframe.Replay(columns, h)
	rec := h.Record()
	defer rec.Release()
	return arrowframe.WriteIPC(w, rec, codec, nil)
}
