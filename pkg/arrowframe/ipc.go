package arrowframe

import (
	"bytes"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/gridframe/gridframe/pkg/errors"
)

// Codec is the IPC body compression.
type Codec string

const (
	CodecNone Codec = ""
	CodecLZ4  Codec = "lz4"
	CodecZstd Codec = "zstd"
)

// ParseCodec accepts "", "none", "lz4" and "zstd".
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "", "none":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return CodecNone, errors.InvalidValue("unsupported arrow compression %q", s).WithDetail("compression", s)
	}
}

// WriteIPC writes rec as an Arrow IPC file.
func WriteIPC(w io.Writer, rec arrow.Record, codec Codec, mem memory.Allocator) error {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	opts := []ipc.Option{ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem)}
	switch codec {
	case CodecNone:
	case CodecLZ4:
		opts = append(opts, ipc.WithLZ4())
	case CodecZstd:
		opts = append(opts, ipc.WithZstd())
	default:
		return errors.InvalidValue("unsupported arrow compression %q", codec)
	}

	fw, err := ipc.NewFileWriter(w, opts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create arrow writer")
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write record batch")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to close arrow writer")
	}
	return nil
}

// ReadIPC reads an Arrow IPC file into a single record, concatenating
// batches. The caller must Release the record.
func ReadIPC(r io.Reader, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to read arrow data")
	}
	fr, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeMarshalling, "failed to open arrow file")
	}
	defer fr.Close()

	batches := make([]arrow.Record, 0, fr.NumRecords())
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.RecordAt(i)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeMarshalling, "failed to read record batch")
		}
		batches = append(batches, rec)
	}

	schema := fr.Schema()
	switch len(batches) {
	case 0:
		cols := emptyColumns(schema, mem)
		rec := array.NewRecord(schema, cols, 0)
		for _, c := range cols {
			c.Release()
		}
		return rec, nil
	case 1:
		batches[0].Retain()
		return batches[0], nil
	}

	var rows int64
	cols := make([]arrow.Array, schema.NumFields())
	for i := range cols {
		parts := make([]arrow.Array, len(batches))
		for j, b := range batches {
			parts[j] = b.Column(i)
		}
		cols[i], err = array.Concatenate(parts, mem)
		if err != nil {
			for _, c := range cols[:i] {
				c.Release()
			}
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to concatenate record batches")
		}
	}
	for _, b := range batches {
		rows += b.NumRows()
	}
	rec := array.NewRecord(schema, cols, rows)
	for _, c := range cols {
		c.Release()
	}
	return rec, nil
}

func emptyColumns(schema *arrow.Schema, mem memory.Allocator) []arrow.Array {
	cols := make([]arrow.Array, schema.NumFields())
	for i, f := range schema.Fields() {
		cols[i] = array.MakeArrayOfNull(mem, f.Type, 0)
	}
	return cols
}
