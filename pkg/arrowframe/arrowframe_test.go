package arrowframe

import (
	"bytes"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/mappers"
	"github.com/gridframe/gridframe/pkg/network"
	"github.com/gridframe/gridframe/pkg/perunit"
)

func materialize(t *testing.T, mem memory.Allocator, et mappers.ElementType, f dataframe.Filter) arrow.Record {
	t.Helper()
	h := NewHandler(mem)
	_, err := mappers.MustFor(et).Materialize(network.Sample(), f, perunit.Raw(), h)
	require.NoError(t, err)
	return h.Record()
}

func TestHandlerBuildsRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := materialize(t, mem, mappers.Generator, dataframe.Attributes("target_p", "min_q", "voltage_regulator_on", "commissioned"))
	defer rec.Release()

	assert.EqualValues(t, 2, rec.NumRows())
	require.EqualValues(t, 5, rec.NumCols())

	schema := rec.Schema()
	assert.Equal(t, "id", schema.Field(0).Name)
	assert.Equal(t, arrow.STRING, schema.Field(0).Type.ID())
	assert.True(t, flag(schema.Field(0).Metadata, MetaIndex))
	assert.True(t, flag(schema.Field(1).Metadata, MetaModifiable))

	ids := rec.Column(0).(*array.String)
	assert.Equal(t, "GEN1", ids.Value(0))
	targetP := rec.Column(1).(*array.Float64)
	assert.Equal(t, 600.0, targetP.Value(0))
	minQ := rec.Column(2).(*array.Float64)
	assert.True(t, math.IsNaN(minQ.Value(1)))
	on := rec.Column(3).(*array.Boolean)
	assert.True(t, on.Value(1))
	commissioned := rec.Column(4).(*array.String)
	assert.True(t, commissioned.IsNull(0))
	assert.Equal(t, "1998", commissioned.Value(1))
}

func TestFrameAsUpdateInput(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	sb := array.NewStringBuilder(mem)
	sb.AppendValues([]string{"GEN2", "GEN1"}, nil)
	ids := sb.NewArray()
	sb.Release()
	fb := array.NewFloat64Builder(mem)
	fb.AppendValues([]float64{70, 0}, []bool{true, false})
	targetP := fb.NewArray()
	fb.Release()
	bb := array.NewBooleanBuilder(mem)
	bb.AppendValues([]bool{false, true}, nil)
	on := bb.NewArray()
	bb.Release()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.BinaryTypes.String},
		{Name: "target_p", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "voltage_regulator_on", Type: arrow.FixedWidthTypes.Boolean},
	}, nil)
	rec := array.NewRecord(schema, []arrow.Array{ids, targetP, on}, 2)
	ids.Release()
	targetP.Release()
	on.Release()
	defer rec.Release()

	frame, err := NewFrame(rec)
	require.NoError(t, err)
	defer frame.Release()

	n := network.Sample()
	_, err = mappers.MustFor(mappers.Generator).Update(n, frame, perunit.Raw())
	require.NoError(t, err)

	g1, _ := n.Generator("GEN1")
	g2, _ := n.Generator("GEN2")
	assert.Equal(t, 600.0, g1.TargetP, "null leaves the attribute untouched")
	assert.Equal(t, 70.0, g2.TargetP)
	assert.False(t, g2.VoltageRegulatorOn)
}

func TestFrameRejectsUnsupportedTypes(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b := array.NewInt64Builder(mem)
	b.Append(1)
	col := b.NewArray()
	b.Release()
	rec := array.NewRecord(arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Int64}}, nil),
		[]arrow.Array{col}, 1)
	col.Release()
	defer rec.Release()

	_, err := NewFrame(rec)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMarshalling))
}

func TestIPCRoundTrip(t *testing.T) {
	for _, codec := range []Codec{CodecNone, CodecLZ4, CodecZstd} {
		t.Run(string(codec), func(t *testing.T) {
			mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
			defer mem.AssertSize(t, 0)

			rec := materialize(t, mem, mappers.Line, dataframe.AllAttributes())
			defer rec.Release()

			var buf bytes.Buffer
			require.NoError(t, WriteIPC(&buf, rec, codec, mem))

			back, err := ReadIPC(&buf, mem)
			require.NoError(t, err)
			defer back.Release()

			assert.True(t, array.RecordEqual(rec, back))

			frame, err := NewFrame(back)
			require.NoError(t, err)
			defer frame.Release()
			meta := frame.Columns()
			assert.Equal(t, "id", meta[0].Name)
			assert.True(t, meta[0].Index)
			r, ok := frame.DoubleValue(dataframe.ColumnIndex(frame, "r"), 0)
			assert.True(t, ok)
			assert.Equal(t, 3.0, r)
		})
	}
}

func TestParseCodec(t *testing.T) {
	c, err := ParseCodec("zstd")
	require.NoError(t, err)
	assert.Equal(t, CodecZstd, c)
	c, err = ParseCodec("none")
	require.NoError(t, err)
	assert.Equal(t, CodecNone, c)
	_, err = ParseCodec("brotli")
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
}
