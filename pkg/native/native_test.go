package native

import (
	"math"
	"testing"
	"unsafe"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/mappers"
	"github.com/gridframe/gridframe/pkg/metrics"
	"github.com/gridframe/gridframe/pkg/network"
	"github.com/gridframe/gridframe/pkg/perunit"
)

func live() float64 {
	return testutil.ToFloat64(metrics.NativeDataframesLive)
}

func assertColumnsEqual(t *testing.T, want, got []*dataframe.Column) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].SeriesMetadata, got[i].SeriesMetadata)
		require.Equal(t, want[i].Len(), got[i].Len(), want[i].Name)
		for r := 0; r < want[i].Len(); r++ {
			w, g := want[i].Value(r), got[i].Value(r)
			if wf, ok := w.(float64); ok && math.IsNaN(wf) {
				assert.True(t, math.IsNaN(g.(float64)), "%s[%d]", want[i].Name, r)
				continue
			}
			assert.Equal(t, w, g, "%s[%d]", want[i].Name, r)
		}
	}
}

func TestCodeTables(t *testing.T) {
	for i, typ := range SeriesTypeCodes.Values() {
		code, err := SeriesTypeCodes.Code(typ)
		require.NoError(t, err)
		assert.EqualValues(t, i, code)
		back, err := SeriesTypeCodes.Value(code)
		require.NoError(t, err)
		assert.Equal(t, typ, back)
	}
	for _, et := range mappers.ElementTypes() {
		code, err := ElementTypeCodes.Code(et)
		require.NoError(t, err)
		assert.EqualValues(t, et, code)
		back, err := ElementTypeCodes.Value(code)
		require.NoError(t, err)
		assert.Equal(t, et, back)
	}
	assert.Equal(t, mappers.ElementTypes(), ElementTypeCodes.Values())

	_, err := ElementTypeCodes.Value(5)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMarshalling))
	_, err = SeriesTypeCodes.Value(-1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMarshalling))
	_, err = SeriesTypeCodes.Code(dataframe.SeriesType(7))
	assert.True(t, errors.IsType(err, errors.ErrorTypeMarshalling))
	_, err = FilterModeCodes.Value(3)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMarshalling))
}

func TestCodeTableRejectsDuplicates(t *testing.T) {
	assert.Panics(t, func() {
		NewCodeTable("x", Entry[string]{"a", 0}, Entry[string]{"b", 0})
	})
	assert.Panics(t, func() {
		NewCodeTable("x", Entry[string]{"a", 0}, Entry[string]{"a", 1})
	})
}

func TestHandlerMatchesCollector(t *testing.T) {
	n := network.Sample()
	for _, et := range mappers.ElementTypes() {
		t.Run(et.String(), func(t *testing.T) {
			m := mappers.MustFor(et)
			want, err := m.Collect(n, dataframe.AllAttributes(), perunit.Raw())
			require.NoError(t, err)

			h := NewHandler()
			rows, err := m.Materialize(n, dataframe.AllAttributes(), perunit.Raw(), h)
			require.NoError(t, err)
			df, err := h.Dataframe()
			require.NoError(t, err)
			defer df.Release()

			got, err := df.Columns()
			require.NoError(t, err)
			assertColumnsEqual(t, want.Series(), got)
			assert.Equal(t, want.RowCount(), rows)
		})
	}
}

func TestReleaseLifecycle(t *testing.T) {
	before := live()

	c, err := mappers.MustFor(mappers.Load).Collect(network.Sample(), dataframe.AllAttributes(), perunit.Raw())
	require.NoError(t, err)
	df, err := Marshal(c.Series())
	require.NoError(t, err)
	assert.Equal(t, before+1, live())

	count, err := df.SeriesCount()
	require.NoError(t, err)
	assert.Equal(t, len(c.Series()), count)

	require.NoError(t, df.Release())
	assert.Equal(t, before, live())

	assert.Error(t, df.Release(), "double release")
	_, err = df.View()
	assert.Error(t, err)
	_, err = df.Columns()
	assert.Error(t, err)
	_, err = df.Detach()
	assert.Error(t, err)
}

func TestDetachAndFree(t *testing.T) {
	before := live()
	c, err := mappers.MustFor(mappers.Bus).Collect(network.Sample(), dataframe.DefaultAttributes(), perunit.Raw())
	require.NoError(t, err)

	df, err := Marshal(c.Series())
	require.NoError(t, err)
	p, err := df.Detach()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Error(t, df.Release(), "detached dataframe is no longer owned")
	assert.Equal(t, before+1, live())

	back := Adopt(p)
	cols, err := back.Columns()
	require.NoError(t, err)
	assertColumnsEqual(t, c.Series(), cols)
	p, err = back.Detach()
	require.NoError(t, err)

	FreeDataframe(p)
	assert.Equal(t, before, live())
	FreeDataframe(nil)
}

func TestFailedMaterializationIsDiscarded(t *testing.T) {
	before := live()
	h := NewHandler()
	_, err := mappers.MustFor(mappers.Generator).Materialize(network.Sample(), dataframe.Attributes("nope"), perunit.Raw(), h)
	require.Error(t, err)
	h.Discard()
	assert.Equal(t, before, live())
}

func TestViewAsUpdateInput(t *testing.T) {
	in := dataframe.NewCollector()
	in.SetSeriesCount(3)
	ids := in.AddStringSeries(dataframe.SeriesMetadata{Name: "id", Type: dataframe.SeriesTypeString, Index: true}, 3)
	ids.Set(0, "GEN1")
	ids.Set(1, "GEN2")
	ids.Set(2, "GEN1")
	targetP := in.AddDoubleSeries(dataframe.SeriesMetadata{Name: "target_p", Type: dataframe.SeriesTypeDouble}, 3)
	targetP.Set(0, 500)
	targetP.Set(1, math.NaN())
	targetP.Set(2, 550)
	source := in.AddStringSeries(dataframe.SeriesMetadata{Name: "energy_source", Type: dataframe.SeriesTypeString}, 3)
	source.SetNull(0)
	source.Set(1, "WIND")
	source.SetNull(2)

	df, err := Marshal(in.Series())
	require.NoError(t, err)
	defer df.Release()
	view, err := df.View()
	require.NoError(t, err)
	assert.Equal(t, 3, view.RowCount())

	n := network.Sample()
	_, err = mappers.MustFor(mappers.Generator).Update(n, view, perunit.Raw())
	require.NoError(t, err)

	g1, _ := n.Generator("GEN1")
	g2, _ := n.Generator("GEN2")
	assert.Equal(t, 550.0, g1.TargetP, "later row wins")
	assert.Equal(t, network.EnergySourceNuclear, g1.EnergySource)
	assert.Equal(t, 60.0, g2.TargetP, "NaN leaves the value untouched")
	assert.Equal(t, network.EnergySourceWind, g2.EnergySource)
}

func TestPerUnitRoundTripThroughNativeMemory(t *testing.T) {
	n := network.Sample()
	m := mappers.MustFor(mappers.Line)
	ctx := perunit.NewContext(true, 100)

	h := NewHandler()
	_, err := m.Materialize(n, dataframe.Attributes("r", "x", "b1", "b2"), ctx, h)
	require.NoError(t, err)
	df, err := h.Dataframe()
	require.NoError(t, err)
	defer df.Release()

	view, err := df.View()
	require.NoError(t, err)
	_, err = m.Update(n, view, ctx)
	require.NoError(t, err)

	l1, _ := n.Line("L1")
	assert.InDelta(t, 3.0, l1.R, 1e-12)
	assert.InDelta(t, 33.0, l1.X, 1e-12)
	assert.InDelta(t, 1.93e-4, l1.B2, 1e-15)
}

func TestViewRejectsMalformedInput(t *testing.T) {
	_, err := NewView(nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMarshalling))

	c, err := mappers.MustFor(mappers.Bus).Collect(network.Sample(), dataframe.Attributes("v_mag"), perunit.Raw())
	require.NoError(t, err)
	df, err := Marshal(c.Series())
	require.NoError(t, err)
	defer df.Release()

	series := unsafe.Slice(df.ptr.series, int(df.ptr.series_count))
	series[1]._type = 9
	_, err = df.View()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMarshalling))
	series[1]._type = 1

	series[1].data.length--
	_, err = df.View()
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
	series[1].data.length++

	_, err = df.View()
	assert.NoError(t, err)
}

func TestMarshalMetadata(t *testing.T) {
	before := live()
	meta := mappers.MustFor(mappers.Generator).SeriesMetadata()
	p, err := MarshalMetadata(meta)
	require.NoError(t, err)
	defer FreeMetadata(p)
	assert.Equal(t, before, live(), "metadata is not a live dataframe")

	view, err := NewView(p)
	require.NoError(t, err)
	assert.Equal(t, meta, view.Columns())
	assert.Equal(t, 0, view.RowCount())
}
