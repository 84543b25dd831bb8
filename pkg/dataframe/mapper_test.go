package dataframe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/perunit"
)

type testBus struct{ nominalV float64 }

func (b *testBus) NominalV() float64 { return b.nominalV }

type testGen struct {
	id       string
	p, q     float64
	v        float64
	minQ     float64
	maxQ     float64
	curve    bool
	on       bool
	priority int32
	source   string
	bus      *testBus
	props    map[string]string
}

type testGrid struct {
	gens []*testGen
}

func (g *testGrid) gen(id string) (*testGen, bool) {
	for _, x := range g.gens {
		if x.id == id {
			return x, true
		}
	}
	return nil, false
}

func newTestGrid() *testGrid {
	bus := &testBus{nominalV: 20}
	return &testGrid{gens: []*testGen{
		{id: "G1", p: 100, q: 10, v: 21, minQ: -50, maxQ: 50, on: true, priority: 1, source: "HYDRO", bus: bus,
			props: map[string]string{"owner": "acme"}},
		{id: "G2", p: 200, q: 20, v: 20.5, curve: true, priority: 2, source: "NUCLEAR", bus: bus,
			props: map[string]string{"zone": "north", "owner": "grid"}},
		{id: "G3", p: 300, q: 30, v: 19.8, minQ: -10, maxQ: 10, on: true, priority: 3, source: "WIND"},
	}}
}

func newTestMapper(t *testing.T) *Mapper[*testGrid] {
	t.Helper()
	m, err := NewMapperBuilder[*testGrid, *testGen]("GENERATOR",
		func(g *testGrid) []*testGen { return g.gens },
		ByID("GENERATOR", (*testGrid).gen)).
		StringsIndex("id", func(x *testGen) string { return x.id }).
		Enums("energy_source", []string{"HYDRO", "NUCLEAR", "WIND", "OTHER"},
			func(x *testGen) string { return x.source },
			func(x *testGen, s string) error { x.source = s; return nil }).
		Doubles("p",
			func(x *testGen, ctx perunit.Context) (float64, error) { return perunit.ToPerUnitP(ctx, x.p), nil },
			func(x *testGen, v float64, ctx perunit.Context) error {
				if v < 0 {
					return errors.InvalidValue("p must not be negative")
				}
				x.p = perunit.FromPerUnitP(ctx, v)
				return nil
			}).
		Doubles("q",
			func(x *testGen, ctx perunit.Context) (float64, error) { return perunit.ToPerUnitP(ctx, x.q), nil },
			func(x *testGen, v float64, ctx perunit.Context) error { x.q = perunit.FromPerUnitP(ctx, v); return nil }).
		Doubles("v",
			func(x *testGen, ctx perunit.Context) (float64, error) {
				if x.bus == nil {
					return perunit.ToPerUnitV(ctx, x.v, nil)
				}
				return perunit.ToPerUnitV(ctx, x.v, x.bus)
			}, nil).
		Doubles("min_q",
			func(x *testGen, _ perunit.Context) (float64, error) {
				if x.curve {
					return math.NaN(), nil
				}
				return x.minQ, nil
			}, nil, NotDefault()).
		Ints("priority", func(x *testGen) int32 { return x.priority },
			func(x *testGen, v int32) error { x.priority = v; return nil }, NotDefault()).
		Booleans("on", func(x *testGen) bool { return x.on },
			func(x *testGen, v bool) error { x.on = v; return nil }).
		Properties(func(x *testGen) map[string]string { return x.props }).
		Build()
	require.NoError(t, err)
	return m
}

func TestSeriesMetadata(t *testing.T) {
	m := newTestMapper(t)
	meta := m.SeriesMetadata()

	names := make([]string, len(meta))
	for i, s := range meta {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"id", "energy_source", "p", "q", "v", "min_q", "priority", "on"}, names)

	assert.Equal(t, SeriesMetadata{Name: "id", Type: SeriesTypeString, Index: true, Default: true}, meta[0])
	assert.Equal(t, SeriesMetadata{Name: "v", Type: SeriesTypeDouble, Default: true}, meta[4])
	assert.Equal(t, SeriesMetadata{Name: "priority", Type: SeriesTypeInt, Modifiable: true}, meta[6])
	assert.Equal(t, SeriesTypeBoolean, meta[7].Type)

	s, ok := m.Series("energy_source")
	require.True(t, ok)
	assert.True(t, s.Modifiable)
	_, ok = m.Series("owner")
	assert.False(t, ok)
}

func TestMaterializeAll(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()

	c, err := m.Collect(grid, AllAttributes(), perunit.Raw())
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "energy_source", "p", "q", "v", "min_q", "priority", "on", "owner", "zone"}, c.Names())
	assert.Equal(t, 3, c.RowCount())

	id, _ := c.Column("id")
	assert.Equal(t, []string{"G1", "G2", "G3"}, id.Strings)
	p, _ := c.Column("p")
	assert.Equal(t, []float64{100, 200, 300}, p.Doubles)
	on, _ := c.Column("on")
	assert.Equal(t, []bool{true, false, true}, on.Booleans)

	owner, _ := c.Column("owner")
	assert.False(t, owner.Modifiable)
	assert.Equal(t, "acme", owner.Value(0))
	assert.Equal(t, "grid", owner.Value(1))
	assert.Nil(t, owner.Value(2))
	zone, _ := c.Column("zone")
	assert.True(t, zone.IsNull(0))
	assert.Equal(t, "north", zone.Value(1))
}

func TestDefaultIsSubsetOfAll(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()

	all, err := m.Collect(grid, AllAttributes(), perunit.Raw())
	require.NoError(t, err)
	def, err := m.Collect(grid, DefaultAttributes(), perunit.Raw())
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "energy_source", "p", "q", "v", "on"}, def.Names())
	for _, col := range def.Series() {
		other, ok := all.Column(col.Name)
		require.True(t, ok, col.Name)
		assert.Equal(t, col, other)
	}
}

func TestExplicitAttributes(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()

	c, err := m.Collect(grid, Attributes("id", "p"), perunit.Raw())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "p"}, c.Names())

	// index leads, requested order is kept, duplicates collapse
	c, err = m.Collect(grid, Attributes("zone", "q", "q"), perunit.Raw())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "zone", "q"}, c.Names())
}

func TestExplicitUnknownColumnFailsBeforeRows(t *testing.T) {
	reads := 0
	m := NewMapperBuilder[*testGrid, *testGen]("GENERATOR",
		func(g *testGrid) []*testGen { reads++; return g.gens },
		ByID("GENERATOR", (*testGrid).gen)).
		StringsIndex("id", func(x *testGen) string { reads++; return x.id }).
		MustBuild()

	_, err := m.Collect(newTestGrid(), Attributes("id", "nope"), perunit.Raw())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	assert.Equal(t, 0, reads)

	// with properties the name may still be a key, but is rejected before
	// any column is written
	mp := newTestMapper(t)
	h := NewCollector()
	_, err = mp.Materialize(newTestGrid(), Attributes("p", "nope"), perunit.Raw(), h)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	assert.Empty(t, h.Series())
}

func TestColumnStability(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()

	a, err := m.Collect(grid, AllAttributes(), perunit.Raw())
	require.NoError(t, err)
	b, err := m.Collect(grid, AllAttributes(), perunit.Raw())
	require.NoError(t, err)
	assert.Equal(t, a.Names(), b.Names())
	for i, col := range a.Series() {
		other := b.Series()[i]
		assert.Equal(t, col.SeriesMetadata, other.SeriesMetadata)
		for r := 0; r < col.Len(); r++ {
			if col.Type == SeriesTypeDouble && math.IsNaN(col.Doubles[r]) {
				assert.True(t, math.IsNaN(other.Doubles[r]))
				continue
			}
			assert.Equal(t, col.Value(r), other.Value(r))
		}
	}
}

func TestUndefinedOptionalAttributeIsNaN(t *testing.T) {
	m := newTestMapper(t)
	c, err := m.Collect(newTestGrid(), Attributes("min_q"), perunit.Raw())
	require.NoError(t, err)

	minQ, _ := c.Column("min_q")
	assert.Equal(t, -50.0, minQ.Doubles[0])
	assert.True(t, math.IsNaN(minQ.Doubles[1]))
	assert.Equal(t, -10.0, minQ.Doubles[2])
}

func TestPerUnitGetterErrorCarriesContext(t *testing.T) {
	m := newTestMapper(t)
	_, err := m.Collect(newTestGrid(), Attributes("v"), perunit.NewContext(true, 100))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	id, _ := e.Detail("element_id")
	assert.Equal(t, "G3", id)
	col, _ := e.Detail("column")
	assert.Equal(t, "v", col)
	row, _ := e.Detail("row")
	assert.Equal(t, 2, row)
}

func TestSelectionRows(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()

	sel := NewTable(2).Strings("id", []string{"G3", "G1"}).MustBuild()
	c, err := m.Collect(grid, Attributes("p").WithSelection(sel), perunit.Raw())
	require.NoError(t, err)

	id, _ := c.Column("id")
	assert.Equal(t, []string{"G3", "G1"}, id.Strings)
	p, _ := c.Column("p")
	assert.Equal(t, []float64{300, 100}, p.Doubles)
}

func TestSelectionMissingKey(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()
	sel := NewTable(3).Strings("id", []string{"G1", "GX", "G2"}).MustBuild()

	_, err := m.Collect(grid, DefaultAttributes().WithSelection(sel), perunit.Raw())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	f := DefaultAttributes().WithSelection(sel)
	f.SkipMissingRows = true
	c, err := m.Collect(grid, f, perunit.Raw())
	require.NoError(t, err)
	id, _ := c.Column("id")
	assert.Equal(t, []string{"G1", "G2"}, id.Strings)
}

func TestSelectionPropertiesOnlyCoverSelectedRows(t *testing.T) {
	m := newTestMapper(t)
	sel := NewTable(1).Strings("id", []string{"G1"}).MustBuild()

	c, err := m.Collect(newTestGrid(), AllAttributes().WithSelection(sel), perunit.Raw())
	require.NoError(t, err)
	_, hasZone := c.Column("zone")
	assert.False(t, hasZone)
	_, hasOwner := c.Column("owner")
	assert.True(t, hasOwner)
}

func TestPropertyColumnBound(t *testing.T) {
	m := newTestMapper(t)
	f := AllAttributes()
	f.MaxPropertyColumns = 1

	_, err := m.Collect(newTestGrid(), f, perunit.Raw())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
}

func TestUpdateIndependence(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()

	in := NewTable(2).
		Strings("id", []string{"G1", "G2"}).
		Doubles("p", []float64{150, 250}).
		Absent("p", 1).
		MustBuild()

	n, err := m.Update(grid, in, perunit.Raw())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, 150.0, grid.gens[0].p)
	assert.Equal(t, 200.0, grid.gens[1].p)
	assert.Equal(t, 300.0, grid.gens[2].p)
	for i, q := range []float64{10, 20, 30} {
		assert.Equal(t, q, grid.gens[i].q)
	}
}

func TestUpdateLastWriteWins(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()

	in := NewTable(3).
		Strings("id", []string{"G2", "G1", "G2"}).
		Doubles("p", []float64{1, 2, 3}).
		Doubles("q", []float64{4, 5, 6}).
		Absent("q", 2).
		MustBuild()

	_, err := m.Update(grid, in, perunit.Raw())
	require.NoError(t, err)
	assert.Equal(t, 3.0, grid.gens[1].p)
	assert.Equal(t, 4.0, grid.gens[1].q)
	assert.Equal(t, 2.0, grid.gens[0].p)
}

func TestUpdateUnknownKeyAppliesNothing(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()

	in := NewTable(3).
		Strings("id", []string{"G1", "G2", "MISSING"}).
		Doubles("p", []float64{1, 2, 3}).
		MustBuild()

	n, err := m.Update(grid, in, perunit.Raw())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	assert.Equal(t, 0, n)
	assert.Equal(t, 100.0, grid.gens[0].p)
	assert.Equal(t, 200.0, grid.gens[1].p)
}

func TestUpdateSetterFailureKeepsEarlierRows(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()

	in := NewTable(3).
		Strings("id", []string{"G1", "G2", "G3"}).
		Doubles("p", []float64{1, -1, 3}).
		Ints("priority", []int32{7, 8, 9}).
		MustBuild()

	n, err := m.Update(grid, in, perunit.Raw())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
	assert.Equal(t, 1, n)

	assert.Equal(t, 1.0, grid.gens[0].p)
	assert.Equal(t, int32(7), grid.gens[0].priority)
	// p runs before priority on the failing row
	assert.Equal(t, 200.0, grid.gens[1].p)
	assert.Equal(t, int32(2), grid.gens[1].priority)
	assert.Equal(t, 300.0, grid.gens[2].p)

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	id, _ := e.Detail("element_id")
	assert.Equal(t, "G2", id)
}

func TestUpdateValidation(t *testing.T) {
	m := newTestMapper(t)

	tests := []struct {
		name    string
		input   *Table
		errType errors.ErrorType
	}{
		{
			name:    "unknown column",
			input:   NewTable(1).Strings("id", []string{"G1"}).Doubles("nope", []float64{1}).MustBuild(),
			errType: errors.ErrorTypeNotFound,
		},
		{
			name:    "read-only column",
			input:   NewTable(1).Strings("id", []string{"G1"}).Doubles("v", []float64{1}).MustBuild(),
			errType: errors.ErrorTypeUnsupported,
		},
		{
			name:    "property column",
			input:   NewTable(1).Strings("id", []string{"G1"}).Strings("owner", []string{"x"}).MustBuild(),
			errType: errors.ErrorTypeNotFound,
		},
		{
			name:    "type mismatch",
			input:   NewTable(1).Strings("id", []string{"G1"}).Ints("p", []int32{1}).MustBuild(),
			errType: errors.ErrorTypeInvalidValue,
		},
		{
			name:    "missing id column",
			input:   NewTable(1).Doubles("p", []float64{1}).MustBuild(),
			errType: errors.ErrorTypeInvalidValue,
		},
		{
			name:    "unknown enum name",
			input:   NewTable(1).Strings("id", []string{"G1"}).Strings("energy_source", []string{"hydro"}).MustBuild(),
			errType: errors.ErrorTypeInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := newTestGrid()
			_, err := m.Update(grid, tt.input, perunit.Raw())
			require.Error(t, err)
			assert.Equal(t, tt.errType, errors.TypeOf(err))
			assert.Equal(t, 100.0, grid.gens[0].p)
			assert.Equal(t, "HYDRO", grid.gens[0].source)
		})
	}
}

func TestUpdateAllTypes(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()

	in := NewTable(1).
		Strings("id", []string{"G3"}).
		Strings("energy_source", []string{"OTHER"}).
		Ints("priority", []int32{42}).
		Booleans("on", []bool{false}).
		MustBuild()

	_, err := m.Update(grid, in, perunit.Raw())
	require.NoError(t, err)
	assert.Equal(t, "OTHER", grid.gens[2].source)
	assert.Equal(t, int32(42), grid.gens[2].priority)
	assert.False(t, grid.gens[2].on)
}

func TestReadBackPerUnitRoundTrip(t *testing.T) {
	m := newTestMapper(t)
	grid := newTestGrid()
	ctx := perunit.NewContext(true, 100)

	read, err := m.Collect(grid, Attributes("p", "q"), ctx)
	require.NoError(t, err)
	p, _ := read.Column("p")
	assert.Equal(t, []float64{1, 2, 3}, p.Doubles)

	_, err = m.Update(grid, read, ctx)
	require.NoError(t, err)
	assert.InDelta(t, 100, grid.gens[0].p, 1e-9)
	assert.InDelta(t, 30, grid.gens[2].q, 1e-9)
}

func TestBuilderRejectsDuplicateSeries(t *testing.T) {
	_, err := NewMapperBuilder[*testGrid, *testGen]("GENERATOR",
		func(g *testGrid) []*testGen { return g.gens },
		ByID("GENERATOR", (*testGrid).gen)).
		StringsIndex("id", func(x *testGen) string { return x.id }).
		Ints("id", func(x *testGen) int32 { return 0 }, nil).
		Build()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
}
