package network

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridframe/gridframe/pkg/errors"
)

func TestSampleIndexes(t *testing.T) {
	n := Sample()

	assert.Len(t, n.Buses(), 4)
	assert.Len(t, n.Generators(), 2)
	assert.Len(t, n.Loads(), 1)
	assert.Len(t, n.Lines(), 1)
	assert.Len(t, n.TwoWindingsTransformers(), 2)

	g, ok := n.Generator("GEN2")
	require.True(t, ok)
	assert.Equal(t, 20.0, g.Bus.NominalV())
	assert.Equal(t, 110.0, g.RegulatingBus.NominalV())

	// ids are typed: a bus id is not a generator
	_, ok = n.Generator("B1")
	assert.False(t, ok)

	g1, _ := n.Generator("GEN1")
	assert.Same(t, g1.Bus, g1.RegulatingBus)
}

func TestDuplicateIDsAreRejected(t *testing.T) {
	n := Sample()
	b, _ := n.Bus("B1")

	err := n.AddLoad(&Load{Identifiable: Identifiable{ID: "GEN1"}, Bus: b})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))

	err = n.AddLoad(&Load{Identifiable: Identifiable{ID: ""}, Bus: b})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
}

func TestForeignBusIsRejected(t *testing.T) {
	other := Sample()
	foreign, _ := other.Bus("B1")

	n := Sample()
	err := n.AddLoad(&Load{Identifiable: Identifiable{ID: "LOADX"}, Bus: foreign})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))

	err = n.AddLoad(&Load{Identifiable: Identifiable{ID: "LOADY"}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
}

func TestNilTerminalNominalV(t *testing.T) {
	var b *Bus
	assert.True(t, math.IsNaN(b.NominalV()))
	var vl *VoltageLevel
	assert.True(t, math.IsNaN(vl.NominalV()))
}

func TestReactiveLimits(t *testing.T) {
	n := Sample()
	g1, _ := n.Generator("GEN1")
	g2, _ := n.Generator("GEN2")

	require.NoError(t, g1.SetMinQ(-100))
	assert.Equal(t, -100.0, g1.ReactiveLimits.MinQ(0))
	assert.Equal(t, 400.0, g1.ReactiveLimits.MaxQ(0))

	err := g1.SetMaxQ(-200)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))

	err = g2.SetMinQ(-1)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
	assert.Equal(t, ReactiveLimitsCurve, g2.ReactiveLimits.Kind())

	assert.InDelta(t, -17.5, g2.ReactiveLimits.MinQ(40), 1e-12)
	assert.Equal(t, 30.0, g2.ReactiveLimits.MaxQ(-10))
	assert.Equal(t, 25.0, g2.ReactiveLimits.MaxQ(100))
}

func TestCurveValidation(t *testing.T) {
	_, err := NewReactiveCapabilityCurve(CurvePoint{P: 1})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))

	_, err = NewReactiveCapabilityCurve(CurvePoint{P: 1}, CurvePoint{P: 1})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
}

func TestProperties(t *testing.T) {
	var i Identifiable
	i.SetProperty("a", "1")
	assert.Equal(t, map[string]string{"a": "1"}, i.Properties)
	i.SetProperty("a", "")
	assert.Empty(t, i.Properties)
}

func TestCurrent(t *testing.T) {
	assert.InDelta(t, 144.3375673, Current(100, 0, 400), 1e-6)
	assert.True(t, math.IsNaN(Current(1, 1, 0)))
	assert.True(t, math.IsNaN(Current(1, 1, math.NaN())))
}

func TestFileRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, Sample(), format))

			n, err := Read(&buf, format)
			require.NoError(t, err)

			g2, ok := n.Generator("GEN2")
			require.True(t, ok)
			assert.Equal(t, "B3", g2.RegulatingBus.ID)
			assert.Equal(t, ReactiveLimitsCurve, g2.ReactiveLimits.Kind())
			assert.Equal(t, "1998", g2.Properties["commissioned"])

			g1, _ := n.Generator("GEN1")
			assert.Equal(t, -300.0, g1.ReactiveLimits.MinQ(0))
			assert.Same(t, g1.Bus, g1.RegulatingBus)

			t1, _ := n.TwoWindingsTransformer("T1")
			assert.Equal(t, 0.24, t1.R)
			assert.Equal(t, "B3", t1.Bus2.ID)

			l1, _ := n.Line("L1")
			assert.Equal(t, 1.93e-4, l1.B2)
			assert.True(t, l1.Connected1)
		})
	}
}

func TestReadMissingResultsAreNaN(t *testing.T) {
	doc := `
id: tiny
voltage_levels:
  - id: VL
    nominal_v: 20
buses:
  - id: B
    voltage_level: VL
loads:
  - id: L
    bus: B
    p0: 1
    q0: 2
`
	n, err := Read(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)
	l, _ := n.Load("L")
	assert.True(t, math.IsNaN(l.P))
	assert.Equal(t, LoadTypeUndefined, l.Type)
	b, _ := n.Bus("B")
	assert.True(t, math.IsNaN(b.V))
}

func TestReadErrors(t *testing.T) {
	_, err := Read(strings.NewReader(`{"id":"x","buses":[{"id":"B","voltage_level":"NOPE"}]}`), FormatJSON)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = Read(strings.NewReader(`{not json`), FormatJSON)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))

	_, err = Read(strings.NewReader(``), Format("xml"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yml")
	require.NoError(t, SaveFile(path, Sample()))

	n, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sample", n.ID)

	_, err = LoadFile(filepath.Join(t.TempDir(), "grid.txt"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}
