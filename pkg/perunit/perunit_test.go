package perunit

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridframe/gridframe/pkg/errors"
)

type nominal float64

func (n nominal) NominalV() float64 { return float64(n) }

func closeTo(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestNewContextDefaults(t *testing.T) {
	assert.Equal(t, DefaultNominalApparentPower, NewContext(true, 0).NominalApparentPower)
	assert.Equal(t, DefaultNominalApparentPower, NewContext(true, math.NaN()).NominalApparentPower)
	assert.Equal(t, 250.0, NewContext(true, 250).NominalApparentPower)
	assert.False(t, Raw().PerUnit)
}

func TestPassThroughWhenPerUnitOff(t *testing.T) {
	ctx := NewContext(false, 100)
	x := 123.456

	assert.Equal(t, x, ToPerUnitP(ctx, x))
	assert.Equal(t, x, FromPerUnitP(ctx, x))
	assert.Equal(t, x, ToPerUnitAngle(ctx, x))
	assert.Equal(t, x, FromPerUnitAngle(ctx, x))

	// terminals are not even consulted
	v, err := ToPerUnitV(ctx, x, nil)
	require.NoError(t, err)
	assert.Equal(t, x, v)
	i, err := FromPerUnitI(ctx, x, nil)
	require.NoError(t, err)
	assert.Equal(t, x, i)
	z, err := ToPerUnitZ(ctx, x, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, x, z)
	g, err := ToPerUnitShuntG(ctx, x, 1, 2, 0, math.NaN())
	require.NoError(t, err)
	assert.Equal(t, x, g)
}

func TestKnownValues(t *testing.T) {
	ctx := NewContext(true, 100)

	assert.Equal(t, 1.5, ToPerUnitP(ctx, 150))

	v, err := ToPerUnitV(ctx, 231, nominal(220))
	require.NoError(t, err)
	assert.InDelta(t, 1.05, v, 1e-12)

	assert.InDelta(t, math.Pi, ToPerUnitAngle(ctx, 180), 1e-12)

	// base current at 400 kV and 100 MVA is 144.3375 A
	i, err := ToPerUnitI(ctx, 144.33756729740643, nominal(400))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, i, 1e-12)

	// transformer r expressed on side 2 (20 kV)
	r, err := ToPerUnitZ(ctx, 0.5, 20, 20)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*100/(20*20), r, 1e-15)

	y, err := ToPerUnitY(ctx, 1e-4, 400, 400)
	require.NoError(t, err)
	assert.InDelta(t, 1e-4*400*400/100, y, 1e-12)
}

func TestShuntCorrectionVanishesForEqualVoltages(t *testing.T) {
	ctx := NewContext(true, 100)

	g, err := ToPerUnitShuntG(ctx, 1e-5, 3, 30, 225, 225)
	require.NoError(t, err)
	plain, err := ToPerUnitY(ctx, 1e-5, 225, 225)
	require.NoError(t, err)
	assert.InDelta(t, plain, g, 1e-15)

	b, err := ToPerUnitShuntB(ctx, 2e-4, 0, 0, 225, 380)
	require.NoError(t, err)
	assert.InDelta(t, 2e-4*225*225/100, b, 1e-12)
}

func TestShuntCorrectionAsymmetric(t *testing.T) {
	ctx := NewContext(true, 100)
	r, x := 3.0, 33.0
	v1, v2 := 380.0, 400.0
	denom := r*r + x*x

	b1, err := ToPerUnitShuntB(ctx, 1e-4, r, x, v1, v2)
	require.NoError(t, err)
	want := (1e-4*v1*v1 + (-x/denom)*v1*(v1-v2)) / 100
	assert.InDelta(t, want, b1, 1e-12)

	g2, err := ToPerUnitShuntG(ctx, 0, r, x, v2, v1)
	require.NoError(t, err)
	assert.InDelta(t, (r/denom)*v2*(v2-v1)/100, g2, 1e-12)
}

func TestMissingTopologyFailsLoudly(t *testing.T) {
	ctx := NewContext(true, 100)

	_, err := ToPerUnitV(ctx, 1, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))

	_, err = FromPerUnitI(ctx, 1, nominal(0))
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))

	_, err = ToPerUnitZ(ctx, 1, 20, math.NaN())
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))

	_, err = FromPerUnitShuntB(ctx, 1, 1, 1, -5, 20)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))
}

func TestNaNPropagates(t *testing.T) {
	ctx := NewContext(true, 100)
	assert.True(t, math.IsNaN(ToPerUnitP(ctx, math.NaN())))
	v, err := ToPerUnitV(ctx, math.NaN(), nominal(20))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))
}

func TestProperty_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	values := gen.Float64Range(-1e5, 1e5)
	voltages := gen.Float64Range(0.4, 800)
	powers := gen.Float64Range(1, 1000)

	for _, perUnit := range []bool{false, true} {
		perUnit := perUnit
		suffix := " (per-unit off)"
		if perUnit {
			suffix = " (per-unit on)"
		}

		properties.Property("power round trip"+suffix, prop.ForAll(
			func(x, sn float64) bool {
				ctx := NewContext(perUnit, sn)
				back := FromPerUnitP(ctx, ToPerUnitP(ctx, x))
				if !perUnit {
					return back == x
				}
				return closeTo(back, x)
			},
			values, powers,
		))

		properties.Property("angle round trip"+suffix, prop.ForAll(
			func(x float64) bool {
				ctx := NewContext(perUnit, 100)
				back := FromPerUnitAngle(ctx, ToPerUnitAngle(ctx, x))
				if !perUnit {
					return back == x
				}
				return closeTo(back, x)
			},
			values,
		))

		properties.Property("voltage and current round trip"+suffix, prop.ForAll(
			func(x, nv, sn float64) bool {
				ctx := NewContext(perUnit, sn)
				pu, err := ToPerUnitV(ctx, x, nominal(nv))
				if err != nil {
					return false
				}
				v, err := FromPerUnitV(ctx, pu, nominal(nv))
				if err != nil {
					return false
				}
				pu, err = ToPerUnitI(ctx, x, nominal(nv))
				if err != nil {
					return false
				}
				i, err := FromPerUnitI(ctx, pu, nominal(nv))
				if err != nil {
					return false
				}
				if !perUnit {
					return v == x && i == x
				}
				return closeTo(v, x) && closeTo(i, x)
			},
			values, voltages, powers,
		))

		properties.Property("impedance and admittance round trip"+suffix, prop.ForAll(
			func(x, v1, v2, sn float64) bool {
				ctx := NewContext(perUnit, sn)
				pu, err := ToPerUnitZ(ctx, x, v1, v2)
				if err != nil {
					return false
				}
				z, err := FromPerUnitZ(ctx, pu, v1, v2)
				if err != nil {
					return false
				}
				pu, err = ToPerUnitY(ctx, x, v1, v2)
				if err != nil {
					return false
				}
				y, err := FromPerUnitY(ctx, pu, v1, v2)
				if err != nil {
					return false
				}
				if !perUnit {
					return z == x && y == x
				}
				return closeTo(z, x) && closeTo(y, x)
			},
			values, voltages, voltages, powers,
		))

		properties.Property("side shunt round trip"+suffix, prop.ForAll(
			func(x, r, xs, v1, v2 float64) bool {
				ctx := NewContext(perUnit, 100)
				pu, err := ToPerUnitShuntG(ctx, x, r, xs, v1, v2)
				if err != nil {
					return false
				}
				g, err := FromPerUnitShuntG(ctx, pu, r, xs, v1, v2)
				if err != nil {
					return false
				}
				pu, err = ToPerUnitShuntB(ctx, x, r, xs, v1, v2)
				if err != nil {
					return false
				}
				b, err := FromPerUnitShuntB(ctx, pu, r, xs, v1, v2)
				if err != nil {
					return false
				}
				if !perUnit {
					return g == x && b == x
				}
				// the correction term is subtracted back, so compare on the
				// magnitude of the largest intermediate
				tol := 1e-7 * math.Max(1, math.Abs(x))
				return math.Abs(g-x) <= tol && math.Abs(b-x) <= tol
			},
			gen.Float64Range(-1e-2, 1e-2), gen.Float64Range(0.1, 50), gen.Float64Range(0.1, 100), voltages, voltages,
		))
	}

	properties.TestingRun(t)
}
