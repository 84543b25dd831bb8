package mappers

import (
	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/network"
	"github.com/gridframe/gridframe/pkg/perunit"
)

type branch interface {
	identified
	Sides() *network.Branch
}

// branchSeries appends the flow, current and connectivity series shared by
// lines and transformers.
func branchSeries[T branch](b *dataframe.MapperBuilder[*network.Network, T]) *dataframe.MapperBuilder[*network.Network, T] {
	side1 := func(x T) *network.Bus { return x.Sides().Bus1 }
	side2 := func(x T) *network.Bus { return x.Sides().Bus2 }
	p1 := func(x T) float64 { return x.Sides().P1 }
	q1 := func(x T) float64 { return x.Sides().Q1 }
	p2 := func(x T) float64 { return x.Sides().P2 }
	q2 := func(x T) float64 { return x.Sides().Q2 }

	return b.
		Doubles("p1", power(p1), setPower(func(x T, v float64) { x.Sides().P1 = v })).
		Doubles("q1", power(q1), setPower(func(x T, v float64) { x.Sides().Q1 = v })).
		Doubles("i1", current(p1, q1, side1), nil).
		Doubles("p2", power(p2), setPower(func(x T, v float64) { x.Sides().P2 = v })).
		Doubles("q2", power(q2), setPower(func(x T, v float64) { x.Sides().Q2 = v })).
		Doubles("i2", current(p2, q2, side2), nil).
		Strings("voltage_level1_id", func(x T) string { return voltageLevelID(side1(x)) }, nil).
		Strings("bus1_id", func(x T) string { return busID(side1(x)) }, nil).
		Strings("voltage_level2_id", func(x T) string { return voltageLevelID(side2(x)) }, nil).
		Strings("bus2_id", func(x T) string { return busID(side2(x)) }, nil).
		Booleans("connected1",
			func(x T) bool { return x.Sides().Connected1 },
			func(x T, c bool) error { x.Sides().Connected1 = c; return nil }).
		Booleans("connected2",
			func(x T) bool { return x.Sides().Connected2 },
			func(x T, c bool) error { x.Sides().Connected2 = c; return nil })
}

// impedance converts a series R or X between nominal voltages v1 and v2.
func impedance[T any](get func(T) float64, v1, v2 func(T) float64) getter[T] {
	return func(x T, ctx perunit.Context) (float64, error) {
		return perunit.ToPerUnitZ(ctx, get(x), v1(x), v2(x))
	}
}

func setImpedance[T any](set func(T, float64), v1, v2 func(T) float64) setter[T] {
	return func(x T, v float64, ctx perunit.Context) error {
		z, err := perunit.FromPerUnitZ(ctx, v, v1(x), v2(x))
		if err != nil {
			return err
		}
		set(x, z)
		return nil
	}
}

func admittance[T any](get func(T) float64, v1, v2 func(T) float64) getter[T] {
	return func(x T, ctx perunit.Context) (float64, error) {
		return perunit.ToPerUnitY(ctx, get(x), v1(x), v2(x))
	}
}

func setAdmittance[T any](set func(T, float64), v1, v2 func(T) float64) setter[T] {
	return func(x T, v float64, ctx perunit.Context) error {
		y, err := perunit.FromPerUnitY(ctx, v, v1(x), v2(x))
		if err != nil {
			return err
		}
		set(x, y)
		return nil
	}
}

func lineMapper() *dataframe.Mapper[*network.Network] {
	nv1 := func(l *network.Line) float64 { return l.Bus1.NominalV() }
	nv2 := func(l *network.Line) float64 { return l.Bus2.NominalV() }

	type shuntFunc func(ctx perunit.Context, y, r, x, vSide, vOther float64) (float64, error)
	shunt := func(get func(*network.Line) float64, convert shuntFunc, side, other func(*network.Line) float64) getter[*network.Line] {
		return func(l *network.Line, ctx perunit.Context) (float64, error) {
			return convert(ctx, get(l), l.R, l.X, side(l), other(l))
		}
	}
	setShunt := func(set func(*network.Line, float64), convert shuntFunc, side, other func(*network.Line) float64) setter[*network.Line] {
		return func(l *network.Line, v float64, ctx perunit.Context) error {
			y, err := convert(ctx, v, l.R, l.X, side(l), other(l))
			if err != nil {
				return err
			}
			set(l, y)
			return nil
		}
	}

	b := newBuilder[*network.Line](Line, (*network.Network).Lines, (*network.Network).Line).
		Doubles("r",
			impedance(func(l *network.Line) float64 { return l.R }, nv1, nv2),
			setImpedance(func(l *network.Line, v float64) { l.R = v }, nv1, nv2)).
		Doubles("x",
			impedance(func(l *network.Line) float64 { return l.X }, nv1, nv2),
			setImpedance(func(l *network.Line, v float64) { l.X = v }, nv1, nv2)).
		Doubles("g1",
			shunt(func(l *network.Line) float64 { return l.G1 }, perunit.ToPerUnitShuntG, nv1, nv2),
			setShunt(func(l *network.Line, v float64) { l.G1 = v }, perunit.FromPerUnitShuntG, nv1, nv2)).
		Doubles("b1",
			shunt(func(l *network.Line) float64 { return l.B1 }, perunit.ToPerUnitShuntB, nv1, nv2),
			setShunt(func(l *network.Line, v float64) { l.B1 = v }, perunit.FromPerUnitShuntB, nv1, nv2)).
		Doubles("g2",
			shunt(func(l *network.Line) float64 { return l.G2 }, perunit.ToPerUnitShuntG, nv2, nv1),
			setShunt(func(l *network.Line, v float64) { l.G2 = v }, perunit.FromPerUnitShuntG, nv2, nv1)).
		Doubles("b2",
			shunt(func(l *network.Line) float64 { return l.B2 }, perunit.ToPerUnitShuntB, nv2, nv1),
			setShunt(func(l *network.Line, v float64) { l.B2 = v }, perunit.FromPerUnitShuntB, nv2, nv1))
	return branchSeries(b).MustBuild()
}

func transformerMapper() *dataframe.Mapper[*network.Network] {
	// r, x, g and b are expressed on side 2
	nv2 := func(t *network.TwoWindingsTransformer) float64 { return t.Bus2.NominalV() }
	bus1 := func(t *network.TwoWindingsTransformer) *network.Bus { return t.Bus1 }
	bus2 := func(t *network.TwoWindingsTransformer) *network.Bus { return t.Bus2 }

	b := newBuilder[*network.TwoWindingsTransformer](TwoWindingsTransformer,
		(*network.Network).TwoWindingsTransformers, (*network.Network).TwoWindingsTransformer).
		Doubles("r",
			impedance(func(t *network.TwoWindingsTransformer) float64 { return t.R }, nv2, nv2),
			setImpedance(func(t *network.TwoWindingsTransformer, v float64) { t.R = v }, nv2, nv2)).
		Doubles("x",
			impedance(func(t *network.TwoWindingsTransformer) float64 { return t.X }, nv2, nv2),
			setImpedance(func(t *network.TwoWindingsTransformer, v float64) { t.X = v }, nv2, nv2)).
		Doubles("g",
			admittance(func(t *network.TwoWindingsTransformer) float64 { return t.G }, nv2, nv2),
			setAdmittance(func(t *network.TwoWindingsTransformer, v float64) { t.G = v }, nv2, nv2)).
		Doubles("b",
			admittance(func(t *network.TwoWindingsTransformer) float64 { return t.B }, nv2, nv2),
			setAdmittance(func(t *network.TwoWindingsTransformer, v float64) { t.B = v }, nv2, nv2)).
		Doubles("rated_u1",
			voltage(func(t *network.TwoWindingsTransformer) float64 { return t.RatedU1 }, bus1),
			setVoltage(func(t *network.TwoWindingsTransformer, v float64) { t.RatedU1 = v }, bus1)).
		Doubles("rated_u2",
			voltage(func(t *network.TwoWindingsTransformer) float64 { return t.RatedU2 }, bus2),
			setVoltage(func(t *network.TwoWindingsTransformer, v float64) { t.RatedU2 = v }, bus2)).
		Doubles("rated_s",
			power(func(t *network.TwoWindingsTransformer) float64 { return t.RatedS }),
			setPower(func(t *network.TwoWindingsTransformer, v float64) { t.RatedS = v }))
	return branchSeries(b).MustBuild()
}
