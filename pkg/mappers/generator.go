package mappers

import (
	"math"

	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/network"
	"github.com/gridframe/gridframe/pkg/perunit"
)

func generatorBus(g *network.Generator) *network.Bus { return g.Bus }

func regulatingBus(g *network.Generator) *network.Bus { return g.RegulatingBus }

// minMaxQ reads one bound of min/max reactive limits. Generators with a
// capability curve have no such bound and read NaN.
func minMaxQ(bound func(*network.MinMaxReactiveLimits) float64) func(*network.Generator) float64 {
	return func(g *network.Generator) float64 {
		l, ok := g.ReactiveLimits.(*network.MinMaxReactiveLimits)
		if !ok {
			return math.NaN()
		}
		return bound(l)
	}
}

func setReactiveBound(set func(*network.Generator, float64) error) setter[*network.Generator] {
	return func(g *network.Generator, v float64, ctx perunit.Context) error {
		return set(g, perunit.FromPerUnitP(ctx, v))
	}
}

func setEnergySource(g *network.Generator, s string) error {
	g.EnergySource = network.EnergySource(s)
	return nil
}

func generatorMapper() *dataframe.Mapper[*network.Network] {
	return newBuilder[*network.Generator](Generator, (*network.Network).Generators, (*network.Network).Generator).
		Enums("energy_source", network.EnergySources(),
			func(g *network.Generator) string { return string(g.EnergySource) },
			setEnergySource).
		Doubles("target_p",
			power(func(g *network.Generator) float64 { return g.TargetP }),
			setPower(func(g *network.Generator, v float64) { g.TargetP = v })).
		Doubles("min_p",
			power(func(g *network.Generator) float64 { return g.MinP }),
			setPower(func(g *network.Generator, v float64) { g.MinP = v })).
		Doubles("max_p",
			power(func(g *network.Generator) float64 { return g.MaxP }),
			setPower(func(g *network.Generator, v float64) { g.MaxP = v })).
		Doubles("min_q",
			power(minMaxQ(func(l *network.MinMaxReactiveLimits) float64 { return l.Min })),
			setReactiveBound((*network.Generator).SetMinQ)).
		Doubles("max_q",
			power(minMaxQ(func(l *network.MinMaxReactiveLimits) float64 { return l.Max })),
			setReactiveBound((*network.Generator).SetMaxQ)).
		Strings("reactive_limits_kind",
			func(g *network.Generator) string { return string(g.ReactiveLimits.Kind()) }, nil).
		Doubles("min_q_at_target_p",
			power(func(g *network.Generator) float64 { return g.ReactiveLimits.MinQ(g.TargetP) }), nil,
			dataframe.NotDefault()).
		Doubles("max_q_at_target_p",
			power(func(g *network.Generator) float64 { return g.ReactiveLimits.MaxQ(g.TargetP) }), nil,
			dataframe.NotDefault()).
		Doubles("rated_s",
			power(func(g *network.Generator) float64 { return g.RatedS }),
			setPower(func(g *network.Generator, v float64) { g.RatedS = v })).
		// target_v is controlled at the regulating bus, which may have another
		// nominal voltage than the generator's own bus
		Doubles("target_v",
			voltage(func(g *network.Generator) float64 { return g.TargetV }, regulatingBus),
			setVoltage(func(g *network.Generator, v float64) { g.TargetV = v }, regulatingBus)).
		Doubles("target_q",
			power(func(g *network.Generator) float64 { return g.TargetQ }),
			setPower(func(g *network.Generator, v float64) { g.TargetQ = v })).
		Booleans("voltage_regulator_on",
			func(g *network.Generator) bool { return g.VoltageRegulatorOn },
			func(g *network.Generator, on bool) error { g.VoltageRegulatorOn = on; return nil }).
		Strings("regulated_element_id",
			func(g *network.Generator) string { return busID(g.RegulatingBus) }, nil,
			dataframe.NotDefault()).
		Doubles("p",
			power(func(g *network.Generator) float64 { return g.P }),
			setPower(func(g *network.Generator, v float64) { g.P = v })).
		Doubles("q",
			power(func(g *network.Generator) float64 { return g.Q }),
			setPower(func(g *network.Generator, v float64) { g.Q = v })).
		Doubles("i",
			current(
				func(g *network.Generator) float64 { return g.P },
				func(g *network.Generator) float64 { return g.Q },
				generatorBus), nil).
		Strings("voltage_level_id", func(g *network.Generator) string { return voltageLevelID(g.Bus) }, nil).
		Strings("bus_id", func(g *network.Generator) string { return busID(g.Bus) }, nil).
		Booleans("connected",
			func(g *network.Generator) bool { return g.Connected },
			func(g *network.Generator, c bool) error { g.Connected = c; return nil }).
		MustBuild()
}
