package mappers

import (
	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/network"
)

func loadMapper() *dataframe.Mapper[*network.Network] {
	return newBuilder[*network.Load](Load, (*network.Network).Loads, (*network.Network).Load).
		Enums("type", network.LoadTypes(),
			func(l *network.Load) string { return string(l.Type) },
			func(l *network.Load, s string) error { l.Type = network.LoadType(s); return nil }).
		Doubles("p0",
			power(func(l *network.Load) float64 { return l.P0 }),
			setPower(func(l *network.Load, v float64) { l.P0 = v })).
		Doubles("q0",
			power(func(l *network.Load) float64 { return l.Q0 }),
			setPower(func(l *network.Load, v float64) { l.Q0 = v })).
		Doubles("p",
			power(func(l *network.Load) float64 { return l.P }),
			setPower(func(l *network.Load, v float64) { l.P = v })).
		Doubles("q",
			power(func(l *network.Load) float64 { return l.Q }),
			setPower(func(l *network.Load, v float64) { l.Q = v })).
		Doubles("i",
			current(
				func(l *network.Load) float64 { return l.P },
				func(l *network.Load) float64 { return l.Q },
				func(l *network.Load) *network.Bus { return l.Bus }), nil).
		Strings("voltage_level_id", func(l *network.Load) string { return voltageLevelID(l.Bus) }, nil).
		Strings("bus_id", func(l *network.Load) string { return busID(l.Bus) }, nil).
		Booleans("connected",
			func(l *network.Load) bool { return l.Connected },
			func(l *network.Load, c bool) error { l.Connected = c; return nil }).
		MustBuild()
}
