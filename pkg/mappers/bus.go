package mappers

import (
	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/network"
)

func self(b *network.Bus) *network.Bus { return b }

func busMapper() *dataframe.Mapper[*network.Network] {
	return newBuilder[*network.Bus](Bus, (*network.Network).Buses, (*network.Network).Bus).
		Doubles("v_mag",
			voltage(func(b *network.Bus) float64 { return b.V }, self),
			setVoltage(func(b *network.Bus, v float64) { b.V = v }, self)).
		Doubles("v_angle",
			angle(func(b *network.Bus) float64 { return b.Angle }),
			setAngle(func(b *network.Bus, v float64) { b.Angle = v })).
		Strings("voltage_level_id", voltageLevelID, nil).
		Doubles("nominal_v", raw(func(b *network.Bus) float64 { return b.NominalV() }), nil, dataframe.NotDefault()).
		MustBuild()
}
