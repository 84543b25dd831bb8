package network

// Sample builds a small four-bus grid used by examples, the CLI demo mode
// and tests:
//
//	VL400 (400 kV): B1, B2   GEN1 on B1, line L1 B1-B2
//	VL110 (110 kV): B3       LOAD1 on B3, transformer T1 B2-B3
//	VL20  (20 kV):  B4       GEN2 on B4 regulating B3, transformer T2 B3-B4
//
// GEN2 carries a reactive capability curve, GEN1 min/max limits.
func Sample() *Network {
	n := New("sample")

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	vl400 := &VoltageLevel{Identifiable: Identifiable{ID: "VL400"}, Nominal: 400, LowVoltageLimit: 380, HighVoltageLimit: 420}
	vl110 := &VoltageLevel{Identifiable: Identifiable{ID: "VL110"}, Nominal: 110, LowVoltageLimit: 100, HighVoltageLimit: 120}
	vl20 := &VoltageLevel{Identifiable: Identifiable{ID: "VL20"}, Nominal: 20, LowVoltageLimit: 18, HighVoltageLimit: 22}
	must(n.AddVoltageLevel(vl400))
	must(n.AddVoltageLevel(vl110))
	must(n.AddVoltageLevel(vl20))

	b1 := &Bus{Identifiable: Identifiable{ID: "B1", Name: "North 400"}, VoltageLevel: vl400, V: 404, Angle: 0}
	b2 := &Bus{Identifiable: Identifiable{ID: "B2", Name: "South 400"}, VoltageLevel: vl400, V: 401.2, Angle: -2.1}
	b3 := &Bus{Identifiable: Identifiable{ID: "B3", Name: "South 110"}, VoltageLevel: vl110, V: 111.5, Angle: -4.7}
	b4 := &Bus{Identifiable: Identifiable{ID: "B4", Name: "Plant 20"}, VoltageLevel: vl20, V: 20.6, Angle: -1.3}
	for _, b := range []*Bus{b1, b2, b3, b4} {
		must(n.AddBus(b))
	}

	must(n.AddGenerator(&Generator{
		Identifiable:       Identifiable{ID: "GEN1", Properties: map[string]string{"owner": "north-gen"}},
		Bus:                b1,
		EnergySource:       EnergySourceNuclear,
		TargetP:            600,
		TargetQ:            50,
		TargetV:            404,
		MinP:               0,
		MaxP:               900,
		RatedS:             1000,
		VoltageRegulatorOn: true,
		ReactiveLimits:     &MinMaxReactiveLimits{Min: -300, Max: 400},
		P:                  -600,
		Q:                  -48.2,
		Connected:          true,
	}))

	curve, err := NewReactiveCapabilityCurve(
		CurvePoint{P: 0, MinQ: -20, MaxQ: 30},
		CurvePoint{P: 80, MinQ: -15, MaxQ: 25},
	)
	must(err)
	must(n.AddGenerator(&Generator{
		Identifiable:       Identifiable{ID: "GEN2", Properties: map[string]string{"owner": "plant-co", "commissioned": "1998"}},
		Bus:                b4,
		RegulatingBus:      b3,
		EnergySource:       EnergySourceHydro,
		TargetP:            60,
		TargetQ:            0,
		TargetV:            111.5,
		MinP:               5,
		MaxP:               80,
		RatedS:             90,
		VoltageRegulatorOn: true,
		ReactiveLimits:     curve,
		P:                  -60,
		Q:                  -12.5,
		Connected:          true,
	}))

	must(n.AddLoad(&Load{
		Identifiable: Identifiable{ID: "LOAD1", Properties: map[string]string{"zone": "south"}},
		Bus:          b3,
		Type:         LoadTypeUndefined,
		P0:           640,
		Q0:           90,
		P:            640,
		Q:            90,
		Connected:    true,
	}))

	must(n.AddLine(&Line{
		Identifiable: Identifiable{ID: "L1"},
		Branch: Branch{
			Bus1: b1, Bus2: b2,
			P1: 600.4, Q1: 48.2, P2: -599.2, Q2: -40.1,
			Connected1: true, Connected2: true,
		},
		R: 3, X: 33, G1: 0, B1: 1.93e-4, G2: 0, B2: 1.93e-4,
	}))

	must(n.AddTwoWindingsTransformer(&TwoWindingsTransformer{
		Identifiable: Identifiable{ID: "T1"},
		Branch: Branch{
			Bus1: b2, Bus2: b3,
			P1: 599.2, Q1: 40.1, P2: -598.1, Q2: -33.6,
			Connected1: true, Connected2: true,
		},
		R: 0.24, X: 6.05, G: 0, B: -1.5e-5,
		RatedU1: 400, RatedU2: 110, RatedS: 800,
	}))

	must(n.AddTwoWindingsTransformer(&TwoWindingsTransformer{
		Identifiable: Identifiable{ID: "T2"},
		Branch: Branch{
			Bus1: b3, Bus2: b4,
			P1: -59.8, Q1: -10.9, P2: 60, Q2: 12.5,
			Connected1: true, Connected2: true,
		},
		R: 0.04, X: 0.52, G: 0, B: 0,
		RatedU1: 110, RatedU2: 20, RatedS: 100,
	}))

	return n
}
