package perunit

// Shunt admittances of a two-port pi model need a correction term when the
// two sides have different nominal voltages. With y = 1/(r + jx) the series
// admittance, the per-unit side shunt is
//
//	y_side_pu = (y_side · Vside² + y · Vside · (Vside - Vother)) / Sn
//
// so that the nodal admittance Y11 = y_side + y is preserved. The real part
// gives G, the imaginary part B. When r = x = 0 the series term is dropped.

func seriesAdmittance(r, x float64) (g, b float64) {
	denom := r*r + x*x
	if denom == 0 {
		return 0, 0
	}
	return r / denom, -x / denom
}

func shuntCorrection(ctx Context, y, ySeries, nominalVSide, nominalVOther float64, toPU bool) (float64, error) {
	if !ctx.PerUnit {
		return y, nil
	}
	vs, vo, err := bothSides(nominalVSide, nominalVOther, "shunt admittance")
	if err != nil {
		return 0, err
	}
	correction := ySeries * vs * (vs - vo)
	if toPU {
		return (y*vs*vs + correction) / ctx.sn(), nil
	}
	return (y*ctx.sn() - correction) / (vs * vs), nil
}

// ToPerUnitShuntG converts the side shunt conductance g (S) of a two-port
// with series resistance r and reactance x (Ω).
func ToPerUnitShuntG(ctx Context, g, r, x, nominalVSide, nominalVOther float64) (float64, error) {
	gs, _ := seriesAdmittance(r, x)
	return shuntCorrection(ctx, g, gs, nominalVSide, nominalVOther, true)
}

// FromPerUnitShuntG is the inverse of ToPerUnitShuntG. r and x are the
// device's series values in Ω.
func FromPerUnitShuntG(ctx Context, g, r, x, nominalVSide, nominalVOther float64) (float64, error) {
	gs, _ := seriesAdmittance(r, x)
	return shuntCorrection(ctx, g, gs, nominalVSide, nominalVOther, false)
}

// ToPerUnitShuntB converts the side shunt susceptance b (S).
func ToPerUnitShuntB(ctx Context, b, r, x, nominalVSide, nominalVOther float64) (float64, error) {
	_, bs := seriesAdmittance(r, x)
	return shuntCorrection(ctx, b, bs, nominalVSide, nominalVOther, true)
}

// FromPerUnitShuntB is the inverse of ToPerUnitShuntB.
func FromPerUnitShuntB(ctx Context, b, r, x, nominalVSide, nominalVOther float64) (float64, error) {
	_, bs := seriesAdmittance(r, x)
	return shuntCorrection(ctx, b, bs, nominalVSide, nominalVOther, false)
}
