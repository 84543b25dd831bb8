// Package perunit converts engineering quantities (MW, kV, A, degrees, Ω, S)
// to and from normalized per-unit values.
//
// All conversions are pure functions of an explicit Context and of the
// minimum topology inputs the quantity needs:
//
//   - active/reactive power: the network-wide base apparent power only
//   - voltage and current: the nominal voltage of the terminal the quantity
//     is measured at, passed as a Terminal
//   - angle: nothing (degrees <-> radians)
//   - impedance and admittance: the nominal voltages of both sides of a
//     two-port device
//
// When Context.PerUnit is false every function returns its input unchanged.
// That flag is the single switch for every quantity family.
//
// When PerUnit is true and a topology input is missing (nil terminal, zero or
// NaN nominal voltage) the conversion fails with an unsupported_operation
// error instead of silently defaulting.
package perunit

import (
	"math"

	"github.com/gridframe/gridframe/pkg/errors"
)

// DefaultNominalApparentPower is the base apparent power in MVA used when a
// context is created without one.
const DefaultNominalApparentPower = 100.0

// Context is the per-call conversion context. It is a value: build one per
// read or write call and drop it afterwards.
type Context struct {
	// PerUnit switches every conversion on or off.
	PerUnit bool
	// NominalApparentPower is the base apparent power in MVA.
	NominalApparentPower float64
}

// NewContext returns a context. A non-positive base apparent power is
// replaced by DefaultNominalApparentPower.
func NewContext(perUnit bool, nominalApparentPower float64) Context {
	if nominalApparentPower <= 0 || math.IsNaN(nominalApparentPower) {
		nominalApparentPower = DefaultNominalApparentPower
	}
	return Context{PerUnit: perUnit, NominalApparentPower: nominalApparentPower}
}

// Raw returns the pass-through context.
func Raw() Context {
	return NewContext(false, DefaultNominalApparentPower)
}

func (c Context) sn() float64 {
	if c.NominalApparentPower <= 0 {
		return DefaultNominalApparentPower
	}
	return c.NominalApparentPower
}

// Terminal is the point a voltage or current is physically measured at.
type Terminal interface {
	// NominalV returns the nominal voltage in kV.
	NominalV() float64
}

func nominalV(t Terminal, quantity string) (float64, error) {
	if t == nil {
		return 0, errors.Unsupported("per-unit %s conversion requires a terminal", quantity)
	}
	return checkNominalV(t.NominalV(), quantity)
}

func checkNominalV(v float64, quantity string) (float64, error) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Unsupported("per-unit %s conversion requires a positive nominal voltage", quantity).
			WithDetail("nominal_v", v)
	}
	return v, nil
}

// ToPerUnitP converts active or reactive power from MW/MVar.
func ToPerUnitP(ctx Context, p float64) float64 {
	if !ctx.PerUnit {
		return p
	}
	return p / ctx.sn()
}

// FromPerUnitP converts active or reactive power back to MW/MVar.
func FromPerUnitP(ctx Context, p float64) float64 {
	if !ctx.PerUnit {
		return p
	}
	return p * ctx.sn()
}

// ToPerUnitV converts a voltage in kV using the nominal voltage of t.
func ToPerUnitV(ctx Context, v float64, t Terminal) (float64, error) {
	if !ctx.PerUnit {
		return v, nil
	}
	nv, err := nominalV(t, "voltage")
	if err != nil {
		return 0, err
	}
	return v / nv, nil
}

// FromPerUnitV converts a per-unit voltage back to kV using the nominal voltage of t.
func FromPerUnitV(ctx Context, v float64, t Terminal) (float64, error) {
	if !ctx.PerUnit {
		return v, nil
	}
	nv, err := nominalV(t, "voltage")
	if err != nil {
		return 0, err
	}
	return v * nv, nil
}

// ToPerUnitAngle converts degrees to radians.
func ToPerUnitAngle(ctx Context, angle float64) float64 {
	if !ctx.PerUnit {
		return angle
	}
	return angle * math.Pi / 180
}

// FromPerUnitAngle converts radians to degrees.
func FromPerUnitAngle(ctx Context, angle float64) float64 {
	if !ctx.PerUnit {
		return angle
	}
	return angle * 180 / math.Pi
}

// ToPerUnitI converts a current in A measured at t.
//
// The base current is Sn / (√3 · Vn) with Sn in MVA and Vn in kV, i.e.
// 1000 · Sn / (√3 · Vn) in A.
func ToPerUnitI(ctx Context, i float64, t Terminal) (float64, error) {
	if !ctx.PerUnit {
		return i, nil
	}
	nv, err := nominalV(t, "current")
	if err != nil {
		return 0, err
	}
	return i * math.Sqrt(3) * nv / (1000 * ctx.sn()), nil
}

// FromPerUnitI converts a per-unit current measured at t back to A.
func FromPerUnitI(ctx Context, i float64, t Terminal) (float64, error) {
	if !ctx.PerUnit {
		return i, nil
	}
	nv, err := nominalV(t, "current")
	if err != nil {
		return 0, err
	}
	return i * 1000 * ctx.sn() / (math.Sqrt(3) * nv), nil
}

// ToPerUnitZ converts a series resistance or reactance in Ω. For a one-port
// quantity, or a transformer expressed on its side 2, pass the same nominal
// voltage twice.
func ToPerUnitZ(ctx Context, z, nominalV1, nominalV2 float64) (float64, error) {
	if !ctx.PerUnit {
		return z, nil
	}
	v1, v2, err := bothSides(nominalV1, nominalV2, "impedance")
	if err != nil {
		return 0, err
	}
	return z * ctx.sn() / (v1 * v2), nil
}

// FromPerUnitZ is the inverse of ToPerUnitZ.
func FromPerUnitZ(ctx Context, z, nominalV1, nominalV2 float64) (float64, error) {
	if !ctx.PerUnit {
		return z, nil
	}
	v1, v2, err := bothSides(nominalV1, nominalV2, "impedance")
	if err != nil {
		return 0, err
	}
	return z * v1 * v2 / ctx.sn(), nil
}

// ToPerUnitY converts a conductance or susceptance in S without any shunt
// asymmetry correction.
func ToPerUnitY(ctx Context, y, nominalV1, nominalV2 float64) (float64, error) {
	if !ctx.PerUnit {
		return y, nil
	}
	v1, v2, err := bothSides(nominalV1, nominalV2, "admittance")
	if err != nil {
		return 0, err
	}
	return y * v1 * v2 / ctx.sn(), nil
}

// FromPerUnitY is the inverse of ToPerUnitY.
func FromPerUnitY(ctx Context, y, nominalV1, nominalV2 float64) (float64, error) {
	if !ctx.PerUnit {
		return y, nil
	}
	v1, v2, err := bothSides(nominalV1, nominalV2, "admittance")
	if err != nil {
		return 0, err
	}
	return y * ctx.sn() / (v1 * v2), nil
}

func bothSides(nominalV1, nominalV2 float64, quantity string) (float64, float64, error) {
	v1, err := checkNominalV(nominalV1, quantity)
	if err != nil {
		return 0, 0, err
	}
	v2, err := checkNominalV(nominalV2, quantity)
	if err != nil {
		return 0, 0, err
	}
	return v1, v2, nil
}
