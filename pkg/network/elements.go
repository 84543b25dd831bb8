package network

import (
	"math"
	"sort"

	"github.com/gridframe/gridframe/pkg/errors"
)

// EnergySource is the primary energy of a generator.
type EnergySource string

const (
	EnergySourceHydro   EnergySource = "HYDRO"
	EnergySourceNuclear EnergySource = "NUCLEAR"
	EnergySourceWind    EnergySource = "WIND"
	EnergySourceThermal EnergySource = "THERMAL"
	EnergySourceSolar   EnergySource = "SOLAR"
	EnergySourceOther   EnergySource = "OTHER"
)

// EnergySources lists every energy source name.
func EnergySources() []string {
	return []string{
		string(EnergySourceHydro),
		string(EnergySourceNuclear),
		string(EnergySourceWind),
		string(EnergySourceThermal),
		string(EnergySourceSolar),
		string(EnergySourceOther),
	}
}

// LoadType classifies a load.
type LoadType string

const (
	LoadTypeUndefined  LoadType = "UNDEFINED"
	LoadTypeAuxiliary  LoadType = "AUXILIARY"
	LoadTypeFictitious LoadType = "FICTITIOUS"
)

// LoadTypes lists every load type name.
func LoadTypes() []string {
	return []string{string(LoadTypeUndefined), string(LoadTypeAuxiliary), string(LoadTypeFictitious)}
}

// ReactiveLimitsKind tells which reactive limits a generator carries.
type ReactiveLimitsKind string

const (
	ReactiveLimitsMinMax ReactiveLimitsKind = "MIN_MAX"
	ReactiveLimitsCurve  ReactiveLimitsKind = "CURVE"
)

// ReactiveLimits bounds the reactive power of a generator as a function of
// its active power.
type ReactiveLimits interface {
	Kind() ReactiveLimitsKind
	MinQ(p float64) float64
	MaxQ(p float64) float64
}

// MinMaxReactiveLimits are constant bounds in MVar.
type MinMaxReactiveLimits struct {
	Min float64
	Max float64
}

func (l *MinMaxReactiveLimits) Kind() ReactiveLimitsKind { return ReactiveLimitsMinMax }
func (l *MinMaxReactiveLimits) MinQ(float64) float64     { return l.Min }
func (l *MinMaxReactiveLimits) MaxQ(float64) float64     { return l.Max }

// CurvePoint is one point of a reactive capability curve.
type CurvePoint struct {
	P    float64 `json:"p" yaml:"p"`
	MinQ float64 `json:"min_q" yaml:"min_q"`
	MaxQ float64 `json:"max_q" yaml:"max_q"`
}

// ReactiveCapabilityCurve bounds reactive power by linear interpolation
// between points sorted by P. Outside the curve the closest point applies.
type ReactiveCapabilityCurve struct {
	Points []CurvePoint
}

// NewReactiveCapabilityCurve sorts points by P. At least two points with
// distinct P are required.
func NewReactiveCapabilityCurve(points ...CurvePoint) (*ReactiveCapabilityCurve, error) {
	if len(points) < 2 {
		return nil, errors.InvalidValue("reactive capability curve needs at least 2 points, got %d", len(points))
	}
	sorted := append([]CurvePoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].P < sorted[j].P })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].P == sorted[i-1].P {
			return nil, errors.InvalidValue("reactive capability curve has two points at p=%g", sorted[i].P)
		}
	}
	return &ReactiveCapabilityCurve{Points: sorted}, nil
}

func (c *ReactiveCapabilityCurve) Kind() ReactiveLimitsKind { return ReactiveLimitsCurve }

func (c *ReactiveCapabilityCurve) interpolate(p float64, q func(CurvePoint) float64) float64 {
	pts := c.Points
	if len(pts) == 0 {
		return math.NaN()
	}
	if p <= pts[0].P {
		return q(pts[0])
	}
	last := pts[len(pts)-1]
	if p >= last.P {
		return q(last)
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].P >= p })
	a, b := pts[i-1], pts[i]
	return q(a) + (q(b)-q(a))*(p-a.P)/(b.P-a.P)
}

func (c *ReactiveCapabilityCurve) MinQ(p float64) float64 {
	return c.interpolate(p, func(pt CurvePoint) float64 { return pt.MinQ })
}

func (c *ReactiveCapabilityCurve) MaxQ(p float64) float64 {
	return c.interpolate(p, func(pt CurvePoint) float64 { return pt.MaxQ })
}

// Generator is an injection producing active power.
type Generator struct {
	Identifiable
	Bus          *Bus
	EnergySource EnergySource
	// Setpoints: MW, MVar, kV at RegulatingBus.
	TargetP            float64
	TargetQ            float64
	TargetV            float64
	MinP               float64
	MaxP               float64
	RatedS             float64
	VoltageRegulatorOn bool
	// RegulatingBus is where TargetV is controlled. It may sit in another
	// voltage level than Bus.
	RegulatingBus  *Bus
	ReactiveLimits ReactiveLimits
	// Load flow results in MW and MVar, NaN before a load flow.
	P         float64
	Q         float64
	Connected bool
}

// SetMinQ changes the lower bound of min/max reactive limits, keeping the
// upper one. Curve limits have no single bound and are rejected.
func (g *Generator) SetMinQ(minQ float64) error {
	l, err := g.minMaxLimits("min_q")
	if err != nil {
		return err
	}
	if minQ > l.Max {
		return errors.InvalidValue("generator %q: min_q %g is above max_q %g", g.ID, minQ, l.Max).
			WithDetail("element_id", g.ID)
	}
	g.ReactiveLimits = &MinMaxReactiveLimits{Min: minQ, Max: l.Max}
	return nil
}

// SetMaxQ changes the upper bound of min/max reactive limits, keeping the
// lower one.
func (g *Generator) SetMaxQ(maxQ float64) error {
	l, err := g.minMaxLimits("max_q")
	if err != nil {
		return err
	}
	if maxQ < l.Min {
		return errors.InvalidValue("generator %q: max_q %g is below min_q %g", g.ID, maxQ, l.Min).
			WithDetail("element_id", g.ID)
	}
	g.ReactiveLimits = &MinMaxReactiveLimits{Min: l.Min, Max: maxQ}
	return nil
}

func (g *Generator) minMaxLimits(attribute string) (*MinMaxReactiveLimits, error) {
	l, ok := g.ReactiveLimits.(*MinMaxReactiveLimits)
	if !ok {
		return nil, errors.InvalidValue("generator %q: cannot set %s on %s reactive limits", g.ID, attribute, g.ReactiveLimits.Kind()).
			WithDetail("element_id", g.ID).
			WithDetail("column", attribute)
	}
	return l, nil
}

// Load is an injection consuming power.
type Load struct {
	Identifiable
	Bus       *Bus
	Type      LoadType
	P0        float64
	Q0        float64
	P         float64
	Q         float64
	Connected bool
}

// Branch holds the flow results shared by lines and transformers.
type Branch struct {
	Bus1       *Bus
	Bus2       *Bus
	P1         float64
	Q1         float64
	P2         float64
	Q2         float64
	Connected1 bool
	Connected2 bool
}

// Sides returns the branch part of a line or transformer.
func (b *Branch) Sides() *Branch { return b }

// Line is a pi-model branch with series R, X in Ω and shunt G, B in S on
// each side.
type Line struct {
	Identifiable
	Branch
	R  float64
	X  float64
	G1 float64
	B1 float64
	G2 float64
	B2 float64
}

// TwoWindingsTransformer is a branch whose R, X, G and B are expressed on
// side 2.
type TwoWindingsTransformer struct {
	Identifiable
	Branch
	R       float64
	X       float64
	G       float64
	B       float64
	RatedU1 float64
	RatedU2 float64
	RatedS  float64
}

// Current returns the current in A flowing for p (MW) and q (MVar) at
// voltage v (kV), NaN when v is not positive.
func Current(p, q, v float64) float64 {
	if !(v > 0) {
		return math.NaN()
	}
	return math.Hypot(p, q) / (math.Sqrt(3) * v) * 1000
}
