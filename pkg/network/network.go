// Package network is a small in-memory power grid model: voltage levels,
// buses, generators, loads, lines and two-winding transformers.
//
// It is the domain collaborator projected by pkg/mappers. Elements are
// plain structs with exported fields; the Network owns them and indexes
// them by id. Ids are unique across all element types.
//
// A Network is not safe for concurrent mutation.
package network

import (
	"math"

	"github.com/gridframe/gridframe/pkg/errors"
)

// Identifiable is embedded by every element.
type Identifiable struct {
	ID         string
	Name       string
	Properties map[string]string
}

// Identity returns the identifiable part of an element.
func (i *Identifiable) Identity() *Identifiable { return i }

// SetProperty sets a free-form property. An empty value removes it.
func (i *Identifiable) SetProperty(key, value string) {
	if value == "" {
		delete(i.Properties, key)
		return
	}
	if i.Properties == nil {
		i.Properties = make(map[string]string)
	}
	i.Properties[key] = value
}

// VoltageLevel groups buses sharing a nominal voltage.
type VoltageLevel struct {
	Identifiable
	// Nominal voltage in kV.
	Nominal          float64
	LowVoltageLimit  float64
	HighVoltageLimit float64
}

// NominalV returns the nominal voltage in kV, NaN for a nil level.
func (vl *VoltageLevel) NominalV() float64 {
	if vl == nil {
		return math.NaN()
	}
	return vl.Nominal
}

// Bus is an electrical node. It is the terminal every injection and branch
// side connects to.
type Bus struct {
	Identifiable
	VoltageLevel *VoltageLevel
	// Voltage magnitude in kV and angle in degrees, NaN before a load flow.
	V     float64
	Angle float64
}

// NominalV returns the nominal voltage of the bus' voltage level, NaN for a
// nil bus.
func (b *Bus) NominalV() float64 {
	if b == nil {
		return math.NaN()
	}
	return b.VoltageLevel.NominalV()
}

// Network owns every element of a grid.
type Network struct {
	ID string

	voltageLevels []*VoltageLevel
	buses         []*Bus
	generators    []*Generator
	loads         []*Load
	lines         []*Line
	transformers  []*TwoWindingsTransformer

	index map[string]interface{}
}

// New creates an empty network.
func New(id string) *Network {
	return &Network{ID: id, index: make(map[string]interface{})}
}

func (n *Network) register(id string, element interface{}) error {
	if id == "" {
		return errors.InvalidValue("element id must not be empty").WithDetail("network_id", n.ID)
	}
	if _, dup := n.index[id]; dup {
		return errors.InvalidValue("element %q already exists", id).
			WithDetail("element_id", id).
			WithDetail("network_id", n.ID)
	}
	n.index[id] = element
	return nil
}

func (n *Network) checkBus(owner string, b *Bus) error {
	if b == nil {
		return errors.InvalidValue("%s: bus is required", owner).WithDetail("element_id", owner)
	}
	if got, ok := n.index[b.ID]; !ok || got != b {
		return errors.InvalidValue("%s: bus %q does not belong to network %q", owner, b.ID, n.ID).
			WithDetail("element_id", owner)
	}
	return nil
}

// AddVoltageLevel adds vl to the network.
func (n *Network) AddVoltageLevel(vl *VoltageLevel) error {
	if vl.Nominal <= 0 || math.IsNaN(vl.Nominal) {
		return errors.InvalidValue("voltage level %q: nominal voltage must be positive", vl.ID).
			WithDetail("element_id", vl.ID)
	}
	if err := n.register(vl.ID, vl); err != nil {
		return err
	}
	n.voltageLevels = append(n.voltageLevels, vl)
	return nil
}

// AddBus adds b to the network. Its voltage level must already be there.
func (n *Network) AddBus(b *Bus) error {
	if b.VoltageLevel == nil {
		return errors.InvalidValue("bus %q: voltage level is required", b.ID).WithDetail("element_id", b.ID)
	}
	if got, ok := n.index[b.VoltageLevel.ID]; !ok || got != b.VoltageLevel {
		return errors.InvalidValue("bus %q: voltage level %q does not belong to network %q", b.ID, b.VoltageLevel.ID, n.ID).
			WithDetail("element_id", b.ID)
	}
	if err := n.register(b.ID, b); err != nil {
		return err
	}
	n.buses = append(n.buses, b)
	return nil
}

// AddGenerator adds g to the network. A nil regulating bus defaults to the
// generator's own bus and a nil reactive limits to unbounded min/max limits.
func (n *Network) AddGenerator(g *Generator) error {
	if err := n.checkBus(g.ID, g.Bus); err != nil {
		return err
	}
	if g.RegulatingBus == nil {
		g.RegulatingBus = g.Bus
	} else if err := n.checkBus(g.ID, g.RegulatingBus); err != nil {
		return err
	}
	if g.ReactiveLimits == nil {
		g.ReactiveLimits = &MinMaxReactiveLimits{Min: -math.MaxFloat64, Max: math.MaxFloat64}
	}
	if g.EnergySource == "" {
		g.EnergySource = EnergySourceOther
	}
	if err := n.register(g.ID, g); err != nil {
		return err
	}
	n.generators = append(n.generators, g)
	return nil
}

// AddLoad adds l to the network.
func (n *Network) AddLoad(l *Load) error {
	if err := n.checkBus(l.ID, l.Bus); err != nil {
		return err
	}
	if l.Type == "" {
		l.Type = LoadTypeUndefined
	}
	if err := n.register(l.ID, l); err != nil {
		return err
	}
	n.loads = append(n.loads, l)
	return nil
}

// AddLine adds l to the network.
func (n *Network) AddLine(l *Line) error {
	if err := n.checkBus(l.ID, l.Bus1); err != nil {
		return err
	}
	if err := n.checkBus(l.ID, l.Bus2); err != nil {
		return err
	}
	if err := n.register(l.ID, l); err != nil {
		return err
	}
	n.lines = append(n.lines, l)
	return nil
}

// AddTwoWindingsTransformer adds t to the network.
func (n *Network) AddTwoWindingsTransformer(t *TwoWindingsTransformer) error {
	if err := n.checkBus(t.ID, t.Bus1); err != nil {
		return err
	}
	if err := n.checkBus(t.ID, t.Bus2); err != nil {
		return err
	}
	if err := n.register(t.ID, t); err != nil {
		return err
	}
	n.transformers = append(n.transformers, t)
	return nil
}

// VoltageLevels returns the voltage levels in insertion order.
func (n *Network) VoltageLevels() []*VoltageLevel { return n.voltageLevels }

// Buses returns the buses in insertion order.
func (n *Network) Buses() []*Bus { return n.buses }

// Generators returns the generators in insertion order.
func (n *Network) Generators() []*Generator { return n.generators }

// Loads returns the loads in insertion order.
func (n *Network) Loads() []*Load { return n.loads }

// Lines returns the lines in insertion order.
func (n *Network) Lines() []*Line { return n.lines }

// TwoWindingsTransformers returns the transformers in insertion order.
func (n *Network) TwoWindingsTransformers() []*TwoWindingsTransformer { return n.transformers }

func lookup[E any](n *Network, id string) (E, bool) {
	e, ok := n.index[id].(E)
	return e, ok
}

// VoltageLevel returns the voltage level called id.
func (n *Network) VoltageLevel(id string) (*VoltageLevel, bool) { return lookup[*VoltageLevel](n, id) }

// Bus returns the bus called id.
func (n *Network) Bus(id string) (*Bus, bool) { return lookup[*Bus](n, id) }

// Generator returns the generator called id.
func (n *Network) Generator(id string) (*Generator, bool) { return lookup[*Generator](n, id) }

// Load returns the load called id.
func (n *Network) Load(id string) (*Load, bool) { return lookup[*Load](n, id) }

// Line returns the line called id.
func (n *Network) Line(id string) (*Line, bool) { return lookup[*Line](n, id) }

// TwoWindingsTransformer returns the transformer called id.
func (n *Network) TwoWindingsTransformer(id string) (*TwoWindingsTransformer, bool) {
	return lookup[*TwoWindingsTransformer](n, id)
}
