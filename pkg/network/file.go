package network

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/gridframe/gridframe/pkg/errors"
)

// Format is the serialization of a network file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.InvalidValue("unknown network file extension %q", filepath.Ext(path)).
			WithDetail("file", path)
	}
}

// File layout. Elements reference each other by id. Load flow results are
// optional: a missing value reads as NaN.
type networkFile struct {
	ID                      string            `json:"id" yaml:"id"`
	VoltageLevels           []voltageLevelDoc `json:"voltage_levels,omitempty" yaml:"voltage_levels,omitempty"`
	Buses                   []busDoc          `json:"buses,omitempty" yaml:"buses,omitempty"`
	Generators              []generatorDoc    `json:"generators,omitempty" yaml:"generators,omitempty"`
	Loads                   []loadDoc         `json:"loads,omitempty" yaml:"loads,omitempty"`
	Lines                   []lineDoc         `json:"lines,omitempty" yaml:"lines,omitempty"`
	TwoWindingsTransformers []transformerDoc  `json:"two_windings_transformers,omitempty" yaml:"two_windings_transformers,omitempty"`
}

type identifiableDoc struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type voltageLevelDoc struct {
	identifiableDoc  `yaml:",inline"`
	NominalV         float64  `json:"nominal_v" yaml:"nominal_v"`
	LowVoltageLimit  *float64 `json:"low_voltage_limit,omitempty" yaml:"low_voltage_limit,omitempty"`
	HighVoltageLimit *float64 `json:"high_voltage_limit,omitempty" yaml:"high_voltage_limit,omitempty"`
}

type busDoc struct {
	identifiableDoc `yaml:",inline"`
	VoltageLevel    string   `json:"voltage_level" yaml:"voltage_level"`
	V               *float64 `json:"v,omitempty" yaml:"v,omitempty"`
	Angle           *float64 `json:"angle,omitempty" yaml:"angle,omitempty"`
}

type generatorDoc struct {
	identifiableDoc    `yaml:",inline"`
	Bus                string       `json:"bus" yaml:"bus"`
	RegulatingBus      string       `json:"regulating_bus,omitempty" yaml:"regulating_bus,omitempty"`
	EnergySource       EnergySource `json:"energy_source,omitempty" yaml:"energy_source,omitempty"`
	TargetP            float64      `json:"target_p" yaml:"target_p"`
	TargetQ            float64      `json:"target_q" yaml:"target_q"`
	TargetV            float64      `json:"target_v" yaml:"target_v"`
	MinP               float64      `json:"min_p" yaml:"min_p"`
	MaxP               float64      `json:"max_p" yaml:"max_p"`
	RatedS             *float64     `json:"rated_s,omitempty" yaml:"rated_s,omitempty"`
	VoltageRegulatorOn bool         `json:"voltage_regulator_on" yaml:"voltage_regulator_on"`
	MinQ               *float64     `json:"min_q,omitempty" yaml:"min_q,omitempty"`
	MaxQ               *float64     `json:"max_q,omitempty" yaml:"max_q,omitempty"`
	Curve              []CurvePoint `json:"reactive_capability_curve,omitempty" yaml:"reactive_capability_curve,omitempty"`
	P                  *float64     `json:"p,omitempty" yaml:"p,omitempty"`
	Q                  *float64     `json:"q,omitempty" yaml:"q,omitempty"`
	Connected          bool         `json:"connected" yaml:"connected"`
}

type loadDoc struct {
	identifiableDoc `yaml:",inline"`
	Bus             string   `json:"bus" yaml:"bus"`
	Type            LoadType `json:"type,omitempty" yaml:"type,omitempty"`
	P0              float64  `json:"p0" yaml:"p0"`
	Q0              float64  `json:"q0" yaml:"q0"`
	P               *float64 `json:"p,omitempty" yaml:"p,omitempty"`
	Q               *float64 `json:"q,omitempty" yaml:"q,omitempty"`
	Connected       bool     `json:"connected" yaml:"connected"`
}

type branchDoc struct {
	Bus1       string   `json:"bus1" yaml:"bus1"`
	Bus2       string   `json:"bus2" yaml:"bus2"`
	P1         *float64 `json:"p1,omitempty" yaml:"p1,omitempty"`
	Q1         *float64 `json:"q1,omitempty" yaml:"q1,omitempty"`
	P2         *float64 `json:"p2,omitempty" yaml:"p2,omitempty"`
	Q2         *float64 `json:"q2,omitempty" yaml:"q2,omitempty"`
	Connected1 bool     `json:"connected1" yaml:"connected1"`
	Connected2 bool     `json:"connected2" yaml:"connected2"`
}

type lineDoc struct {
	identifiableDoc `yaml:",inline"`
	branchDoc       `yaml:",inline"`
	R               float64 `json:"r" yaml:"r"`
	X               float64 `json:"x" yaml:"x"`
	G1              float64 `json:"g1" yaml:"g1"`
	B1              float64 `json:"b1" yaml:"b1"`
	G2              float64 `json:"g2" yaml:"g2"`
	B2              float64 `json:"b2" yaml:"b2"`
}

type transformerDoc struct {
	identifiableDoc `yaml:",inline"`
	branchDoc       `yaml:",inline"`
	R               float64  `json:"r" yaml:"r"`
	X               float64  `json:"x" yaml:"x"`
	G               float64  `json:"g" yaml:"g"`
	B               float64  `json:"b" yaml:"b"`
	RatedU1         float64  `json:"rated_u1" yaml:"rated_u1"`
	RatedU2         float64  `json:"rated_u2" yaml:"rated_u2"`
	RatedS          *float64 `json:"rated_s,omitempty" yaml:"rated_s,omitempty"`
}

func opt(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func val(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// Read decodes a network.
func Read(r io.Reader, format Format) (*Network, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to read network")
	}

	var doc networkFile
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, errors.InvalidValue("unknown network format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInvalidValue, fmt.Sprintf("failed to decode %s network", format))
	}
	return doc.build()
}

// Write encodes n.
func Write(w io.Writer, n *Network, format Format) error {
	doc := document(n)
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	default:
		return errors.InvalidValue("unknown network format %q", format)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, fmt.Sprintf("failed to encode %s network", format))
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write network")
	}
	return nil
}

// LoadFile reads the network stored at path, in the format given by its
// extension.
func LoadFile(path string) (*Network, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "failed to open network file").WithDetail("file", path)
	}
	defer f.Close()
	return Read(f, format)
}

// SaveFile writes n to path, in the format given by its extension.
func SaveFile(path string, n *Network) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, n, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write network file").WithDetail("file", path)
	}
	return nil
}

func identifiable(d identifiableDoc) Identifiable {
	return Identifiable{ID: d.ID, Name: d.Name, Properties: d.Properties}
}

func identifiableDocOf(i Identifiable) identifiableDoc {
	return identifiableDoc{ID: i.ID, Name: i.Name, Properties: i.Properties}
}

func (doc *networkFile) build() (*Network, error) {
	n := New(doc.ID)

	for _, d := range doc.VoltageLevels {
		vl := &VoltageLevel{
			Identifiable:     identifiable(d.identifiableDoc),
			Nominal:          d.NominalV,
			LowVoltageLimit:  val(d.LowVoltageLimit),
			HighVoltageLimit: val(d.HighVoltageLimit),
		}
		if err := n.AddVoltageLevel(vl); err != nil {
			return nil, err
		}
	}

	bus := func(owner, id string) (*Bus, error) {
		b, ok := n.Bus(id)
		if !ok {
			return nil, errors.NotFound("%s: bus %q not found", owner, id).
				WithDetail("element_id", owner).
				WithDetail("bus", id)
		}
		return b, nil
	}

	for _, d := range doc.Buses {
		vl, ok := n.VoltageLevel(d.VoltageLevel)
		if !ok {
			return nil, errors.NotFound("bus %q: voltage level %q not found", d.ID, d.VoltageLevel).
				WithDetail("element_id", d.ID)
		}
		b := &Bus{Identifiable: identifiable(d.identifiableDoc), VoltageLevel: vl, V: val(d.V), Angle: val(d.Angle)}
		if err := n.AddBus(b); err != nil {
			return nil, err
		}
	}

	for _, d := range doc.Generators {
		b, err := bus(d.ID, d.Bus)
		if err != nil {
			return nil, err
		}
		g := &Generator{
			Identifiable:       identifiable(d.identifiableDoc),
			Bus:                b,
			EnergySource:       d.EnergySource,
			TargetP:            d.TargetP,
			TargetQ:            d.TargetQ,
			TargetV:            d.TargetV,
			MinP:               d.MinP,
			MaxP:               d.MaxP,
			RatedS:             val(d.RatedS),
			VoltageRegulatorOn: d.VoltageRegulatorOn,
			P:                  val(d.P),
			Q:                  val(d.Q),
			Connected:          d.Connected,
		}
		if d.RegulatingBus != "" {
			if g.RegulatingBus, err = bus(d.ID, d.RegulatingBus); err != nil {
				return nil, err
			}
		}
		switch {
		case len(d.Curve) > 0:
			if d.MinQ != nil || d.MaxQ != nil {
				return nil, errors.InvalidValue("generator %q has both min/max and curve reactive limits", d.ID).
					WithDetail("element_id", d.ID)
			}
			curve, err := NewReactiveCapabilityCurve(d.Curve...)
			if err != nil {
				return nil, err
			}
			g.ReactiveLimits = curve
		case d.MinQ != nil || d.MaxQ != nil:
			l := &MinMaxReactiveLimits{Min: -math.MaxFloat64, Max: math.MaxFloat64}
			if d.MinQ != nil {
				l.Min = *d.MinQ
			}
			if d.MaxQ != nil {
				l.Max = *d.MaxQ
			}
			g.ReactiveLimits = l
		}
		if err := n.AddGenerator(g); err != nil {
			return nil, err
		}
	}

	for _, d := range doc.Loads {
		b, err := bus(d.ID, d.Bus)
		if err != nil {
			return nil, err
		}
		l := &Load{
			Identifiable: identifiable(d.identifiableDoc),
			Bus:          b,
			Type:         d.Type,
			P0:           d.P0,
			Q0:           d.Q0,
			P:            val(d.P),
			Q:            val(d.Q),
			Connected:    d.Connected,
		}
		if err := n.AddLoad(l); err != nil {
			return nil, err
		}
	}

	branch := func(owner string, d branchDoc) (Branch, error) {
		b1, err := bus(owner, d.Bus1)
		if err != nil {
			return Branch{}, err
		}
		b2, err := bus(owner, d.Bus2)
		if err != nil {
			return Branch{}, err
		}
		return Branch{
			Bus1: b1, Bus2: b2,
			P1: val(d.P1), Q1: val(d.Q1), P2: val(d.P2), Q2: val(d.Q2),
			Connected1: d.Connected1, Connected2: d.Connected2,
		}, nil
	}

	for _, d := range doc.Lines {
		br, err := branch(d.ID, d.branchDoc)
		if err != nil {
			return nil, err
		}
		l := &Line{
			Identifiable: identifiable(d.identifiableDoc),
			Branch:       br,
			R:            d.R, X: d.X,
			G1: d.G1, B1: d.B1, G2: d.G2, B2: d.B2,
		}
		if err := n.AddLine(l); err != nil {
			return nil, err
		}
	}

	for _, d := range doc.TwoWindingsTransformers {
		br, err := branch(d.ID, d.branchDoc)
		if err != nil {
			return nil, err
		}
		t := &TwoWindingsTransformer{
			Identifiable: identifiable(d.identifiableDoc),
			Branch:       br,
			R:            d.R, X: d.X, G: d.G, B: d.B,
			RatedU1: d.RatedU1, RatedU2: d.RatedU2,
			RatedS: val(d.RatedS),
		}
		if err := n.AddTwoWindingsTransformer(t); err != nil {
			return nil, err
		}
	}

	return n, nil
}

func branchDocOf(b Branch) branchDoc {
	return branchDoc{
		Bus1: b.Bus1.ID, Bus2: b.Bus2.ID,
		P1: opt(b.P1), Q1: opt(b.Q1), P2: opt(b.P2), Q2: opt(b.Q2),
		Connected1: b.Connected1, Connected2: b.Connected2,
	}
}

func document(n *Network) *networkFile {
	doc := &networkFile{ID: n.ID}

	for _, vl := range n.voltageLevels {
		doc.VoltageLevels = append(doc.VoltageLevels, voltageLevelDoc{
			identifiableDoc:  identifiableDocOf(vl.Identifiable),
			NominalV:         vl.Nominal,
			LowVoltageLimit:  opt(vl.LowVoltageLimit),
			HighVoltageLimit: opt(vl.HighVoltageLimit),
		})
	}
	for _, b := range n.buses {
		doc.Buses = append(doc.Buses, busDoc{
			identifiableDoc: identifiableDocOf(b.Identifiable),
			VoltageLevel:    b.VoltageLevel.ID,
			V:               opt(b.V),
			Angle:           opt(b.Angle),
		})
	}
	for _, g := range n.generators {
		d := generatorDoc{
			identifiableDoc:    identifiableDocOf(g.Identifiable),
			Bus:                g.Bus.ID,
			EnergySource:       g.EnergySource,
			TargetP:            g.TargetP,
			TargetQ:            g.TargetQ,
			TargetV:            g.TargetV,
			MinP:               g.MinP,
			MaxP:               g.MaxP,
			RatedS:             opt(g.RatedS),
			VoltageRegulatorOn: g.VoltageRegulatorOn,
			P:                  opt(g.P),
			Q:                  opt(g.Q),
			Connected:          g.Connected,
		}
		if g.RegulatingBus != nil && g.RegulatingBus != g.Bus {
			d.RegulatingBus = g.RegulatingBus.ID
		}
		switch l := g.ReactiveLimits.(type) {
		case *ReactiveCapabilityCurve:
			d.Curve = l.Points
		case *MinMaxReactiveLimits:
			if l.Min != -math.MaxFloat64 {
				d.MinQ = opt(l.Min)
			}
			if l.Max != math.MaxFloat64 {
				d.MaxQ = opt(l.Max)
			}
		}
		doc.Generators = append(doc.Generators, d)
	}
	for _, l := range n.loads {
		doc.Loads = append(doc.Loads, loadDoc{
			identifiableDoc: identifiableDocOf(l.Identifiable),
			Bus:             l.Bus.ID,
			Type:            l.Type,
			P0:              l.P0,
			Q0:              l.Q0,
			P:               opt(l.P),
			Q:               opt(l.Q),
			Connected:       l.Connected,
		})
	}
	for _, l := range n.lines {
		doc.Lines = append(doc.Lines, lineDoc{
			identifiableDoc: identifiableDocOf(l.Identifiable),
			branchDoc:       branchDocOf(l.Branch),
			R:               l.R, X: l.X,
			G1: l.G1, B1: l.B1, G2: l.G2, B2: l.B2,
		})
	}
	for _, t := range n.transformers {
		doc.TwoWindingsTransformers = append(doc.TwoWindingsTransformers, transformerDoc{
			identifiableDoc: identifiableDocOf(t.Identifiable),
			branchDoc:       branchDocOf(t.Branch),
			R:               t.R, X: t.X, G: t.G, B: t.B,
			RatedU1: t.RatedU1, RatedU2: t.RatedU2,
			RatedS: opt(t.RatedS),
		})
	}
	return doc
}
