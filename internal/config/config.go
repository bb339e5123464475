package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fieldlab/internal/field"
)

const (
	DefaultSlices    = 100
	DefaultWorkers   = 4
	DefaultOrder     = 256
	DefaultTolerance = 1.0
	DefaultMaxSlices = 1 << 20
	DefaultDt        = 0.01
	DefaultSteps     = 1000
)

// Source kinds.
const (
	PointChargesKind = "point_charges"
	ChargedCurveKind = "charged_curve"
	CurrentCurveKind = "current_curve"
	CompositeKind    = "composite"
)

// Vec is an [x, y, z] triple.
type Vec [3]float64

func (v Vec) R3() r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

func FromR3(v r3.Vec) Vec { return Vec{v.X, v.Y, v.Z} }

// IsZero lets yaml omit unset vectors.
func (v Vec) IsZero() bool { return v == Vec{} }

// Scenario is one demonstration: a source, where to look at it and what to
// compare it against.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Source      SourceConfig    `yaml:"source"`
	POIs        []Vec           `yaml:"pois,omitempty,flow"`
	Grid        *field.Grid     `yaml:"grid,omitempty"`
	Line        *LineConfig     `yaml:"line,omitempty"`
	Saturation  float64         `yaml:"saturation,omitempty"`
	TestCharge  float64         `yaml:"test_charge,omitempty"`
	Reference   ReferenceConfig `yaml:"reference,omitempty"`
	Convergence []int           `yaml:"convergence,omitempty,flow"`
	MinSlices   MinSlicesConfig `yaml:"min_slices,omitempty"`
	Workers     int             `yaml:"workers,omitempty"`
	Motion      *MotionConfig   `yaml:"motion,omitempty"`
	Scan        *ScanConfig     `yaml:"scan,omitempty"`
}

type SourceConfig struct {
	Kind     string         `yaml:"kind"`
	Geometry GeometryConfig `yaml:"geometry,omitempty"`
	Density  DensityConfig  `yaml:"density,omitempty"`
	Current  float64        `yaml:"current,omitempty"`
	Slices   int            `yaml:"slices,omitempty"`
	Charges  []ChargeConfig `yaml:"charges,omitempty"`
	Parts    []SourceConfig `yaml:"parts,omitempty"`
}

type GeometryConfig struct {
	Kind      string  `yaml:"kind,omitempty"`
	Origin    Vec     `yaml:"origin,omitempty,flow"`
	Direction Vec     `yaml:"direction,omitempty,flow"`
	Center    Vec     `yaml:"center,omitempty,flow"`
	U         Vec     `yaml:"u,omitempty,flow"`
	V         Vec     `yaml:"v,omitempty,flow"`
	Radius    float64 `yaml:"radius,omitempty"`
	From      float64 `yaml:"from,omitempty"`
	To        float64 `yaml:"to,omitempty"`
}

type DensityConfig struct {
	Kind     string  `yaml:"kind,omitempty"`
	Lambda   float64 `yaml:"lambda,omitempty"`
	Total    float64 `yaml:"total,omitempty"`
	Alpha    float64 `yaml:"alpha,omitempty"`
	Exponent float64 `yaml:"exponent,omitempty"`
}

type ChargeConfig struct {
	Pos Vec     `yaml:"pos,flow"`
	Q   float64 `yaml:"q"`
}

type LineConfig struct {
	Start Vec `yaml:"start,flow"`
	End   Vec `yaml:"end,flow"`
	Count int `yaml:"count"`
}

// ReferenceConfig names an analytic reference. Params override values
// otherwise derived from the source geometry and the POI.
type ReferenceConfig struct {
	Kind   string             `yaml:"kind,omitempty"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

type MinSlicesConfig struct {
	Tolerance float64 `yaml:"tolerance,omitempty"`
	Start     int     `yaml:"start,omitempty"`
	Max       int     `yaml:"max,omitempty"`
}

// MotionConfig describes a free test charge moving through the field of a
// point-charge source.
type MotionConfig struct {
	Charge        float64 `yaml:"charge"`
	Mass          float64 `yaml:"mass"`
	Position      Vec     `yaml:"position,flow"`
	Velocity      Vec     `yaml:"velocity,omitempty,flow"`
	Dt            float64 `yaml:"dt"`
	Steps         int     `yaml:"steps"`
	Stepper       string  `yaml:"stepper"`
	CaptureRadius float64 `yaml:"capture_radius,omitempty"`
}

// ScanConfig walks a test charge along a line looking for zero net force.
type ScanConfig struct {
	Charge    float64 `yaml:"charge"`
	Start     Vec     `yaml:"start,flow"`
	End       Vec     `yaml:"end,flow"`
	Count     int     `yaml:"count"`
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// DefaultConfig is the ring-centre demonstration.
func DefaultConfig() *Scenario {
	return GetPreset("ring")
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scenario, filling unset knobs with defaults.
func Parse(data []byte) (*Scenario, error) {
	sc := &Scenario{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	sc.ApplyDefaults()
	return sc, sc.Validate()
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyDefaults fills unset knobs.
func (s *Scenario) ApplyDefaults() {
	if s.Workers <= 0 {
		s.Workers = DefaultWorkers
	}
	if len(s.Convergence) == 0 {
		s.Convergence = []int{10, 100, 1000}
	}
	if s.MinSlices.Tolerance <= 0 {
		s.MinSlices.Tolerance = DefaultTolerance
	}
	if s.MinSlices.Start <= 0 {
		s.MinSlices.Start = 1
	}
	if s.MinSlices.Max <= 0 {
		s.MinSlices.Max = DefaultMaxSlices
	}
	if m := s.Motion; m != nil {
		if m.Dt <= 0 {
			m.Dt = DefaultDt
		}
		if m.Steps <= 0 {
			m.Steps = DefaultSteps
		}
		if m.Stepper == "" {
			m.Stepper = "euler"
		}
	}
}

// Validate checks the parts of a scenario that do not depend on the
// registry. Source details are checked when the source is built.
func (s *Scenario) Validate() error {
	if s.Source.Kind == "" {
		return fmt.Errorf("scenario %q: source kind is required", s.Name)
	}
	if s.Grid != nil {
		if err := s.Grid.Validate(); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	if s.Line != nil && s.Line.Count <= 0 {
		return fmt.Errorf("scenario %q: line count must be positive", s.Name)
	}
	for _, n := range s.Convergence {
		if n <= 0 {
			return fmt.Errorf("scenario %q: convergence slices must be positive, got %d", s.Name, n)
		}
	}
	if m := s.Motion; m != nil && m.Mass <= 0 {
		return fmt.Errorf("scenario %q: motion mass must be positive", s.Name)
	}
	if sc := s.Scan; sc != nil && sc.Count < 2 {
		return fmt.Errorf("scenario %q: scan needs at least 2 samples", s.Name)
	}
	return nil
}

// Points lists every POI of the scenario: explicit POIs, then the line, then
// the grid.
func (s *Scenario) Points() []r3.Vec {
	var pts []r3.Vec
	for _, p := range s.POIs {
		pts = append(pts, p.R3())
	}
	pts = append(pts, s.SweepPoints()...)
	return pts
}

// SweepPoints lists only the line and grid POIs.
func (s *Scenario) SweepPoints() []r3.Vec {
	var pts []r3.Vec
	if s.Line != nil {
		pts = append(pts, field.LinePoints(s.Line.Start.R3(), s.Line.End.R3(), s.Line.Count)...)
	}
	if s.Grid != nil {
		pts = append(pts, s.Grid.Points()...)
	}
	return pts
}

// WithSlices returns a copy whose curve sources use n slices.
func (s *Scenario) WithSlices(n int) *Scenario {
	out := s.Clone()
	out.Source.setSlices(n)
	return out
}

// SlicesOrZero is the slice count of a curve, or of the first part of a
// composite.
func (c SourceConfig) SlicesOrZero() int {
	if c.Kind == CompositeKind && len(c.Parts) > 0 {
		return c.Parts[0].SlicesOrZero()
	}
	return c.Slices
}

func (c *SourceConfig) setSlices(n int) {
	if c.Kind != PointChargesKind {
		c.Slices = n
	}
	for i := range c.Parts {
		c.Parts[i].setSlices(n)
	}
}

// Clone deep-copies the scenario through its YAML form.
func (s *Scenario) Clone() *Scenario {
	data, err := yaml.Marshal(s)
	if err != nil {
		panic(err)
	}
	out := &Scenario{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}
