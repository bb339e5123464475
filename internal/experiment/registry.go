package experiment

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/motion"
)

type (
	GeometryBuilder  func(config.GeometryConfig) (field.Geometry, error)
	DensityBuilder   func(config.DensityConfig, field.Geometry) (field.Density, error)
	ReferenceBuilder func(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error)
)

// ReferenceFunc returns the analytic field magnitude at a POI.
type ReferenceFunc func(poi r3.Vec) (float64, error)

// Registry maps scenario names to geometries, densities, references and
// steppers.
type Registry struct {
	geometries map[string]GeometryBuilder
	densities  map[string]DensityBuilder
	references map[string]ReferenceBuilder
	steppers   map[string]func() motion.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		geometries: make(map[string]GeometryBuilder),
		densities:  make(map[string]DensityBuilder),
		references: make(map[string]ReferenceBuilder),
		steppers:   make(map[string]func() motion.Stepper),
	}

	r.geometries["line"] = func(g config.GeometryConfig) (field.Geometry, error) {
		return field.Line{Origin: g.Origin.R3(), Direction: g.Direction.R3(), From: g.From, To: g.To}, nil
	}
	r.geometries["arc"] = func(g config.GeometryConfig) (field.Geometry, error) {
		return field.Arc{Center: g.Center.R3(), U: g.U.R3(), V: g.V.R3(), Radius: g.Radius, From: g.From, To: g.To}, nil
	}
	r.geometries["ring"] = func(g config.GeometryConfig) (field.Geometry, error) {
		return field.Ring(g.Center.R3(), g.U.R3(), g.V.R3(), g.Radius), nil
	}

	r.densities["uniform"] = func(d config.DensityConfig, _ field.Geometry) (field.Density, error) {
		return field.Uniform(d.Lambda), nil
	}
	r.densities["uniform_total"] = func(d config.DensityConfig, g field.Geometry) (field.Density, error) {
		return field.UniformTotal(d.Total, g), nil
	}
	r.densities["power"] = func(d config.DensityConfig, _ field.Geometry) (field.Density, error) {
		return field.Power(d.Alpha, d.Exponent), nil
	}
	r.densities["sine"] = func(d config.DensityConfig, _ field.Geometry) (field.Density, error) {
		return field.Sine(d.Alpha), nil
	}

	r.references["infinite_wire"] = infiniteWire
	r.references["finite_wire"] = finiteWire
	r.references["ring_on_axis"] = ringOnAxis
	r.references["ring_center"] = ringCenter
	r.references["rod_bisector"] = rodBisector
	r.references["rod_end"] = rodEnd
	r.references["power_rod_bisector"] = powerRodBisector
	r.references["arc_center"] = arcCenter
	r.references["sine_arc_center"] = sineArcCenter
	r.references["quadrature"] = quadrature

	r.steppers["euler"] = func() motion.Stepper { return motion.NewEuler() }
	r.steppers["verlet"] = func() motion.Stepper { return motion.NewVerlet() }

	return r
}

func (r *Registry) GetGeometry(cfg config.GeometryConfig) (field.Geometry, error) {
	fn, ok := r.geometries[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown geometry: %s", cfg.Kind)
	}
	return fn(cfg)
}

func (r *Registry) GetDensity(cfg config.DensityConfig, g field.Geometry) (field.Density, error) {
	fn, ok := r.densities[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown density: %s", cfg.Kind)
	}
	return fn(cfg, g)
}

// GetReference returns nil when the scenario names no reference.
func (r *Registry) GetReference(cfg config.ReferenceConfig, src config.SourceConfig, built field.Source) (ReferenceFunc, error) {
	if cfg.Kind == "" || cfg.Kind == "none" {
		return nil, nil
	}
	fn, ok := r.references[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference: %s", cfg.Kind)
	}
	return fn(src, built, cfg.Params)
}

func (r *Registry) GetStepper(name string) (motion.Stepper, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown stepper: %s", name)
	}
	return fn(), nil
}

// BuildSource turns a source description into a field.Source.
func (r *Registry) BuildSource(cfg config.SourceConfig) (field.Source, error) {
	switch cfg.Kind {
	case config.PointChargesKind:
		charges := make(field.PointCharges, len(cfg.Charges))
		for i, c := range cfg.Charges {
			charges[i] = field.PointCharge{Pos: c.Pos.R3(), Q: c.Q}
		}
		return charges, nil
	case config.ChargedCurveKind:
		g, err := r.GetGeometry(cfg.Geometry)
		if err != nil {
			return nil, err
		}
		d, err := r.GetDensity(cfg.Density, g)
		if err != nil {
			return nil, err
		}
		return field.ChargedCurve{Geometry: g, Density: d, Slices: cfg.Slices}, nil
	case config.CurrentCurveKind:
		g, err := r.GetGeometry(cfg.Geometry)
		if err != nil {
			return nil, err
		}
		return field.CurrentCurve{Geometry: g, Current: cfg.Current, Slices: cfg.Slices}, nil
	case config.CompositeKind:
		parts := make(field.Composite, len(cfg.Parts))
		for i, p := range cfg.Parts {
			src, err := r.BuildSource(p)
			if err != nil {
				return nil, fmt.Errorf("part %d: %w", i, err)
			}
			parts[i] = src
		}
		return parts, nil
	default:
		return nil, fmt.Errorf("unknown source: %s", cfg.Kind)
	}
}

func (r *Registry) ListGeometries() []string { return sortedKeys(r.geometries) }
func (r *Registry) ListDensities() []string  { return sortedKeys(r.densities) }
func (r *Registry) ListReferences() []string { return sortedKeys(r.references) }
func (r *Registry) ListSteppers() []string   { return sortedKeys(r.steppers) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
