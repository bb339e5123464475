package experiment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/analytic"
	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/field"
)

// Closed forms hold only on their own locus (the centre, the axis, the
// bisector, above an end). Off it a reference returns NaN, which the
// comparison reports as not computable.
const locusTolerance = 1e-6

// Reference parameters read from ReferenceConfig.Params. Anything not given
// is derived from the source and the POI.
const (
	paramCurrent  = "current"
	paramCharge   = "charge"
	paramAlpha    = "alpha"
	paramLength   = "length"
	paramDistance = "distance"
	paramRadius   = "radius"
	paramAxial    = "axial"
	paramOrder    = "order"
)

// infiniteWire holds at any distance from the wire; a finite source only
// approaches it near its middle.
func infiniteWire(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error) {
	line, current, err := wire(built)
	if err != nil {
		return nil, err
	}
	i := param(params, paramCurrent, current)
	return func(poi r3.Vec) (float64, error) {
		return analytic.InfiniteWire(i, param(params, paramDistance, lineDistance(line, poi))), nil
	}, nil
}

func finiteWire(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error) {
	line, current, err := wire(built)
	if err != nil {
		return nil, err
	}
	i := param(params, paramCurrent, current)
	l := param(params, paramLength, line.Extent())
	return func(poi r3.Vec) (float64, error) {
		if !onBisector(line, poi) {
			return math.NaN(), nil
		}
		return analytic.FiniteWire(i, l, param(params, paramDistance, lineDistance(line, poi))), nil
	}, nil
}

func ringOnAxis(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error) {
	arc, current, err := loop(built)
	if err != nil {
		return nil, err
	}
	i := param(params, paramCurrent, current)
	rad := param(params, paramRadius, arc.Radius)
	normal := r3.Unit(r3.Cross(arc.U, arc.V))
	return func(poi r3.Vec) (float64, error) {
		if !onAxis(arc, normal, poi) {
			return math.NaN(), nil
		}
		x := param(params, paramAxial, r3.Dot(r3.Sub(poi, arc.Center), normal))
		return analytic.RingOnAxis(i, rad, x), nil
	}, nil
}

func ringCenter(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error) {
	arc, current, err := loop(built)
	if err != nil {
		return nil, err
	}
	b := analytic.RingCenter(param(params, paramCurrent, current), param(params, paramRadius, arc.Radius))
	return atCenter(arc, b), nil
}

func rodBisector(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error) {
	line, err := rod(built)
	if err != nil {
		return nil, err
	}
	q, err := charge(src.Density, line, params)
	if err != nil {
		return nil, err
	}
	l := param(params, paramLength, line.Extent())
	return func(poi r3.Vec) (float64, error) {
		if !onBisector(line, poi) {
			return math.NaN(), nil
		}
		return analytic.RodBisector(q, l, param(params, paramDistance, lineDistance(line, poi))), nil
	}, nil
}

func rodEnd(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error) {
	line, err := rod(built)
	if err != nil {
		return nil, err
	}
	q, err := charge(src.Density, line, params)
	if err != nil {
		return nil, err
	}
	l := param(params, paramLength, line.Extent())
	return func(poi r3.Vec) (float64, error) {
		if !aboveEnd(line, poi) {
			return math.NaN(), nil
		}
		return r3.Norm(analytic.RodEnd(q, l, param(params, paramDistance, lineDistance(line, poi)))), nil
	}, nil
}

func powerRodBisector(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error) {
	line, err := rod(built)
	if err != nil {
		return nil, err
	}
	alpha, ok := params[paramAlpha]
	if !ok {
		if src.Density.Kind != "power" || src.Density.Exponent != 2 {
			return nil, fmt.Errorf("power_rod_bisector needs a power density with exponent 2, got %s", src.Density.Kind)
		}
		alpha = src.Density.Alpha
	}
	l := param(params, paramLength, line.Extent())
	return func(poi r3.Vec) (float64, error) {
		if !onBisector(line, poi) {
			return math.NaN(), nil
		}
		return r3.Norm(analytic.PowerRodBisector(alpha, l, param(params, paramDistance, lineDistance(line, poi)))), nil
	}, nil
}

func arcCenter(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error) {
	arc, err := chargedArc(built)
	if err != nil {
		return nil, err
	}
	q, err := charge(src.Density, arc, params)
	if err != nil {
		return nil, err
	}
	e := r3.Norm(analytic.ArcCenter(q, param(params, paramRadius, arc.Radius), arc.From, arc.To))
	return atCenter(arc, e), nil
}

func sineArcCenter(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error) {
	arc, err := chargedArc(built)
	if err != nil {
		return nil, err
	}
	alpha, ok := params[paramAlpha]
	if !ok {
		if src.Density.Kind != "sine" {
			return nil, fmt.Errorf("sine_arc_center needs a sine density, got %s", src.Density.Kind)
		}
		alpha = src.Density.Alpha
	}
	e := r3.Norm(analytic.SineArcCenter(alpha, param(params, paramRadius, arc.Radius), arc.From, arc.To))
	return atCenter(arc, e), nil
}

func quadrature(src config.SourceConfig, built field.Source, params map[string]float64) (ReferenceFunc, error) {
	order := int(param(params, paramOrder, config.DefaultOrder))
	return func(poi r3.Vec) (float64, error) {
		v, err := analytic.Reference(built, poi, order)
		if err != nil {
			return 0, err
		}
		return r3.Norm(v), nil
	}, nil
}

func param(params map[string]float64, name string, fallback float64) float64 {
	if v, ok := params[name]; ok {
		return v
	}
	return fallback
}

// lineDistance is the perpendicular distance from poi to the infinite line
// through l.
func lineDistance(l field.Line, poi r3.Vec) float64 {
	d := r3.Unit(l.Direction)
	rel := r3.Sub(poi, l.Origin)
	return r3.Norm(r3.Sub(rel, r3.Scale(r3.Dot(rel, d), d)))
}

// along is the signed position of poi's projection onto l, in l's parameter.
func along(l field.Line, poi r3.Vec) float64 {
	return r3.Dot(r3.Sub(poi, l.Origin), r3.Unit(l.Direction))
}

func near(a, b, scale float64) bool {
	return math.Abs(a-b) <= locusTolerance*scale
}

func onBisector(l field.Line, poi r3.Vec) bool {
	return near(along(l, poi), (l.From+l.To)/2, l.Extent())
}

func aboveEnd(l field.Line, poi r3.Vec) bool {
	t := along(l, poi)
	return near(t, l.From, l.Extent()) || near(t, l.To, l.Extent())
}

func onAxis(a field.Arc, normal, poi r3.Vec) bool {
	rel := r3.Sub(poi, a.Center)
	radial := r3.Sub(rel, r3.Scale(r3.Dot(rel, normal), normal))
	return near(r3.Norm(radial), 0, a.Radius)
}

// atCenter returns v at the arc centre and NaN elsewhere.
func atCenter(a field.Arc, v float64) ReferenceFunc {
	return func(poi r3.Vec) (float64, error) {
		if !near(r3.Norm(r3.Sub(poi, a.Center)), 0, a.Radius) {
			return math.NaN(), nil
		}
		return v, nil
	}
}

// charge is the total charge of a uniform density.
func charge(d config.DensityConfig, g field.Geometry, params map[string]float64) (float64, error) {
	if q, ok := params[paramCharge]; ok {
		return q, nil
	}
	switch d.Kind {
	case "uniform":
		return d.Lambda * g.Extent(), nil
	case "uniform_total":
		return d.Total, nil
	default:
		return 0, fmt.Errorf("reference needs a uniform density or a %q param, got %s", paramCharge, d.Kind)
	}
}

func wire(built field.Source) (field.Line, float64, error) {
	c, ok := built.(field.CurrentCurve)
	if !ok {
		return field.Line{}, 0, fmt.Errorf("wire reference needs a current curve, got %T", built)
	}
	l, ok := c.Geometry.(field.Line)
	if !ok {
		return field.Line{}, 0, fmt.Errorf("wire reference needs a line geometry, got %T", c.Geometry)
	}
	return l, c.Current, nil
}

func loop(built field.Source) (field.Arc, float64, error) {
	c, ok := built.(field.CurrentCurve)
	if !ok {
		return field.Arc{}, 0, fmt.Errorf("ring reference needs a current curve, got %T", built)
	}
	a, ok := c.Geometry.(field.Arc)
	if !ok || math.Abs(math.Abs(a.To-a.From)-2*math.Pi) > 1e-12 {
		return field.Arc{}, 0, fmt.Errorf("ring reference needs a full ring geometry")
	}
	return a, c.Current, nil
}

func rod(built field.Source) (field.Line, error) {
	c, ok := built.(field.ChargedCurve)
	if !ok {
		return field.Line{}, fmt.Errorf("rod reference needs a charged curve, got %T", built)
	}
	l, ok := c.Geometry.(field.Line)
	if !ok {
		return field.Line{}, fmt.Errorf("rod reference needs a line geometry, got %T", c.Geometry)
	}
	return l, nil
}

func chargedArc(built field.Source) (field.Arc, error) {
	c, ok := built.(field.ChargedCurve)
	if !ok {
		return field.Arc{}, fmt.Errorf("arc reference needs a charged curve, got %T", built)
	}
	a, ok := c.Geometry.(field.Arc)
	if !ok {
		return field.Arc{}, fmt.Errorf("arc reference needs an arc geometry, got %T", c.Geometry)
	}
	return a, nil
}
