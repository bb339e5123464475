package analytic

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/field"
)

// DefaultOrder is the Gauss-Legendre order used when Reference is given order <= 0.
const DefaultOrder = 256

// Reference integrates the continuous source at poi with fixed-order
// Gauss-Legendre quadrature. It serves as the oracle for geometries without a
// closed form, such as a ring evaluated off its axis. Point charges are summed
// exactly.
func Reference(src field.Source, poi r3.Vec, order int) (r3.Vec, error) {
	if order <= 0 {
		order = DefaultOrder
	}

	switch s := src.(type) {
	case field.PointCharges:
		res, err := field.Evaluate(s, poi)
		return res.Field, err
	case field.ChargedCurve:
		if err := validGeometry(s.Geometry); err != nil {
			return r3.Vec{}, err
		}
		if s.Density == nil {
			return r3.Vec{}, &field.ConfigError{Field: "density", Reason: "is not defined"}
		}
		kernel := func(p float64) r3.Vec {
			r := r3.Sub(poi, s.Geometry.Position(p))
			d := r3.Norm(r)
			dl := r3.Norm(s.Geometry.Tangent(p))
			return r3.Scale(field.K*s.Density(p)*dl/(d*d*d), r)
		}
		lo, hi, _ := interval(s.Geometry)
		return integrate(lo, hi, kernel, order), nil
	case field.CurrentCurve:
		if err := validGeometry(s.Geometry); err != nil {
			return r3.Vec{}, err
		}
		kernel := func(p float64) r3.Vec {
			r := r3.Sub(poi, s.Geometry.Position(p))
			d := r3.Norm(r)
			return r3.Scale(field.BiotSavartPrefactor*s.Current/(d*d*d), r3.Cross(s.Geometry.Tangent(p), r))
		}
		// A reversed domain reverses the current.
		lo, hi, sign := interval(s.Geometry)
		return r3.Scale(sign, integrate(lo, hi, kernel, order)), nil
	case field.Composite:
		if len(s) == 0 {
			return r3.Vec{}, &field.ConfigError{Field: "sources", Reason: "must contain at least one source"}
		}
		var total r3.Vec
		for _, part := range s {
			if part == nil || part.Law() != s.Law() {
				return r3.Vec{}, &field.ConfigError{Field: "sources", Reason: "must share one law"}
			}
			v, err := Reference(part, poi, order)
			if err != nil {
				return r3.Vec{}, err
			}
			total = r3.Add(total, v)
		}
		return total, nil
	default:
		return r3.Vec{}, fmt.Errorf("analytic: no reference integral for %T", src)
	}
}

func validGeometry(g field.Geometry) error {
	if g == nil {
		return &field.ConfigError{Field: "geometry", Reason: "is not defined"}
	}
	return g.Validate()
}

func interval(g field.Geometry) (lo, hi, sign float64) {
	from, to := g.Domain()
	if from > to {
		return to, from, -1
	}
	return from, to, 1
}

func integrate(from, to float64, kernel func(float64) r3.Vec, order int) r3.Vec {
	component := func(pick func(r3.Vec) float64) float64 {
		return quad.Fixed(func(p float64) float64 { return pick(kernel(p)) }, from, to, order, quad.Legendre{}, 0)
	}
	return r3.Vec{
		X: component(func(v r3.Vec) float64 { return v.X }),
		Y: component(func(v r3.Vec) float64 { return v.Y }),
		Z: component(func(v r3.Vec) float64 { return v.Z }),
	}
}
