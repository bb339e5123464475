package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Geometry parameterizes a one-dimensional source curve over [From, To].
type Geometry interface {
	// Domain returns the parameter interval.
	Domain() (from, to float64)
	// Position returns the point on the curve at parameter p.
	Position(p float64) r3.Vec
	// Tangent returns dPosition/dp.
	Tangent(p float64) r3.Vec
	// Extent is the total length of the curve.
	Extent() float64
	Validate() error
}

// Line is a straight segment through Origin along Direction. The parameter is
// the signed distance from Origin, so a rod centred on the origin along x is
// Line{Direction: r3.Vec{X: 1}, From: -L/2, To: L/2}.
type Line struct {
	Origin    r3.Vec
	Direction r3.Vec
	From, To  float64
}

func (l Line) Domain() (float64, float64) { return l.From, l.To }

func (l Line) Position(p float64) r3.Vec {
	return r3.Add(l.Origin, r3.Scale(p, r3.Unit(l.Direction)))
}

func (l Line) Tangent(float64) r3.Vec { return r3.Unit(l.Direction) }

func (l Line) Extent() float64 { return math.Abs(l.To - l.From) }

func (l Line) Validate() error {
	if r3.Norm(l.Direction) == 0 {
		return invalid("line.direction", "must be non-zero")
	}
	if !finite(l.From) || !finite(l.To) {
		return invalid("line.domain", "must be finite, got [%g, %g]", l.From, l.To)
	}
	if l.From == l.To {
		return invalid("line.domain", "has zero length at %g", l.From)
	}
	return nil
}

// basisTolerance bounds |Û·V̂| for an arc basis to count as orthogonal.
const basisTolerance = 1e-9

// Arc is a circular arc of Radius about Center in the plane spanned by the
// orthogonal vectors U and V.
// The parameter θ is an angle in radians and the curve is
//
//	Center + Radius·(sin θ·Û + cos θ·V̂)
//
// so θ is measured from V towards U. A full ring is an Arc over [0, 2π].
type Arc struct {
	Center   r3.Vec
	U, V     r3.Vec
	Radius   float64
	From, To float64
}

func (a Arc) Domain() (float64, float64) { return a.From, a.To }

func (a Arc) Position(theta float64) r3.Vec {
	s, c := math.Sincos(theta)
	offset := r3.Add(r3.Scale(s, r3.Unit(a.U)), r3.Scale(c, r3.Unit(a.V)))
	return r3.Add(a.Center, r3.Scale(a.Radius, offset))
}

func (a Arc) Tangent(theta float64) r3.Vec {
	s, c := math.Sincos(theta)
	dir := r3.Sub(r3.Scale(c, r3.Unit(a.U)), r3.Scale(s, r3.Unit(a.V)))
	return r3.Scale(a.Radius, dir)
}

func (a Arc) Extent() float64 { return a.Radius * math.Abs(a.To-a.From) }

func (a Arc) Validate() error {
	if !(a.Radius > 0) || !finite(a.Radius) {
		return invalid("arc.radius", "must be positive, got %g", a.Radius)
	}
	if r3.Norm(a.U) == 0 || r3.Norm(a.V) == 0 {
		return invalid("arc.basis", "u and v must be non-zero")
	}
	if r3.Norm(r3.Cross(a.U, a.V)) == 0 {
		return invalid("arc.basis", "u and v must not be parallel")
	}
	if math.Abs(r3.Dot(r3.Unit(a.U), r3.Unit(a.V))) > basisTolerance {
		return invalid("arc.basis", "u and v must be orthogonal")
	}
	if !finite(a.From) || !finite(a.To) {
		return invalid("arc.domain", "must be finite, got [%g, %g]", a.From, a.To)
	}
	if a.From == a.To {
		return invalid("arc.domain", "has zero span at %g", a.From)
	}
	return nil
}

// Ring returns a full circle of radius r about center whose plane is spanned by u and v.
func Ring(center, u, v r3.Vec, r float64) Arc {
	return Arc{Center: center, U: u, V: v, Radius: r, From: 0, To: 2 * math.Pi}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
