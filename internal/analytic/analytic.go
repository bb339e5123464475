// Package analytic holds closed-form field values for the source geometries in
// package field, and compares discretized sums against them.
//
// Every function is pure. Callers pick the closed form matching their
// geometry; the closed forms never inspect a field.Source to guess which one
// applies. Reference is the exception: it integrates whatever source it is
// given.
package analytic

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/field"
)

// InfiniteWire is |B| at distance a from an infinite straight wire carrying current i.
func InfiniteWire(i, a float64) float64 {
	return field.Mu0 * math.Abs(i) / (2 * math.Pi * a)
}

// FiniteWire is |B| on the perpendicular bisector of a straight wire of length l,
// at distance a from it.
func FiniteWire(i, l, a float64) float64 {
	return field.BiotSavartPrefactor * math.Abs(i) * l / (a * math.Sqrt(a*a+l*l/4))
}

// RingOnAxis is |B| on the axis of a circular loop of radius r, at distance x
// from its centre.
func RingOnAxis(i, r, x float64) float64 {
	return field.Mu0 * math.Abs(i) * r * r / (2 * math.Pow(r*r+x*x, 1.5))
}

// RingCenter is |B| at the centre of a circular loop.
func RingCenter(i, r float64) float64 {
	return RingOnAxis(i, r, 0)
}

// RodBisector is |E| on the perpendicular bisector of a uniformly charged rod of
// total charge q and length l, at distance y from it.
func RodBisector(q, l, y float64) float64 {
	return field.K * math.Abs(q) / (y * math.Sqrt(y*y+l*l/4))
}

// RodEnd is E at (0, y, 0) from a uniformly charged rod lying on the x axis
// between 0 and l, i.e. directly above one end.
func RodEnd(q, l, y float64) r3.Vec {
	lambda := q / l
	d := math.Sqrt(l*l + y*y)
	return r3.Vec{
		X: field.K * lambda * (1/d - 1/y),
		Y: field.K * lambda * l / (y * d),
	}
}

// PowerRodBisector is E at (0, y, 0) from a rod on the x axis between -l/2 and
// l/2 with density λ(x) = α·x².
func PowerRodBisector(alpha, l, y float64) r3.Vec {
	h := l / 2
	ey := field.K * alpha * y * (2*math.Asinh(h/y) - l/math.Sqrt(h*h+y*y))
	return r3.Vec{Y: ey}
}

// ArcCenter is E at the centre of a uniformly charged arc of radius r carrying
// total charge q between angles from and to, using the field.Arc convention
// with U = x̂ and V = ŷ.
func ArcCenter(q, r, from, to float64) r3.Vec {
	span := to - from
	lambda := q / (r * math.Abs(span))
	// ∫ -(sin θ, cos θ) dθ, scaled by kλ/r
	scale := field.K * lambda / r * math.Copysign(1, span)
	return r3.Vec{
		X: scale * (math.Cos(to) - math.Cos(from)),
		Y: -scale * (math.Sin(to) - math.Sin(from)),
	}
}

// SineArcCenter is E at the centre of an arc of radius r with density
// λ(θ) = α·sin θ between angles from and to (U = x̂, V = ŷ).
func SineArcCenter(alpha, r, from, to float64) r3.Vec {
	scale := field.K * alpha / r * math.Copysign(1, to-from)
	sinSq := (to-from)/2 - (math.Sin(2*to)-math.Sin(2*from))/4
	sinCos := (math.Sin(to)*math.Sin(to) - math.Sin(from)*math.Sin(from)) / 2
	return r3.Vec{
		X: -scale * sinSq,
		Y: -scale * sinCos,
	}
}
