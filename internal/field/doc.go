// Package field computes electric and magnetic fields by discretized superposition.
//
// A continuous source (rod, arc, ring, wire) or a set of point charges is split
// into [Element] values, and each element's inverse-square contribution is summed
// at one or more points of interest:
//
//   - [PointCharges]: discrete charges, Coulomb's law
//   - [ChargedCurve]: a [Geometry] carrying a linear charge [Density], Coulomb's law
//   - [CurrentCurve]: a [Geometry] carrying a steady current, the Biot-Savart law
//
// # Example
//
//	wire := field.CurrentCurve{
//		Geometry: field.Line{Direction: r3.Vec{Y: 1}, From: -10, To: 10},
//		Current:  1.0,
//		Slices:   200,
//	}
//	sum, _ := field.NewSum(wire)
//	res := sum.At(r3.Vec{X: 5})
//
// # Singular points
//
// An element whose position coincides with the point of interest is skipped and
// counted in [Result.Skipped]; the sum never produces NaN or Inf for it.
//
// A [Sum] is immutable after construction and safe for concurrent use.
package field
