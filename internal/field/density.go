package field

import "math"

// Density is a linear charge density λ(p) over a geometry's parameter.
type Density func(p float64) float64

// Uniform returns a constant density.
func Uniform(lambda float64) Density {
	return func(float64) float64 { return lambda }
}

// UniformTotal spreads total charge q evenly over g.
func UniformTotal(q float64, g Geometry) Density {
	ext := g.Extent()
	if ext == 0 {
		return Uniform(math.NaN())
	}
	return Uniform(q / ext)
}

// Power returns λ(p) = α·pⁿ.
func Power(alpha, n float64) Density {
	return func(p float64) float64 { return alpha * math.Pow(p, n) }
}

// Sine returns λ(θ) = α·sin θ.
func Sine(alpha float64) Density {
	return func(theta float64) float64 { return alpha * math.Sin(theta) }
}
