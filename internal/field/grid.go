package field

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axis is Count evenly spaced values from From to To inclusive.
type Axis struct {
	From  float64 `yaml:"from" json:"from"`
	To    float64 `yaml:"to" json:"to"`
	Count int     `yaml:"count" json:"count"`
}

// Fixed is a single-valued axis.
func Fixed(v float64) Axis { return Axis{From: v, To: v, Count: 1} }

func (a Axis) Values() []float64 {
	switch {
	case a.Count <= 0:
		return nil
	case a.Count == 1:
		return []float64{a.From}
	}
	return floats.Span(make([]float64, a.Count), a.From, a.To)
}

// Grid is the Cartesian product of three axes.
type Grid struct {
	X Axis `yaml:"x" json:"x"`
	Y Axis `yaml:"y" json:"y"`
	Z Axis `yaml:"z" json:"z"`
}

// Len is the number of points Points returns.
func (g Grid) Len() int {
	if g.X.Count <= 0 || g.Y.Count <= 0 || g.Z.Count <= 0 {
		return 0
	}
	return g.X.Count * g.Y.Count * g.Z.Count
}

func (g Grid) Validate() error {
	if g.Len() == 0 {
		return invalid("grid", "every axis needs a positive count")
	}
	return nil
}

// Points lists grid points with x varying slowest and z fastest.
func (g Grid) Points() []r3.Vec {
	pts := make([]r3.Vec, 0, g.Len())
	for _, x := range g.X.Values() {
		for _, y := range g.Y.Values() {
			for _, z := range g.Z.Values() {
				pts = append(pts, r3.Vec{X: x, Y: y, Z: z})
			}
		}
	}
	return pts
}

// LinePoints returns count points evenly spaced from start to end inclusive.
func LinePoints(start, end r3.Vec, count int) []r3.Vec {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []r3.Vec{start}
	}
	ts := floats.Span(make([]float64, count), 0, 1)
	pts := make([]r3.Vec, count)
	d := r3.Sub(end, start)
	for i, t := range ts {
		pts[i] = r3.Add(start, r3.Scale(t, d))
	}
	return pts
}
