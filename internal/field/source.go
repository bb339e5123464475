package field

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Law selects the pairwise kernel applied to each element.
type Law int

const (
	Coulomb Law = iota
	BiotSavart
)

func (l Law) String() string {
	switch l {
	case Coulomb:
		return "coulomb"
	case BiotSavart:
		return "biot-savart"
	default:
		return fmt.Sprintf("law(%d)", int(l))
	}
}

// Element is one slice of a discretized source.
type Element struct {
	Pos r3.Vec
	// Charge is dq for electrostatic sources.
	Charge float64
	// Length is the directed slice vector ds.
	Length r3.Vec
	// Current is I for current-carrying sources.
	Current float64
}

// Source is anything that can be split into elements.
type Source interface {
	Elements() ([]Element, error)
	Law() Law
}

// PointCharge is a charge Q at Pos.
type PointCharge struct {
	Pos r3.Vec
	Q   float64
}

// PointCharges is a discrete charge distribution; each charge is one element.
type PointCharges []PointCharge

func (pc PointCharges) Law() Law { return Coulomb }

func (pc PointCharges) Elements() ([]Element, error) {
	if len(pc) == 0 {
		return nil, invalid("charges", "must contain at least one charge")
	}
	elems := make([]Element, len(pc))
	for i, c := range pc {
		if !finite(c.Q) || !finite(c.Pos.X) || !finite(c.Pos.Y) || !finite(c.Pos.Z) {
			return nil, invalid(fmt.Sprintf("charges[%d]", i), "must be finite")
		}
		elems[i] = Element{Pos: c.Pos, Charge: c.Q}
	}
	return elems, nil
}

// ChargedCurve is a geometry carrying a linear charge density.
type ChargedCurve struct {
	Geometry Geometry
	Density  Density
	Slices   int
}

func (c ChargedCurve) Law() Law { return Coulomb }

func (c ChargedCurve) Elements() ([]Element, error) {
	if c.Density == nil {
		return nil, invalid("density", "is not defined")
	}
	elems, err := discretize(c.Geometry, c.Slices)
	if err != nil {
		return nil, err
	}
	for i := range elems {
		p := param(c.Geometry, c.Slices, i)
		lambda := c.Density(p)
		if !finite(lambda) {
			return nil, invalid("density", "is undefined at p=%g", p)
		}
		elems[i].Charge = lambda * r3.Norm(elems[i].Length)
	}
	return elems, nil
}

// CurrentCurve is a geometry carrying a steady current. Positive current flows
// in the direction of increasing parameter.
type CurrentCurve struct {
	Geometry Geometry
	Current  float64
	Slices   int
}

func (c CurrentCurve) Law() Law { return BiotSavart }

func (c CurrentCurve) Elements() ([]Element, error) {
	if !finite(c.Current) {
		return nil, invalid("current", "must be finite, got %g", c.Current)
	}
	elems, err := discretize(c.Geometry, c.Slices)
	if err != nil {
		return nil, err
	}
	for i := range elems {
		elems[i].Current = c.Current
	}
	return elems, nil
}

// Composite superposes several sources obeying the same law, such as the two
// coils of a magnetic bottle.
type Composite []Source

// Law is the law of the first non-nil part, or Coulomb when there is none.
func (c Composite) Law() Law {
	for _, src := range c {
		if src != nil {
			return src.Law()
		}
	}
	return Coulomb
}

func (c Composite) Elements() ([]Element, error) {
	if len(c) == 0 {
		return nil, invalid("sources", "must contain at least one source")
	}
	var all []Element
	for i, src := range c {
		if src == nil {
			return nil, invalid(fmt.Sprintf("sources[%d]", i), "is not defined")
		}
		if src.Law() != c.Law() {
			return nil, invalid(fmt.Sprintf("sources[%d]", i), "mixes %s with %s", src.Law(), c.Law())
		}
		elems, err := src.Elements()
		if err != nil {
			return nil, err
		}
		all = append(all, elems...)
	}
	return all, nil
}

// discretize places n elements at the midpoints of n equal parameter slices.
func discretize(g Geometry, n int) ([]Element, error) {
	if g == nil {
		return nil, invalid("geometry", "is not defined")
	}
	if n <= 0 {
		return nil, invalid("slices", "must be positive, got %d", n)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	from, to := g.Domain()
	dp := (to - from) / float64(n)

	elems := make([]Element, n)
	for i := range elems {
		p := param(g, n, i)
		elems[i] = Element{
			Pos:    g.Position(p),
			Length: r3.Scale(dp, g.Tangent(p)),
		}
	}
	return elems, nil
}

func param(g Geometry, n, i int) float64 {
	from, to := g.Domain()
	dp := (to - from) / float64(n)
	return from + (float64(i)+0.5)*dp
}

// TotalCharge returns Σ dq over elems.
func TotalCharge(elems []Element) float64 {
	dq := make([]float64, len(elems))
	for i, e := range elems {
		dq[i] = e.Charge
	}
	return floats.Sum(dq)
}
