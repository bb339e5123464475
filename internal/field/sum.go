package field

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNotElectrostatic is returned when an electrostatic quantity is requested
// from a current-carrying source.
var ErrNotElectrostatic = errors.New("field: source is not electrostatic")

// Result is the summed field at one point of interest.
type Result struct {
	POI       r3.Vec
	Field     r3.Vec
	Magnitude float64
	// Skipped counts elements dropped because they coincide with POI.
	Skipped int
}

// Sum holds a discretized source ready for evaluation.
type Sum struct {
	law      Law
	elements []Element
}

// NewSum discretizes src once.
func NewSum(src Source) (*Sum, error) {
	if src == nil {
		return nil, invalid("source", "is not defined")
	}
	elems, err := src.Elements()
	if err != nil {
		return nil, err
	}
	return &Sum{law: src.Law(), elements: elems}, nil
}

// Evaluate discretizes src and sums it at poi.
func Evaluate(src Source, poi r3.Vec) (Result, error) {
	s, err := NewSum(src)
	if err != nil {
		return Result{}, err
	}
	return s.At(poi), nil
}

func (s *Sum) Law() Law { return s.law }

func (s *Sum) Len() int { return len(s.elements) }

// Elements returns a copy of the discretized elements.
func (s *Sum) Elements() []Element {
	out := make([]Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// At sums every element's contribution at poi.
func (s *Sum) At(poi r3.Vec) Result {
	res := Result{POI: poi}
	for _, e := range s.elements {
		d, ok := contribution(s.law, e, poi)
		if !ok {
			res.Skipped++
			continue
		}
		res.Field = r3.Add(res.Field, d)
	}
	res.Magnitude = r3.Norm(res.Field)
	return res
}

// AtAll evaluates every POI in order.
func (s *Sum) AtAll(pois []r3.Vec) []Result {
	out := make([]Result, len(pois))
	for i, p := range pois {
		out[i] = s.At(p)
	}
	return out
}

// Sweep evaluates pois split across up to workers goroutines. Results keep the
// order of pois. A cancelled ctx stops the sweep and returns ctx.Err().
func (s *Sum) Sweep(ctx context.Context, pois []r3.Vec, workers int) ([]Result, error) {
	out := make([]Result, len(pois))
	parallelFor(len(pois), workers, sweepChunk, func(start, end int) {
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				return
			}
			out[i] = s.At(pois[i])
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Potential is the electrostatic potential at a POI.
type Potential struct {
	POI     r3.Vec
	Value   float64
	Skipped int
}

// PotentialAt returns Σ k·dq/|r| at poi using the same skip policy as At.
func (s *Sum) PotentialAt(poi r3.Vec) (Potential, error) {
	if s.law != Coulomb {
		return Potential{}, ErrNotElectrostatic
	}
	pot := Potential{POI: poi}
	for _, e := range s.elements {
		dist, ok := resolve(r3.Sub(poi, e.Pos))
		if !ok {
			pot.Skipped++
			continue
		}
		pot.Value += K * e.Charge / dist
	}
	return pot, nil
}

// contribution applies law to a single element. ok is false when the element
// sits on poi and must be skipped.
func contribution(law Law, e Element, poi r3.Vec) (r3.Vec, bool) {
	r := r3.Sub(poi, e.Pos)
	dist, ok := resolve(r)
	if !ok {
		return r3.Vec{}, false
	}
	inv3 := 1 / (dist * dist * dist)

	switch law {
	case BiotSavart:
		return r3.Scale(BiotSavartPrefactor*e.Current*inv3, r3.Cross(e.Length, r)), true
	default:
		return r3.Scale(K*e.Charge*inv3, r), true
	}
}

// resolve is the singular-point policy: a zero separation drops only this
// element from the sum.
func resolve(r r3.Vec) (float64, bool) {
	dist := r3.Norm(r)
	if dist == 0 {
		return 0, false
	}
	return dist, true
}
