package motion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/field"
)

// Environment is a set of fixed charges acting on a test charge. Pairs closer
// than CaptureRadius contribute nothing, as do coincident pairs.
type Environment struct {
	Charges       field.PointCharges
	CaptureRadius float64
}

// Force returns the net Coulomb force on charge q at pos and how many pairs
// were dropped.
func (env Environment) Force(pos r3.Vec, q float64) (r3.Vec, int) {
	target := field.PointCharge{Pos: pos, Q: q}
	var total r3.Vec
	dropped := 0
	for _, c := range env.Charges {
		if env.captured(c, pos) {
			dropped++
			continue
		}
		f, ok := field.PairForce(c, target)
		if !ok {
			dropped++
			continue
		}
		total = r3.Add(total, f)
	}
	return total, dropped
}

// PotentialEnergy is Σ k·q·qᵢ/rᵢ over the pairs Force keeps.
func (env Environment) PotentialEnergy(pos r3.Vec, q float64) float64 {
	u := 0.0
	for _, c := range env.Charges {
		if env.captured(c, pos) {
			continue
		}
		d := r3.Norm(r3.Sub(pos, c.Pos))
		if d == 0 {
			continue
		}
		u += field.K * q * c.Q / d
	}
	return u
}

func (env Environment) captured(c field.PointCharge, pos r3.Vec) bool {
	return env.CaptureRadius > 0 && r3.Norm(r3.Sub(pos, c.Pos)) <= env.CaptureRadius
}

func (env Environment) validate() error {
	if len(env.Charges) == 0 {
		return ErrInvalidConfig
	}
	if env.CaptureRadius < 0 || math.IsNaN(env.CaptureRadius) {
		return ErrInvalidConfig
	}
	return nil
}
