package motion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// State is the test charge's position and velocity.
type State struct {
	Pos r3.Vec
	Vel r3.Vec
}

// Valid reports whether every component is finite.
func (s State) Valid() bool {
	for _, v := range [...]float64{s.Pos.X, s.Pos.Y, s.Pos.Z, s.Vel.X, s.Vel.Y, s.Vel.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Accel returns the acceleration at a position.
type Accel func(pos r3.Vec) r3.Vec

type Stepper interface {
	Step(s State, accel Accel, dt float64) State
}

// Euler is the semi-implicit Euler step: velocity first, then position with
// the new velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(s State, accel Accel, dt float64) State {
	v := r3.Add(s.Vel, r3.Scale(dt, accel(s.Pos)))
	return State{
		Pos: r3.Add(s.Pos, r3.Scale(dt, v)),
		Vel: v,
	}
}

// Verlet is velocity Verlet.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(s State, accel Accel, dt float64) State {
	a0 := accel(s.Pos)
	pos := r3.Add(s.Pos, r3.Add(r3.Scale(dt, s.Vel), r3.Scale(0.5*dt*dt, a0)))
	a1 := accel(pos)
	return State{
		Pos: pos,
		Vel: r3.Add(s.Vel, r3.Scale(0.5*dt, r3.Add(a0, a1))),
	}
}
