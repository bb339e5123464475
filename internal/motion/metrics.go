package motion

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type Metric interface {
	Name() string
	Observe(s State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s State, force r3.Vec, t float64)
}

// EnergyDrift tracks the largest relative change of kinetic plus potential
// energy seen since the first observation.
type EnergyDrift struct {
	env      Environment
	charge   float64
	mass     float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(env Environment, charge, mass float64) *EnergyDrift {
	return &EnergyDrift{env: env, charge: charge, mass: mass}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

// Energy is ½mv² + U at s.
func (e *EnergyDrift) Energy(s State) float64 {
	v := r3.Norm(s.Vel)
	return 0.5*e.mass*v*v + e.env.PotentialEnergy(s.Pos, e.charge)
}

func (e *EnergyDrift) Observe(s State, t float64) {
	energy := e.Energy(s)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		e.maxDrift = math.Max(e.maxDrift, math.Abs(energy-e.initial)/math.Abs(e.initial))
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// ClosestApproach is the smallest distance from the test charge to any fixed
// charge.
type ClosestApproach struct {
	env Environment
	min float64
}

func NewClosestApproach(env Environment) *ClosestApproach {
	return &ClosestApproach{env: env, min: math.Inf(1)}
}

func (c *ClosestApproach) Name() string { return "closest_approach" }

func (c *ClosestApproach) Observe(s State, t float64) {
	for _, q := range c.env.Charges {
		c.min = math.Min(c.min, r3.Norm(r3.Sub(s.Pos, q.Pos)))
	}
}

func (c *ClosestApproach) Value() float64 { return c.min }

func (c *ClosestApproach) Reset() { c.min = math.Inf(1) }

// MaxSpeed is the largest speed observed.
type MaxSpeed struct {
	max float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{}
}

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(s State, t float64) {
	m.max = math.Max(m.max, r3.Norm(s.Vel))
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }
