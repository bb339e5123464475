package motion

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Charge is the moving test charge.
type Charge struct {
	Q    float64
	Mass float64
}

type Config struct {
	Dt    float64
	Steps int
}

type Result struct {
	States     []State
	Forces     []r3.Vec
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	// Captured counts recorded states where at least one pair was dropped.
	Captured    int
	EnergyDrift float64
}

type Simulator struct {
	env       Environment
	charge    Charge
	stepper   Stepper
	metrics   []Metric
	observers []Observer
}

func New(env Environment, charge Charge, stepper Stepper) *Simulator {
	return &Simulator{
		env:       env,
		charge:    charge,
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Energy is the test charge's kinetic plus potential energy.
func (s *Simulator) Energy(st State) float64 {
	return NewEnergyDrift(s.env, s.charge.Q, s.charge.Mass).Energy(st)
}

func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	result := &Result{
		States:  make([]State, 0, cfg.Steps+1),
		Forces:  make([]r3.Vec, 0, cfg.Steps+1),
		Times:   make([]float64, 0, cfg.Steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	accel := func(pos r3.Vec) r3.Vec {
		f, _ := s.env.Force(pos, s.charge.Q)
		return r3.Scale(1/s.charge.Mass, f)
	}

	x := x0
	t := 0.0
	s.record(result, x, t)
	initialEnergy := s.Energy(x)

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}

		next := s.stepper.Step(x, accel, cfg.Dt)
		if !next.Valid() {
			return result, &SimulationError{Step: i, Time: t, State: x, Wrapped: ErrDiverged}
		}

		x = next
		t += cfg.Dt
		result.StepsTaken++
		s.record(result, x, t)
	}

	for _, m := range s.metrics {
		m.Observe(x, t)
		result.Metrics[m.Name()] = m.Value()
	}

	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(s.Energy(x)-initialEnergy) / math.Abs(initialEnergy)
	}

	return result, nil
}

func (s *Simulator) record(result *Result, x State, t float64) {
	f, dropped := s.env.Force(x.Pos, s.charge.Q)
	if dropped > 0 {
		result.Captured++
	}
	for _, obs := range s.observers {
		obs.OnStep(x, f, t)
	}
	result.States = append(result.States, x)
	result.Forces = append(result.Forces, f)
	result.Times = append(result.Times, t)
}

func (s *Simulator) validate(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if s.charge.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidConfig, s.charge.Mass)
	}
	if s.stepper == nil {
		return fmt.Errorf("%w: no stepper", ErrInvalidConfig)
	}
	if err := s.env.validate(); err != nil {
		return fmt.Errorf("%w: need at least one fixed charge and a non-negative capture radius", err)
	}
	if !x0.Valid() {
		return fmt.Errorf("%w: initial state is not finite", ErrInvalidConfig)
	}
	return nil
}
