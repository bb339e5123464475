package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/motion"
)

// Environment builds the fixed charges a moving test charge sees.
func Environment(sc *config.Scenario, reg *Registry, capture float64) (motion.Environment, error) {
	src, err := reg.BuildSource(sc.Source)
	if err != nil {
		return motion.Environment{}, err
	}
	charges, ok := src.(field.PointCharges)
	if !ok {
		return motion.Environment{}, fmt.Errorf("scenario %s: moving charges need a point-charge source, got %s", sc.Name, sc.Source.Kind)
	}
	if _, err := charges.Elements(); err != nil {
		return motion.Environment{}, err
	}
	return motion.Environment{Charges: charges, CaptureRadius: capture}, nil
}

// Simulate runs the scenario's moving test charge with the default metrics
// attached.
func Simulate(ctx context.Context, sc *config.Scenario, reg *Registry, observers ...motion.Observer) (*motion.Result, error) {
	m := sc.Motion
	if m == nil {
		return nil, fmt.Errorf("scenario %s has no motion block", sc.Name)
	}
	env, err := Environment(sc, reg, m.CaptureRadius)
	if err != nil {
		return nil, err
	}
	stepper, err := reg.GetStepper(m.Stepper)
	if err != nil {
		return nil, err
	}

	sim := motion.New(env, motion.Charge{Q: m.Charge, Mass: m.Mass}, stepper)
	sim.AddMetric(motion.NewEnergyDrift(env, m.Charge, m.Mass))
	sim.AddMetric(motion.NewClosestApproach(env))
	sim.AddMetric(motion.NewMaxSpeed())
	for _, o := range observers {
		sim.AddObserver(o)
	}

	x0 := motion.State{Pos: m.Position.R3(), Vel: m.Velocity.R3()}
	return sim.Run(ctx, x0, motion.Config{Dt: m.Dt, Steps: m.Steps})
}

// Equilibrium runs the scenario's line scan.
func Equilibrium(ctx context.Context, sc *config.Scenario, reg *Registry) (*motion.ScanResult, error) {
	s := sc.Scan
	if s == nil {
		return nil, fmt.Errorf("scenario %s has no scan block", sc.Name)
	}
	env, err := Environment(sc, reg, 0)
	if err != nil {
		return nil, err
	}
	return env.ScanEquilibrium(ctx, s.Charge, motion.Scan{
		Start:     s.Start.R3(),
		End:       s.End.R3(),
		Count:     s.Count,
		Tolerance: s.Tolerance,
	})
}
