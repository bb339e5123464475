package experiment

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/analytic"
	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/field"
)

// ErrNoReference is returned by operations that need an analytic reference
// when the scenario names none.
var ErrNoReference = errors.New("experiment: scenario has no analytic reference")

// Experiment is a scenario with its source discretized and its reference
// resolved.
type Experiment struct {
	scenario  *config.Scenario
	source    field.Source
	sum       *field.Sum
	reference ReferenceFunc
}

// Point is the outcome at one POI.
type Point struct {
	Result field.Result
	// Display is Result.Field capped at the scenario saturation level.
	Display   r3.Vec
	Saturated bool
	// Comparison is nil when the scenario has no reference.
	Comparison *analytic.Comparison
	// Force on the scenario test charge, nil when there is none.
	Force *r3.Vec
}

type Report struct {
	Scenario    string
	Law         field.Law
	Elements    int
	TotalCharge float64
	Points      []Point
	Skipped     int
	Saturated   int
}

func New(sc *config.Scenario, reg *Registry) (*Experiment, error) {
	src, err := reg.BuildSource(sc.Source)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	sum, err := field.NewSum(src)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	ref, err := reg.GetReference(sc.Reference, sc.Source, src)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return &Experiment{scenario: sc, source: src, sum: sum, reference: ref}, nil
}

func (e *Experiment) Scenario() *config.Scenario { return e.scenario }
func (e *Experiment) Source() field.Source        { return e.source }
func (e *Experiment) Sum() *field.Sum             { return e.sum }
func (e *Experiment) Reference() ReferenceFunc    { return e.reference }

// Run evaluates every POI of the scenario.
func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	return e.Evaluate(ctx, e.scenario.Points())
}

// Sweep evaluates only the scenario's line and grid.
func (e *Experiment) Sweep(ctx context.Context) (*Report, error) {
	pts := e.scenario.SweepPoints()
	if len(pts) == 0 {
		return nil, fmt.Errorf("scenario %s has no line or grid to sweep", e.scenario.Name)
	}
	return e.Evaluate(ctx, pts)
}

func (e *Experiment) Evaluate(ctx context.Context, pois []r3.Vec) (*Report, error) {
	results, err := e.sum.Sweep(ctx, pois, e.scenario.Workers)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Scenario: e.scenario.Name,
		Law:      e.sum.Law(),
		Elements: e.sum.Len(),
		Points:   make([]Point, len(results)),
	}
	if rep.Law == field.Coulomb {
		rep.TotalCharge = field.TotalCharge(e.sum.Elements())
	}

	for i, res := range results {
		p := Point{Result: res}
		p.Display, p.Saturated = field.Saturate(res.Field, e.scenario.Saturation)
		if p.Saturated {
			rep.Saturated++
		}
		rep.Skipped += res.Skipped

		if e.reference != nil {
			want, err := e.reference(res.POI)
			if err != nil {
				return nil, fmt.Errorf("reference at %v: %w", res.POI, err)
			}
			cmp := analytic.Compare(res.Magnitude, want)
			p.Comparison = &cmp
		}

		if e.scenario.TestCharge != 0 && rep.Law == field.Coulomb {
			f := r3.Scale(e.scenario.TestCharge, res.Field)
			p.Force = &f
		}
		rep.Points[i] = p
	}
	return rep, nil
}

// Potentials evaluates the scalar potential at each POI.
func (e *Experiment) Potentials(ctx context.Context, pois []r3.Vec) ([]field.Potential, error) {
	out := make([]field.Potential, 0, len(pois))
	for i, poi := range pois {
		if i%1024 == 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			default:
			}
		}
		v, err := e.sum.PotentialAt(poi)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
