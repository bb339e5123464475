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

// ErrNotDiscretized is returned for slice studies on point-charge sources,
// whose element count is fixed.
var ErrNotDiscretized = errors.New("experiment: source has no slice count to vary")

// monotonicSlack absorbs round-off when checking that errors do not grow.
const monotonicSlack = 1e-9

type ConvergenceStep struct {
	Slices     int
	Result     field.Result
	Comparison analytic.Comparison
}

type Convergence struct {
	Scenario string
	POI      r3.Vec
	Steps    []ConvergenceStep
}

// Monotonic reports whether |percent diff| never grows from one step to the
// next.
func (c *Convergence) Monotonic() bool {
	for i := 1; i < len(c.Steps); i++ {
		if c.Steps[i].Comparison.AbsPercentDiff() > c.Steps[i-1].Comparison.AbsPercentDiff()+monotonicSlack {
			return false
		}
	}
	return true
}

// Converge evaluates the scenario at poi once per slice count.
func Converge(ctx context.Context, sc *config.Scenario, reg *Registry, poi r3.Vec, slices []int) (*Convergence, error) {
	if sc.Source.Kind == config.PointChargesKind {
		return nil, ErrNotDiscretized
	}
	if len(slices) == 0 {
		slices = sc.Convergence
	}

	conv := &Convergence{Scenario: sc.Name, POI: poi}
	for _, n := range slices {
		select {
		case <-ctx.Done():
			return conv, ctx.Err()
		default:
		}

		step, err := EvaluateAt(sc.WithSlices(n), reg, poi)
		if err != nil {
			return nil, fmt.Errorf("slices %d: %w", n, err)
		}
		conv.Steps = append(conv.Steps, step)
	}
	return conv, nil
}

// EvaluateAt builds the scenario and compares its field at poi with the
// reference.
func EvaluateAt(sc *config.Scenario, reg *Registry, poi r3.Vec) (ConvergenceStep, error) {
	exp, err := New(sc, reg)
	if err != nil {
		return ConvergenceStep{}, err
	}
	if exp.Reference() == nil {
		return ConvergenceStep{}, ErrNoReference
	}
	res := exp.Sum().At(poi)
	want, err := exp.Reference()(poi)
	if err != nil {
		return ConvergenceStep{}, err
	}
	return ConvergenceStep{
		Slices:     sc.Source.SlicesOrZero(),
		Result:     res,
		Comparison: analytic.Compare(res.Magnitude, want),
	}, nil
}
