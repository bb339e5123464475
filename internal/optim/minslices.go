package optim

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/experiment"
)

// ErrToleranceNotMet means no slice count up to the search limit reached the
// tolerance.
var ErrToleranceNotMet = errors.New("optim: tolerance not met within slice limit")

type MinSlicesResult struct {
	Tolerance float64
	// Best is the smallest passing step, or the closest one when none passed.
	Best  experiment.ConvergenceStep
	Tried []experiment.ConvergenceStep
	Found bool
}

// MinSlices doubles N from start until |percent diff| <= tolerance, then
// bisects between the last failing and first passing N.
func MinSlices(ctx context.Context, sc *config.Scenario, reg *experiment.Registry, poi r3.Vec, tolerance float64, start, limit int) (*MinSlicesResult, error) {
	if sc.Source.Kind == config.PointChargesKind {
		return nil, experiment.ErrNotDiscretized
	}
	if start <= 0 {
		start = 1
	}
	if limit < start {
		limit = start
	}

	res := &MinSlicesResult{Tolerance: tolerance}
	try := func(n int) (experiment.ConvergenceStep, bool, error) {
		select {
		case <-ctx.Done():
			return experiment.ConvergenceStep{}, false, ctx.Err()
		default:
		}
		step, err := experiment.EvaluateAt(sc.WithSlices(n), reg, poi)
		if err != nil {
			return experiment.ConvergenceStep{}, false, err
		}
		res.Tried = append(res.Tried, step)
		if len(res.Tried) == 1 || step.Comparison.AbsPercentDiff() < res.Best.Comparison.AbsPercentDiff() {
			res.Best = step
		}
		return step, step.Comparison.AbsPercentDiff() <= tolerance, nil
	}

	lo := 0
	hi := start
	var pass experiment.ConvergenceStep
	for {
		step, ok, err := try(hi)
		if err != nil {
			return res, err
		}
		if ok {
			pass = step
			break
		}
		if hi >= limit {
			return res, ErrToleranceNotMet
		}
		lo = hi
		hi *= 2
		if hi > limit {
			hi = limit
		}
	}

	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		step, ok, err := try(mid)
		if err != nil {
			return res, err
		}
		if ok {
			hi, pass = mid, step
		} else {
			lo = mid
		}
	}

	res.Best = pass
	res.Found = true
	return res, nil
}
