package motion

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/field"
)

const bisectIterations = 100

// Scan walks Count evenly spaced positions from Start to End. A sample whose
// net force magnitude is at most Tolerance counts as reaching equilibrium.
type Scan struct {
	Start     r3.Vec
	End       r3.Vec
	Count     int
	Tolerance float64
}

type Sample struct {
	Pos   r3.Vec
	Force r3.Vec
	// Along is the force component along the scan direction.
	Along     float64
	Magnitude float64
	Dropped   int
}

type ScanResult struct {
	Samples []Sample
	// Reached is the index of the first sample within tolerance, or -1.
	Reached int
	// Roots are refined zeros of the along-line force between samples.
	Roots []Sample
}

// ScanEquilibrium samples the force on charge q along the scan and refines
// each sign change of the along-line component by bisection. Sign changes
// caused by passing through a fixed charge are discarded.
func (env Environment) ScanEquilibrium(ctx context.Context, q float64, scan Scan) (*ScanResult, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	if scan.Count < 2 {
		return nil, fmt.Errorf("%w: scan needs at least 2 samples, got %d", ErrInvalidConfig, scan.Count)
	}
	dir := r3.Sub(scan.End, scan.Start)
	if r3.Norm(dir) == 0 {
		return nil, fmt.Errorf("%w: scan start and end coincide", ErrInvalidConfig)
	}
	dir = r3.Unit(dir)

	sample := func(pos r3.Vec) Sample {
		f, dropped := env.Force(pos, q)
		return Sample{Pos: pos, Force: f, Along: r3.Dot(f, dir), Magnitude: r3.Norm(f), Dropped: dropped}
	}

	res := &ScanResult{Reached: -1}
	for i, pos := range field.LinePoints(scan.Start, scan.End, scan.Count) {
		if i%256 == 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			default:
			}
		}
		s := sample(pos)
		res.Samples = append(res.Samples, s)
		if res.Reached < 0 && s.Dropped == 0 && s.Magnitude <= scan.Tolerance {
			res.Reached = i
		}
	}

	for i := 1; i < len(res.Samples); i++ {
		a, b := res.Samples[i-1], res.Samples[i]
		if a.Dropped > 0 || b.Dropped > 0 || a.Along*b.Along >= 0 {
			continue
		}
		root := bisect(sample, a, b)
		limit := scan.Tolerance
		if limit <= 0 {
			limit = 1e-6 * math.Min(a.Magnitude, b.Magnitude)
		}
		if root.Dropped == 0 && root.Magnitude <= limit {
			res.Roots = append(res.Roots, root)
		}
	}

	return res, nil
}

func bisect(sample func(r3.Vec) Sample, lo, hi Sample) Sample {
	for i := 0; i < bisectIterations; i++ {
		mid := sample(r3.Scale(0.5, r3.Add(lo.Pos, hi.Pos)))
		if mid.Along == 0 || mid.Pos == lo.Pos || mid.Pos == hi.Pos {
			return mid
		}
		if math.Signbit(mid.Along) == math.Signbit(lo.Along) {
			lo = mid
		} else {
			hi = mid
		}
	}
	if math.Abs(lo.Along) < math.Abs(hi.Along) {
		return lo
	}
	return hi
}
