package analytic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Comparison reports a numeric magnitude against a closed-form one.
type Comparison struct {
	Numeric     float64 `json:"numeric"`
	Analytic    float64 `json:"analytic"`
	PercentDiff float64 `json:"percent_diff"`
	// Computable is false when the analytic magnitude is zero or not finite.
	Computable bool `json:"computable"`
}

// Compare returns (|numeric| - |analytic|) / |analytic| · 100.
func Compare(numeric, analytic float64) Comparison {
	c := Comparison{Numeric: math.Abs(numeric), Analytic: math.Abs(analytic)}
	if c.Analytic == 0 || math.IsInf(c.Analytic, 0) || math.IsNaN(c.Analytic) {
		c.PercentDiff = math.NaN()
		return c
	}
	c.PercentDiff = (c.Numeric - c.Analytic) / c.Analytic * 100
	c.Computable = true
	return c
}

// CompareVec compares vector magnitudes.
func CompareVec(numeric, analytic r3.Vec) Comparison {
	return Compare(r3.Norm(numeric), r3.Norm(analytic))
}

// AbsPercentDiff is |PercentDiff|, or +Inf when not computable.
func (c Comparison) AbsPercentDiff() float64 {
	if !c.Computable {
		return math.Inf(1)
	}
	return math.Abs(c.PercentDiff)
}

func (c Comparison) String() string {
	if !c.Computable {
		if c.Analytic == 0 {
			return "not computable (analytic magnitude is 0)"
		}
		return fmt.Sprintf("not computable (analytic magnitude is %g)", c.Analytic)
	}
	return fmt.Sprintf("%.5f%%", c.PercentDiff)
}
