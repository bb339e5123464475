package motion

import "errors"

var (
	// ErrDiverged indicates the test charge state became NaN or Inf.
	ErrDiverged = errors.New("motion: state diverged (NaN or Inf detected)")

	// ErrInvalidConfig indicates unusable step, mass or source settings.
	ErrInvalidConfig = errors.New("motion: invalid configuration")
)

// SimulationError wraps an error with the step at which it occurred.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
