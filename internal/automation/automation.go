package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/experiment"
	"github.com/san-kum/fieldlab/internal/motion"
	"github.com/san-kum/fieldlab/internal/optim"
)

// Actions a suite step can perform.
const (
	ActionRun         = "run"
	ActionSweep       = "sweep"
	ActionConverge    = "converge"
	ActionMinSlices   = "minslices"
	ActionMotion      = "motion"
	ActionEquilibrium = "equilibrium"
)

// Suite is a scripted sequence of scenario runs.
type Suite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step names its scenario by preset, file or inline definition, in that
// order of precedence.
type Step struct {
	Preset    string           `yaml:"preset,omitempty"`
	File      string           `yaml:"file,omitempty"`
	Scenario  *config.Scenario `yaml:"scenario,omitempty"`
	Action    string           `yaml:"action"`
	Slices    int              `yaml:"slices,omitempty"`
	Tolerance float64          `yaml:"tolerance,omitempty"`
}

// StepResult holds whichever output the step's action produced.
type StepResult struct {
	Name        string
	Action      string
	Report      *experiment.Report
	Convergence *experiment.Convergence
	MinSlices   *optim.MinSlicesResult
	Motion      *motion.Result
	Scan        *motion.ScanResult
}

// LoadSuite loads a suite from a YAML file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSuite(data)
}

func ParseSuite(data []byte) (*Suite, error) {
	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}
	if len(suite.Steps) == 0 {
		return nil, fmt.Errorf("suite %q has no steps", suite.Name)
	}
	return &suite, nil
}

// RunSuite executes every step in order, writing one progress line per step
// to progress when it is non-nil. It stops at the first failing step.
func RunSuite(ctx context.Context, suite *Suite, registry *experiment.Registry, progress io.Writer) ([]StepResult, error) {
	results := make([]StepResult, 0, len(suite.Steps))

	for i, step := range suite.Steps {
		sc, err := step.scenario()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Slices > 0 {
			sc = sc.WithSlices(step.Slices)
		}
		action := step.Action
		if action == "" {
			action = ActionRun
		}

		if progress != nil {
			fmt.Fprintf(progress, "Running step %d/%d: %s %s\n", i+1, len(suite.Steps), action, sc.Name)
		}

		res, err := runStep(ctx, sc, registry, action, step.Tolerance)
		if err != nil {
			return results, fmt.Errorf("step %d %s: %w", i+1, action, err)
		}
		results = append(results, res)
	}

	return results, nil
}

func (s Step) scenario() (*config.Scenario, error) {
	switch {
	case s.Preset != "":
		sc := config.GetPreset(s.Preset)
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		return sc, nil
	case s.File != "":
		return config.Load(s.File)
	case s.Scenario != nil:
		sc := s.Scenario.Clone()
		sc.ApplyDefaults()
		return sc, sc.Validate()
	default:
		return nil, fmt.Errorf("step needs a preset, file or scenario")
	}
}

func runStep(ctx context.Context, sc *config.Scenario, reg *experiment.Registry, action string, tolerance float64) (StepResult, error) {
	res := StepResult{Name: sc.Name, Action: action}

	switch action {
	case ActionRun, ActionSweep:
		exp, err := experiment.New(sc, reg)
		if err != nil {
			return res, err
		}
		if action == ActionRun {
			res.Report, err = exp.Run(ctx)
		} else {
			res.Report, err = exp.Sweep(ctx)
		}
		return res, err
	case ActionConverge:
		poi, err := FirstPOI(sc)
		if err != nil {
			return res, err
		}
		res.Convergence, err = experiment.Converge(ctx, sc, reg, poi, nil)
		return res, err
	case ActionMinSlices:
		poi, err := FirstPOI(sc)
		if err != nil {
			return res, err
		}
		if tolerance <= 0 {
			tolerance = sc.MinSlices.Tolerance
		}
		res.MinSlices, err = optim.MinSlices(ctx, sc, reg, poi, tolerance, sc.MinSlices.Start, sc.MinSlices.Max)
		return res, err
	case ActionMotion:
		var err error
		res.Motion, err = experiment.Simulate(ctx, sc, reg)
		return res, err
	case ActionEquilibrium:
		var err error
		res.Scan, err = experiment.Equilibrium(ctx, sc, reg)
		return res, err
	default:
		return res, fmt.Errorf("unknown action: %s", action)
	}
}

// FirstPOI is the POI used by single-point studies.
func FirstPOI(sc *config.Scenario) (r3.Vec, error) {
	pts := sc.Points()
	if len(pts) == 0 {
		return r3.Vec{}, fmt.Errorf("scenario %s has no POI", sc.Name)
	}
	return pts[0], nil
}
