package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/experiment"
	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/motion"
)

// Format selects how a command writes its results.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s (table, csv, json)", s)
	}
}

type PointRow struct {
	POI       [3]float64 `json:"poi"`
	Field     [3]float64 `json:"field"`
	Display   [3]float64 `json:"display"`
	Magnitude float64    `json:"magnitude"`
	Skipped   int        `json:"skipped"`
	Saturated bool       `json:"saturated"`
	// Reference and PercentDiff are omitted when there is nothing finite to
	// report.
	Reference   *float64    `json:"reference,omitempty"`
	PercentDiff *float64    `json:"percent_diff,omitempty"`
	Force       *[3]float64 `json:"force,omitempty"`
}

type ReportData struct {
	Scenario    string     `json:"scenario"`
	Law         string     `json:"law"`
	Unit        string     `json:"unit"`
	Elements    int        `json:"elements"`
	TotalCharge float64    `json:"total_charge"`
	Skipped     int        `json:"skipped"`
	Saturated   int        `json:"saturated"`
	Points      []PointRow `json:"points"`
}

type ConvergenceRow struct {
	Slices      int      `json:"slices"`
	Numeric     float64  `json:"numeric"`
	Analytic    *float64 `json:"analytic,omitempty"`
	PercentDiff *float64 `json:"percent_diff,omitempty"`
}

type ConvergenceData struct {
	Scenario  string           `json:"scenario"`
	POI       [3]float64       `json:"poi"`
	Monotonic bool             `json:"monotonic"`
	Steps     []ConvergenceRow `json:"steps"`
}

type TrajectoryData struct {
	Scenario   string             `json:"scenario"`
	StepsTaken int                `json:"steps_taken"`
	Captured   int                `json:"captured"`
	Times      []float64          `json:"times"`
	Positions  [][3]float64       `json:"positions"`
	Velocities [][3]float64       `json:"velocities"`
	Metrics    map[string]float64 `json:"metrics"`
}

type PotentialRow struct {
	POI     [3]float64 `json:"poi"`
	Value   float64    `json:"value"`
	Skipped int        `json:"skipped"`
}

func arr(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// finite returns nil for values encoding/json cannot represent.
func finite(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

func NewReportData(rep *experiment.Report) ReportData {
	data := ReportData{
		Scenario:    rep.Scenario,
		Law:         rep.Law.String(),
		Unit:        Unit(rep.Law),
		Elements:    rep.Elements,
		TotalCharge: rep.TotalCharge,
		Skipped:     rep.Skipped,
		Saturated:   rep.Saturated,
		Points:      make([]PointRow, len(rep.Points)),
	}
	for i, p := range rep.Points {
		row := PointRow{
			POI:       arr(p.Result.POI),
			Field:     arr(p.Result.Field),
			Display:   arr(p.Display),
			Magnitude: p.Result.Magnitude,
			Skipped:   p.Result.Skipped,
			Saturated: p.Saturated,
		}
		if c := p.Comparison; c != nil {
			row.Reference = finite(c.Analytic)
			if c.Computable {
				row.PercentDiff = finite(c.PercentDiff)
			}
		}
		if p.Force != nil {
			f := arr(*p.Force)
			row.Force = &f
		}
		data.Points[i] = row
	}
	return data
}

func NewConvergenceData(conv *experiment.Convergence) ConvergenceData {
	data := ConvergenceData{
		Scenario:  conv.Scenario,
		POI:       arr(conv.POI),
		Monotonic: conv.Monotonic(),
		Steps:     make([]ConvergenceRow, len(conv.Steps)),
	}
	for i, s := range conv.Steps {
		data.Steps[i] = ConvergenceRow{
			Slices:      s.Slices,
			Numeric:     s.Comparison.Numeric,
			Analytic:    finite(s.Comparison.Analytic),
			PercentDiff: finite(s.Comparison.PercentDiff),
		}
	}
	return data
}

func NewTrajectoryData(name string, res *motion.Result) TrajectoryData {
	data := TrajectoryData{
		Scenario:   name,
		StepsTaken: res.StepsTaken,
		Captured:   res.Captured,
		Times:      res.Times,
		Positions:  make([][3]float64, len(res.States)),
		Velocities: make([][3]float64, len(res.States)),
		Metrics:    make(map[string]float64, len(res.Metrics)),
	}
	for i, s := range res.States {
		data.Positions[i] = arr(s.Pos)
		data.Velocities[i] = arr(s.Vel)
	}
	for k, v := range res.Metrics {
		if finite(v) != nil {
			data.Metrics[k] = v
		}
	}
	return data
}

func NewPotentialRows(pots []field.Potential) []PotentialRow {
	rows := make([]PotentialRow, len(pots))
	for i, p := range pots {
		rows[i] = PotentialRow{POI: arr(p.POI), Value: p.Value, Skipped: p.Skipped}
	}
	return rows
}

// WriteJSON encodes v indented.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ftoa(x float64) string { return strconv.FormatFloat(x, 'e', 9, 64) }

func optional(x *float64) string {
	if x == nil {
		return ""
	}
	return ftoa(*x)
}

func writeRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteReportCSV writes one row per POI. Empty reference and percent_diff
// cells mean there was no comparable reference.
func WriteReportCSV(w io.Writer, rep *experiment.Report) error {
	data := NewReportData(rep)
	rows := make([][]string, len(data.Points))
	for i, p := range data.Points {
		rows[i] = []string{
			ftoa(p.POI[0]), ftoa(p.POI[1]), ftoa(p.POI[2]),
			ftoa(p.Field[0]), ftoa(p.Field[1]), ftoa(p.Field[2]),
			ftoa(p.Magnitude),
			optional(p.Reference),
			optional(p.PercentDiff),
			strconv.Itoa(p.Skipped),
			strconv.FormatBool(p.Saturated),
		}
	}
	return writeRows(w, []string{"x", "y", "z", "fx", "fy", "fz", "magnitude", "reference", "percent_diff", "skipped", "saturated"}, rows)
}

func WriteConvergenceCSV(w io.Writer, conv *experiment.Convergence) error {
	data := NewConvergenceData(conv)
	rows := make([][]string, len(data.Steps))
	for i, s := range data.Steps {
		rows[i] = []string{strconv.Itoa(s.Slices), ftoa(s.Numeric), optional(s.Analytic), optional(s.PercentDiff)}
	}
	return writeRows(w, []string{"slices", "numeric", "analytic", "percent_diff"}, rows)
}

func WritePotentialsCSV(w io.Writer, pots []field.Potential) error {
	rows := make([][]string, len(pots))
	for i, p := range pots {
		rows[i] = []string{ftoa(p.POI.X), ftoa(p.POI.Y), ftoa(p.POI.Z), ftoa(p.Value), strconv.Itoa(p.Skipped)}
	}
	return writeRows(w, []string{"x", "y", "z", "potential", "skipped"}, rows)
}

func WriteTrajectoryCSV(w io.Writer, res *motion.Result) error {
	rows := make([][]string, len(res.States))
	for i, s := range res.States {
		f := res.Forces[i]
		rows[i] = []string{
			strconv.FormatFloat(res.Times[i], 'f', 6, 64),
			ftoa(s.Pos.X), ftoa(s.Pos.Y), ftoa(s.Pos.Z),
			ftoa(s.Vel.X), ftoa(s.Vel.Y), ftoa(s.Vel.Z),
			ftoa(f.X), ftoa(f.Y), ftoa(f.Z),
		}
	}
	return writeRows(w, []string{"time", "x", "y", "z", "vx", "vy", "vz", "fx", "fy", "fz"}, rows)
}
