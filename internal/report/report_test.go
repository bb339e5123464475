package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/analytic"
	"github.com/san-kum/fieldlab/internal/automation"
	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/experiment"
	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/motion"
	"github.com/san-kum/fieldlab/internal/optim"
)

func sampleReport() *experiment.Report {
	good := analytic.Compare(1.01, 1.0)
	undefined := analytic.Compare(2.0, math.Inf(1))
	force := r3.Vec{X: 0.5}
	return &experiment.Report{
		Scenario:    "sample",
		Law:         field.Coulomb,
		Elements:    10,
		TotalCharge: 1e-9,
		Skipped:     1,
		Saturated:   1,
		Points: []experiment.Point{
			{
				Result:     field.Result{POI: r3.Vec{Y: 1}, Field: r3.Vec{Y: 1.01}, Magnitude: 1.01},
				Display:    r3.Vec{Y: 1.01},
				Comparison: &good,
				Force:      &force,
			},
			{
				Result:     field.Result{POI: r3.Vec{}, Field: r3.Vec{X: 2}, Magnitude: 2, Skipped: 1},
				Display:    r3.Vec{X: 1},
				Saturated:  true,
				Comparison: &undefined,
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"csv", FormatCSV, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleReport()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"sample",
		"total charge:",
		"FIELD (N/C)",
		"FORCE (N)",
		"skipped 1, saturated",
		"not computable",
		"1.00000%",
		"1 coincident element(s) skipped",
		"1 field(s) saturated",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportMagnetic(t *testing.T) {
	rep := sampleReport()
	rep.Law = field.BiotSavart
	for i := range rep.Points {
		rep.Points[i].Force = nil
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, rep); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "FIELD (T)") {
		t.Errorf("expected tesla header:\n%s", out)
	}
	if strings.Contains(out, "total charge") || strings.Contains(out, "FORCE") {
		t.Errorf("magnetic report should have no charge or force:\n%s", out)
	}
}

func TestReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewReportData(sampleReport())); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var got ReportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Law != "coulomb" || got.Unit != "N/C" || len(got.Points) != 2 {
		t.Fatalf("unexpected header: %+v", got)
	}

	first := got.Points[0]
	if first.PercentDiff == nil || math.Abs(*first.PercentDiff-1) > 1e-9 {
		t.Errorf("expected 1%% diff, got %v", first.PercentDiff)
	}
	if first.Force == nil || first.Force[0] != 0.5 {
		t.Errorf("expected force, got %v", first.Force)
	}

	second := got.Points[1]
	if second.Reference != nil || second.PercentDiff != nil {
		t.Errorf("infinite reference should be omitted, got %v %v", second.Reference, second.PercentDiff)
	}
	if !second.Saturated || second.Display[0] != 1 || second.Field[0] != 2 {
		t.Errorf("saturation not carried: %+v", second)
	}
}

func TestReportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, sampleReport()); err != nil {
		t.Fatalf("csv failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv parse failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if len(records[0]) != 11 || records[0][6] != "magnitude" {
		t.Errorf("unexpected header: %v", records[0])
	}
	for _, r := range records[1:] {
		if len(r) != len(records[0]) {
			t.Errorf("row width %d, want %d", len(r), len(records[0]))
		}
	}
	if records[2][7] != "" || records[2][8] != "" {
		t.Errorf("expected empty reference cells, got %q %q", records[2][7], records[2][8])
	}
	if records[2][10] != "true" {
		t.Errorf("expected saturated row, got %q", records[2][10])
	}
}

func TestConvergenceOutputs(t *testing.T) {
	reg := experiment.NewRegistry()
	sc := config.GetPreset("finite_wire")
	conv, err := experiment.Converge(context.Background(), sc, reg, sc.POIs[0].R3(), []int{10, 100, 1000})
	if err != nil {
		t.Fatalf("converge failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteConvergence(&buf, conv); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "error non-increasing with N") {
		t.Errorf("expected monotonic notice:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteConvergenceCSV(&buf, conv); err != nil {
		t.Fatalf("csv failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv parse failed: %v", err)
	}
	if len(records) != 4 || records[3][0] != "1000" {
		t.Errorf("unexpected convergence csv: %v", records)
	}

	data := NewConvergenceData(conv)
	if !data.Monotonic || len(data.Steps) != 3 {
		t.Errorf("unexpected convergence data: %+v", data)
	}

	if PlotConvergence(conv) == "" {
		t.Error("expected a convergence plot")
	}
}

func TestMotionOutputs(t *testing.T) {
	reg := experiment.NewRegistry()
	sc := config.GetPreset("pain")
	sc.Motion.Steps = 50

	res, err := experiment.Simulate(context.Background(), sc, reg)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteMotion(&buf, sc.Name, res); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	for _, want := range []string{"final position:", "energy_drift:", "max_speed:"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("motion output missing %q", want)
		}
	}

	buf.Reset()
	if err := WriteTrajectoryCSV(&buf, res); err != nil {
		t.Fatalf("csv failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv parse failed: %v", err)
	}
	if len(records) != 52 {
		t.Errorf("expected header and 51 states, got %d", len(records))
	}

	data := NewTrajectoryData(sc.Name, res)
	if len(data.Positions) != 51 || data.StepsTaken != 50 {
		t.Errorf("unexpected trajectory data: %d positions, %d steps", len(data.Positions), data.StepsTaken)
	}
	if err := WriteJSON(&bytes.Buffer{}, data); err != nil {
		t.Errorf("trajectory should encode: %v", err)
	}
}

func TestWriteScan(t *testing.T) {
	res := &motion.ScanResult{
		Samples: []motion.Sample{{Pos: r3.Vec{X: 1}, Along: 1}, {Pos: r3.Vec{X: 2}, Along: -1}},
		Reached: -1,
		Roots:   []motion.Sample{{Pos: r3.Vec{X: 1.5}}},
	}

	var buf bytes.Buffer
	if err := WriteScan(&buf, "scan", res); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), FormatVec(r3.Vec{X: 1.5})) {
		t.Errorf("expected root position:\n%s", buf.String())
	}
	if PlotScan(res) == "" {
		t.Error("expected a scan plot")
	}
}

func TestWriteMinSlices(t *testing.T) {
	step := experiment.ConvergenceStep{Slices: 12, Comparison: analytic.Compare(1.001, 1)}
	res := &optim.MinSlicesResult{Tolerance: 1, Best: step, Tried: []experiment.ConvergenceStep{step}, Found: true}

	var buf bytes.Buffer
	if err := WriteMinSlices(&buf, "rod", res); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "minimum slices:") || !strings.Contains(buf.String(), "12") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestPotentialsCSV(t *testing.T) {
	pots := []field.Potential{
		{POI: r3.Vec{X: 1}, Value: 8.99},
		{POI: r3.Vec{}, Value: 0, Skipped: 1},
	}

	var buf bytes.Buffer
	if err := WritePotentialsCSV(&buf, pots); err != nil {
		t.Fatalf("csv failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv parse failed: %v", err)
	}
	if len(records) != 3 || records[2][4] != "1" {
		t.Errorf("unexpected potentials csv: %v", records)
	}
	if rows := NewPotentialRows(pots); rows[0].Value != 8.99 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestPlotDropsNonFinite(t *testing.T) {
	if got := Plot([]float64{math.Inf(1), math.NaN(), 1}, "x"); got != "" {
		t.Errorf("expected empty plot for one finite sample, got %q", got)
	}
	if got := Plot([]float64{1, math.Inf(1), 2, 3}, "caption"); !strings.Contains(got, "caption") {
		t.Errorf("expected caption in plot:\n%s", got)
	}
}

func TestWriteSuite(t *testing.T) {
	rep := sampleReport()
	results := []automation.StepResult{
		{Name: "sample", Action: automation.ActionRun, Report: rep},
		{Name: "scan", Action: automation.ActionEquilibrium, Scan: &motion.ScanResult{Reached: -1}},
	}

	var buf bytes.Buffer
	if err := WriteSuite(&buf, results); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "worst diff 1.00000%") || !strings.Contains(out, "0 root(s)") {
		t.Errorf("unexpected suite summary:\n%s", out)
	}
}

func TestTrajectorySVG(t *testing.T) {
	res := &motion.Result{States: []motion.State{
		{Pos: r3.Vec{X: 1}},
		{Pos: r3.Vec{X: 0.5, Y: 0.1}},
		{Pos: r3.Vec{X: 0.2, Y: 0.2}},
	}}
	charges := field.PointCharges{{Pos: r3.Vec{Y: 1}, Q: 1}, {Pos: r3.Vec{Y: -1}, Q: -1}}

	var buf bytes.Buffer
	if err := WriteTrajectorySVG(&buf, res, charges); err != nil {
		t.Fatalf("svg failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>") {
		t.Errorf("not an svg document:\n%s", out)
	}
	if strings.Count(out, " L") != 2 {
		t.Errorf("expected 2 path segments, got %d", strings.Count(out, " L"))
	}
	if strings.Count(out, "<circle") != 2 || !strings.Contains(out, "#4488ff") {
		t.Errorf("expected one dot per charge:\n%s", out)
	}

	short := &motion.Result{States: res.States[:1]}
	if err := WriteTrajectorySVG(&bytes.Buffer{}, short, charges); err == nil {
		t.Error("expected error for a single state")
	}
}
