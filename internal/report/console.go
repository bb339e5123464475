package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/analytic"
	"github.com/san-kum/fieldlab/internal/automation"
	"github.com/san-kum/fieldlab/internal/experiment"
	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/motion"
	"github.com/san-kum/fieldlab/internal/optim"
)

// Unit is the SI unit of the field a law produces.
func Unit(law field.Law) string {
	if law == field.BiotSavart {
		return "T"
	}
	return "N/C"
}

func FormatVec(v r3.Vec) string {
	return fmt.Sprintf("<%.4e, %.4e, %.4e>", v.X, v.Y, v.Z)
}

func formatDiff(c *analytic.Comparison) string {
	if c == nil {
		return Subtle.Render("-")
	}
	if !c.Computable {
		return Subtle.Render(c.String())
	}
	return diffStyle(c.AbsPercentDiff()).Render(c.String())
}

func formatReference(c *analytic.Comparison) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("%.6e", c.Analytic)
}

// WriteReport prints one row per POI followed by skip and saturation notices.
func WriteReport(w io.Writer, rep *experiment.Report) error {
	unit := Unit(rep.Law)
	fmt.Fprintf(w, "%s %s\n", Title.Render(rep.Scenario),
		Subtle.Render(fmt.Sprintf("(%s, %d elements)", rep.Law, rep.Elements)))
	if rep.Law == field.Coulomb {
		fmt.Fprintf(w, "%s %s\n", Label.Render("total charge:"), Value.Render(fmt.Sprintf("%.6e C", rep.TotalCharge)))
	}
	fmt.Fprintln(w)

	withForce := false
	for _, p := range rep.Points {
		if p.Force != nil {
			withForce = true
			break
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"POI", "FIELD (" + unit + ")", "|F|", "REFERENCE"}
	if withForce {
		header = append(header, "FORCE (N)")
	}
	header = append(header, "NOTE", "DIFF")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, p := range rep.Points {
		cols := []string{
			FormatVec(p.Result.POI),
			FormatVec(p.Display),
			fmt.Sprintf("%.6e", p.Result.Magnitude),
			formatReference(p.Comparison),
		}
		if withForce {
			if p.Force != nil {
				cols = append(cols, FormatVec(*p.Force))
			} else {
				cols = append(cols, "-")
			}
		}
		cols = append(cols, pointNote(p), formatDiff(p.Comparison))
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if rep.Skipped > 0 {
		fmt.Fprintln(w, Warn.Render(fmt.Sprintf("%d coincident element(s) skipped", rep.Skipped)))
	}
	if rep.Saturated > 0 {
		fmt.Fprintln(w, Warn.Render(fmt.Sprintf("%d field(s) saturated for display; |F| is unclamped", rep.Saturated)))
	}
	return nil
}

func pointNote(p experiment.Point) string {
	var notes []string
	if p.Result.Skipped > 0 {
		notes = append(notes, fmt.Sprintf("skipped %d", p.Result.Skipped))
	}
	if p.Saturated {
		notes = append(notes, "saturated")
	}
	if len(notes) == 0 {
		return "-"
	}
	return strings.Join(notes, ", ")
}

func WriteConvergence(w io.Writer, conv *experiment.Convergence) error {
	fmt.Fprintf(w, "%s %s\n\n", Title.Render(conv.Scenario), Subtle.Render("at "+FormatVec(conv.POI)))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "N\tNUMERIC\tANALYTIC\tDIFF")
	for _, s := range conv.Steps {
		fmt.Fprintf(tw, "%d\t%.6e\t%.6e\t%s\n", s.Slices, s.Comparison.Numeric, s.Comparison.Analytic, formatDiff(&s.Comparison))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if conv.Monotonic() {
		fmt.Fprintln(w, Good.Render("error non-increasing with N"))
	} else {
		fmt.Fprintln(w, Warn.Render("error grew between successive N"))
	}
	return nil
}

func WriteMinSlices(w io.Writer, name string, res *optim.MinSlicesResult) error {
	fmt.Fprintf(w, "%s %s\n", Title.Render(name), Subtle.Render(fmt.Sprintf("(tolerance %g%%)", res.Tolerance)))
	for _, s := range res.Tried {
		fmt.Fprintf(w, "  %s %-8d %s\n", Label.Render("N ="), s.Slices, formatDiff(&s.Comparison))
	}
	if res.Found {
		fmt.Fprintf(w, "%s %s\n", Label.Render("minimum slices:"), Value.Render(fmt.Sprintf("%d", res.Best.Slices)))
	} else {
		fmt.Fprintf(w, "%s %s\n", Bad.Render("not met; closest:"), Value.Render(fmt.Sprintf("N=%d at %s", res.Best.Slices, res.Best.Comparison)))
	}
	return nil
}

func WritePotentials(w io.Writer, name string, pots []field.Potential) error {
	fmt.Fprintf(w, "%s %s\n\n", Title.Render(name), Subtle.Render("potential (V)"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POI\tV\tNOTE")
	for _, p := range pots {
		note := "-"
		if p.Skipped > 0 {
			note = fmt.Sprintf("skipped %d", p.Skipped)
		}
		fmt.Fprintf(tw, "%s\t%.6e\t%s\n", FormatVec(p.POI), p.Value, note)
	}
	return tw.Flush()
}

// WriteMotion prints the final state and the metrics in name order.
func WriteMotion(w io.Writer, name string, res *motion.Result) error {
	fmt.Fprintf(w, "%s %s\n", Title.Render(name), Subtle.Render(fmt.Sprintf("(%d steps)", res.StepsTaken)))
	if n := len(res.States); n > 0 {
		last := res.States[n-1]
		fmt.Fprintf(w, "%s %s\n", Label.Render("final position:"), Value.Render(FormatVec(last.Pos)))
		fmt.Fprintf(w, "%s %s\n", Label.Render("final velocity:"), Value.Render(FormatVec(last.Vel)))
		fmt.Fprintf(w, "%s %s\n", Label.Render("elapsed:"), Value.Render(fmt.Sprintf("%.4f s", res.Times[n-1])))
	}
	if res.Captured > 0 {
		fmt.Fprintln(w, Warn.Render(fmt.Sprintf("%d state(s) inside the capture radius", res.Captured)))
	}

	names := make([]string, 0, len(res.Metrics))
	for k := range res.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nmetrics:")
	for _, k := range names {
		fmt.Fprintf(w, "  %s %.6e\n", Label.Render(k+":"), res.Metrics[k])
	}
	return nil
}

// WriteScan prints the refined roots and the first sample within tolerance.
func WriteScan(w io.Writer, name string, res *motion.ScanResult) error {
	fmt.Fprintf(w, "%s %s\n", Title.Render(name), Subtle.Render(fmt.Sprintf("(%d samples)", len(res.Samples))))
	if len(res.Roots) == 0 {
		fmt.Fprintln(w, Warn.Render("no sign change of the net force along the scan"))
	}
	for _, r := range res.Roots {
		fmt.Fprintf(w, "%s %s %s\n", Label.Render("equilibrium at"), Value.Render(FormatVec(r.Pos)),
			Subtle.Render(fmt.Sprintf("|F| = %.3e N", r.Magnitude)))
	}
	if res.Reached >= 0 {
		s := res.Samples[res.Reached]
		fmt.Fprintf(w, "%s %s\n", Label.Render("first sample within tolerance:"), Value.Render(FormatVec(s.Pos)))
	}
	return nil
}

// WriteSuite prints a one-line summary per suite step.
func WriteSuite(w io.Writer, results []automation.StepResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tSCENARIO\tACTION\tSUMMARY")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.Name, r.Action, summarize(r))
	}
	return tw.Flush()
}

func summarize(r automation.StepResult) string {
	switch {
	case r.Report != nil:
		worst := 0.0
		compared := 0
		for _, p := range r.Report.Points {
			if p.Comparison != nil && p.Comparison.Computable {
				worst = math.Max(worst, p.Comparison.AbsPercentDiff())
				compared++
			}
		}
		if compared == 0 {
			return fmt.Sprintf("%d point(s)", len(r.Report.Points))
		}
		return fmt.Sprintf("%d point(s), worst diff %.5f%%", len(r.Report.Points), worst)
	case r.Convergence != nil:
		steps := r.Convergence.Steps
		if len(steps) == 0 {
			return "no steps"
		}
		last := steps[len(steps)-1]
		return fmt.Sprintf("N=%d diff %s", last.Slices, last.Comparison)
	case r.MinSlices != nil:
		if r.MinSlices.Found {
			return fmt.Sprintf("minimum N=%d", r.MinSlices.Best.Slices)
		}
		return "tolerance not met"
	case r.Motion != nil:
		return fmt.Sprintf("%d steps, energy drift %.3e", r.Motion.StepsTaken, r.Motion.EnergyDrift)
	case r.Scan != nil:
		return fmt.Sprintf("%d root(s)", len(r.Scan.Roots))
	default:
		return "-"
	}
}
