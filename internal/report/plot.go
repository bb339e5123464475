package report

import (
	"math"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/experiment"
	"github.com/san-kum/fieldlab/internal/motion"
)

// Plot renders data at the CLI's standard size. Non-finite samples are
// dropped; fewer than two remaining samples yield "".
func Plot(data []float64, caption string) string {
	clean := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}
	if len(clean) < 2 {
		return ""
	}
	return asciigraph.Plot(clean,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// PlotMagnitudes plots |F| in POI order.
func PlotMagnitudes(rep *experiment.Report) string {
	data := make([]float64, len(rep.Points))
	for i, p := range rep.Points {
		data[i] = p.Result.Magnitude
	}
	return Plot(data, "|F| ("+Unit(rep.Law)+") along the sweep")
}

// PlotConvergence plots log10 |percent diff| against step index.
func PlotConvergence(conv *experiment.Convergence) string {
	data := make([]float64, len(conv.Steps))
	for i, s := range conv.Steps {
		data[i] = math.Log10(s.Comparison.AbsPercentDiff())
	}
	return Plot(data, "log10 |percent diff| vs N")
}

// PlotTrajectory plots the test charge's distance from its start.
func PlotTrajectory(res *motion.Result) string {
	if len(res.States) == 0 {
		return ""
	}
	start := res.States[0].Pos
	data := make([]float64, len(res.States))
	for i, s := range res.States {
		data[i] = r3.Norm(r3.Sub(s.Pos, start))
	}
	return Plot(data, "displacement (m) vs step")
}

// PlotScan plots the along-line force over the scan.
func PlotScan(res *motion.ScanResult) string {
	data := make([]float64, len(res.Samples))
	for i, s := range res.Samples {
		data[i] = s.Along
	}
	return Plot(data, "net force along scan (N)")
}
