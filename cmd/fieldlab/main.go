package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/automation"
	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/experiment"
	"github.com/san-kum/fieldlab/internal/motion"
	"github.com/san-kum/fieldlab/internal/optim"
	"github.com/san-kum/fieldlab/internal/report"
	"github.com/san-kum/fieldlab/internal/tui"
)

var (
	configFile string
	slices     int
	slicesList string
	poi        string
	workers    int
	format     string
	jsonOut    bool
	plot       bool
	tolerance  float64
	maxSlices  int
	dt         float64
	steps      int
	stepper    string
	live       bool
	frameRate  int
	iterations int
	outFile    string
	svgFile    string
)

// main registers the fieldlab commands and runs the explorer when no
// subcommand is given.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "fieldlab",
		Short: "discretized field and force superposition lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(experiment.NewRegistry(), nil)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scenario file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "evaluate a scenario at its POIs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().IntVar(&slices, "slices", 0, "override the slice count")
	runCmd.Flags().StringVar(&poi, "poi", "", "evaluate only at x,y,z")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "write JSON")
	runCmd.Flags().StringVar(&format, "format", "table", "output format (table, csv, json)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "sweep goroutines")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "evaluate the scenario's line and grid",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&slices, "slices", 0, "override the slice count")
	sweepCmd.Flags().StringVar(&format, "format", "table", "output format (table, csv, json)")
	sweepCmd.Flags().BoolVar(&plot, "plot", false, "plot |F| along the sweep")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "sweep goroutines")

	convergeCmd := &cobra.Command{
		Use:   "converge [preset]",
		Short: "percent difference against the reference for several slice counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConverge,
	}
	convergeCmd.Flags().StringVar(&slicesList, "slices", "", "comma separated slice counts (default from scenario)")
	convergeCmd.Flags().StringVar(&poi, "poi", "", "POI as x,y,z (default first scenario POI)")
	convergeCmd.Flags().StringVar(&format, "format", "table", "output format (table, csv, json)")
	convergeCmd.Flags().BoolVar(&plot, "plot", false, "plot log10 |percent diff|")

	minSlicesCmd := &cobra.Command{
		Use:   "minslices [preset]",
		Short: "smallest slice count within a percent tolerance",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMinSlices,
	}
	minSlicesCmd.Flags().Float64Var(&tolerance, "tolerance", 0, "percent tolerance (default from scenario)")
	minSlicesCmd.Flags().IntVar(&maxSlices, "max", 0, "largest slice count to try")
	minSlicesCmd.Flags().StringVar(&poi, "poi", "", "POI as x,y,z (default first scenario POI)")

	potentialCmd := &cobra.Command{
		Use:   "potential [preset]",
		Short: "electrostatic potential at every POI",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPotential,
	}
	potentialCmd.Flags().IntVar(&slices, "slices", 0, "override the slice count")
	potentialCmd.Flags().StringVar(&format, "format", "table", "output format (table, csv, json)")

	motionCmd := &cobra.Command{
		Use:   "motion [preset]",
		Short: "move the scenario's test charge through the fixed charges",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMotion,
	}
	motionCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	motionCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	motionCmd.Flags().StringVar(&stepper, "stepper", "euler", "stepper (euler, verlet)")
	motionCmd.Flags().BoolVar(&live, "live", false, "draw the trajectory while it runs")
	motionCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --live")
	motionCmd.Flags().StringVar(&format, "format", "table", "output format (table, csv, json)")
	motionCmd.Flags().BoolVar(&plot, "plot", false, "plot displacement over time")
	motionCmd.Flags().StringVar(&svgFile, "svg", "", "also write the xy trajectory to this SVG file")

	equilibriumCmd := &cobra.Command{
		Use:   "equilibrium [preset]",
		Short: "scan a line for zero net force on the test charge",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEquilibrium,
	}
	equilibriumCmd.Flags().BoolVar(&plot, "plot", false, "plot the along-line force")

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run a YAML suite of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "time single-POI evaluation for several slice counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&slicesList, "slices", "", "comma separated slice counts (default from scenario)")
	benchCmd.Flags().IntVar(&iterations, "iterations", 1000, "evaluations per slice count")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	exportCmd := &cobra.Command{
		Use:   "export [preset]",
		Short: "write a scenario as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportScenario,
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "file to write (required)")
	_ = exportCmd.MarkFlagRequired("out")

	exploreCmd := &cobra.Command{
		Use:   "explore [preset]",
		Short: "interactive field explorer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && configFile == "" {
				return tui.Run(experiment.NewRegistry(), nil)
			}
			sc, err := loadScenario(args)
			if err != nil {
				return err
			}
			return tui.Run(experiment.NewRegistry(), sc)
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, convergeCmd, minSlicesCmd, potentialCmd, motionCmd,
		equilibriumCmd, batchCmd, benchCmd, presetsCmd, exportCmd, exploreCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadScenario resolves the config file, the named preset or the default
// scenario, in that order.
func loadScenario(args []string) (*config.Scenario, error) {
	if configFile != "" {
		sc, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return sc, nil
	}
	if len(args) == 0 {
		return config.DefaultConfig(), nil
	}
	sc := config.GetPreset(args[0])
	if sc == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	return sc, nil
}

// applyOverrides applies flags the user set explicitly.
func applyOverrides(cmd *cobra.Command, sc *config.Scenario) (*config.Scenario, error) {
	flags := cmd.Flags()
	if flags.Lookup("slices") != nil && flags.Changed("slices") && slicesList == "" {
		if slices <= 0 {
			return nil, fmt.Errorf("--slices must be positive, got %d", slices)
		}
		sc = sc.WithSlices(slices)
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		sc.Workers = workers
	}
	if flags.Lookup("poi") != nil && flags.Changed("poi") {
		p, err := parseVec(poi)
		if err != nil {
			return nil, err
		}
		sc.POIs = []config.Vec{config.FromR3(p)}
		sc.Line = nil
		sc.Grid = nil
	}
	return sc, nil
}

func parseVec(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("bad coordinate %q: %w", p, err)
		}
		v[i] = f
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

func parseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad slice count %q: %w", p, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("slice counts must be positive, got %d", n)
		}
		out = append(out, n)
	}
	return out, nil
}

func outputFormat() (report.Format, error) {
	if jsonOut {
		return report.FormatJSON, nil
	}
	return report.ParseFormat(format)
}

func prepare(cmd *cobra.Command, args []string) (*config.Scenario, report.Format, error) {
	sc, err := loadScenario(args)
	if err != nil {
		return nil, "", err
	}
	sc, err = applyOverrides(cmd, sc)
	if err != nil {
		return nil, "", err
	}
	f, err := outputFormat()
	if err != nil {
		return nil, "", err
	}
	return sc, f, nil
}

// studyPOI is --poi when given, else the scenario's first POI.
func studyPOI(sc *config.Scenario) (r3.Vec, error) {
	if poi != "" {
		return parseVec(poi)
	}
	return automation.FirstPOI(sc)
}

func writeReport(rep *experiment.Report, f report.Format) error {
	switch f {
	case report.FormatJSON:
		return report.WriteJSON(os.Stdout, report.NewReportData(rep))
	case report.FormatCSV:
		return report.WriteReportCSV(os.Stdout, rep)
	default:
		return report.WriteReport(os.Stdout, rep)
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, f, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(sc, experiment.NewRegistry())
	if err != nil {
		return err
	}
	rep, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	return writeReport(rep, f)
}

func runSweep(cmd *cobra.Command, args []string) error {
	sc, f, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(sc, experiment.NewRegistry())
	if err != nil {
		return err
	}

	start := time.Now()
	rep, err := exp.Sweep(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := writeReport(rep, f); err != nil {
		return err
	}
	if f == report.FormatTable {
		fmt.Printf("\n%d points in %v\n", len(rep.Points), elapsed)
		if plot {
			fmt.Println()
			fmt.Println(report.PlotMagnitudes(rep))
		}
	}
	return nil
}

func runConverge(cmd *cobra.Command, args []string) error {
	sc, f, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	ns, err := parseInts(slicesList)
	if err != nil {
		return err
	}
	p, err := studyPOI(sc)
	if err != nil {
		return err
	}

	conv, err := experiment.Converge(cmd.Context(), sc, experiment.NewRegistry(), p, ns)
	if err != nil {
		return err
	}

	switch f {
	case report.FormatJSON:
		return report.WriteJSON(os.Stdout, report.NewConvergenceData(conv))
	case report.FormatCSV:
		return report.WriteConvergenceCSV(os.Stdout, conv)
	}
	if err := report.WriteConvergence(os.Stdout, conv); err != nil {
		return err
	}
	if plot {
		if g := report.PlotConvergence(conv); g != "" {
			fmt.Println()
			fmt.Println(g)
		}
	}
	return nil
}

func runMinSlices(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	p, err := studyPOI(sc)
	if err != nil {
		return err
	}
	tol := sc.MinSlices.Tolerance
	if cmd.Flags().Changed("tolerance") {
		tol = tolerance
	}
	limit := sc.MinSlices.Max
	if cmd.Flags().Changed("max") {
		limit = maxSlices
	}

	res, err := optim.MinSlices(cmd.Context(), sc, experiment.NewRegistry(), p, tol, sc.MinSlices.Start, limit)
	if res != nil {
		if werr := report.WriteMinSlices(os.Stdout, sc.Name, res); werr != nil {
			return werr
		}
	}
	return err
}

func runPotential(cmd *cobra.Command, args []string) error {
	sc, f, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(sc, experiment.NewRegistry())
	if err != nil {
		return err
	}
	pots, err := exp.Potentials(cmd.Context(), sc.Points())
	if err != nil {
		return err
	}

	switch f {
	case report.FormatJSON:
		return report.WriteJSON(os.Stdout, report.NewPotentialRows(pots))
	case report.FormatCSV:
		return report.WritePotentialsCSV(os.Stdout, pots)
	default:
		return report.WritePotentials(os.Stdout, sc.Name, pots)
	}
}

func runMotion(cmd *cobra.Command, args []string) error {
	sc, f, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	if sc.Motion == nil {
		return fmt.Errorf("scenario %s has no motion block", sc.Name)
	}
	if cmd.Flags().Changed("dt") {
		sc.Motion.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		sc.Motion.Steps = steps
	}
	if cmd.Flags().Changed("stepper") {
		sc.Motion.Stepper = stepper
	}

	reg := experiment.NewRegistry()
	env, err := experiment.Environment(sc, reg, sc.Motion.CaptureRadius)
	if err != nil {
		return err
	}
	var observers []motion.Observer
	var renderer *tui.LiveRenderer
	if live {
		renderer = tui.NewLiveRenderer(os.Stdout, sc.Name, env, sc.Motion.Position.R3(), frameRate)
		renderer.Start()
		observers = append(observers, renderer)
	}

	res, err := experiment.Simulate(cmd.Context(), sc, reg, observers...)
	if renderer != nil {
		renderer.Stop()
		fmt.Println()
	}
	if err != nil {
		return err
	}

	if svgFile != "" {
		if err := writeSVG(svgFile, res, env); err != nil {
			return err
		}
	}

	switch f {
	case report.FormatJSON:
		return report.WriteJSON(os.Stdout, report.NewTrajectoryData(sc.Name, res))
	case report.FormatCSV:
		return report.WriteTrajectoryCSV(os.Stdout, res)
	}
	if err := report.WriteMotion(os.Stdout, sc.Name, res); err != nil {
		return err
	}
	if plot {
		fmt.Println()
		fmt.Println(report.PlotTrajectory(res))
	}
	return nil
}

func writeSVG(path string, res *motion.Result, env motion.Environment) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return report.WriteTrajectorySVG(file, res, env.Charges)
}

func runEquilibrium(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	res, err := experiment.Equilibrium(cmd.Context(), sc, experiment.NewRegistry())
	if err != nil {
		return err
	}
	if err := report.WriteScan(os.Stdout, sc.Name, res); err != nil {
		return err
	}
	if plot {
		fmt.Println()
		fmt.Println(report.PlotScan(res))
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	suite, err := automation.LoadSuite(args[0])
	if err != nil {
		return err
	}
	if suite.Name != "" {
		fmt.Println(report.Title.Render(suite.Name))
	}

	results, err := automation.RunSuite(cmd.Context(), suite, experiment.NewRegistry(), os.Stderr)
	if len(results) > 0 {
		if werr := report.WriteSuite(os.Stdout, results); werr != nil {
			return werr
		}
	}
	return err
}

func runBench(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	ns, err := parseInts(slicesList)
	if err != nil {
		return err
	}
	if len(ns) == 0 {
		ns = sc.Convergence
	}
	if sc.Source.Kind == config.PointChargesKind {
		ns = []int{0}
	}
	p, err := automation.FirstPOI(sc)
	if err != nil {
		return err
	}
	if iterations <= 0 {
		return fmt.Errorf("--iterations must be positive, got %d", iterations)
	}

	reg := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tELEMENTS\tBUILD\tPER EVAL\tEVALS/SEC")

	for _, n := range ns {
		run := sc
		if n > 0 {
			run = sc.WithSlices(n)
		}
		start := time.Now()
		exp, err := experiment.New(run, reg)
		if err != nil {
			return err
		}
		build := time.Since(start)

		sum := exp.Sum()
		start = time.Now()
		for i := 0; i < iterations; i++ {
			sum.At(p)
		}
		per := time.Since(start) / time.Duration(iterations)
		rate := 0.0
		if per > 0 {
			rate = float64(time.Second) / float64(per)
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%v\t%.0f\n", n, sum.Len(), build, per, rate)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSOURCE\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		sc := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, sc.Source.Kind, sc.Description)
	}
	return w.Flush()
}

func exportScenario(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	if err := config.Save(outFile, sc); err != nil {
		return err
	}
	fmt.Printf("wrote %s to %s\n", sc.Name, outFile)
	return nil
}
