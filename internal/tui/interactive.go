package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/analytic"
	"github.com/san-kum/fieldlab/internal/config"
	"github.com/san-kum/fieldlab/internal/experiment"
	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/motion"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type state int

const (
	stateMenu state = iota
	stateExplore
	stateMotion
)

// stepsPerTick is how many motion steps one frame advances at speed 1.
const stepsPerTick = 10

type model struct {
	state   state
	cursor  int
	presets []string
	reg     *experiment.Registry

	scenario *config.Scenario
	exp      *experiment.Experiment
	slices   int
	poi      r3.Vec
	home     r3.Vec
	stepSize float64
	saturate bool
	result   field.Result
	cmp      *analytic.Comparison
	history  []float64
	err      error

	env        motion.Environment
	charge     motion.Charge
	stepper    motion.Stepper
	particle   motion.State
	force      r3.Vec
	dt         float64
	simTime    float64
	stepsTaken int
	run        int
	maxSteps   int
	paused     bool
	speed      float64
	trail      []r3.Vec
	frame      []r3.Vec

	width  int
	height int
}

// NewExplorer starts at the preset menu.
func NewExplorer(reg *experiment.Registry) *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		reg:     reg,
		speed:   1.0,
		history: make([]float64, 0, 60),
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return nil }

// tickMsg carries the run that armed it; ticks from an earlier run stop their
// chain instead of re-arming.
type tickMsg struct {
	run  int
	time time.Time
}

func tick(run int) tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg{run: run, time: t} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateMotion || msg.run != m.run {
			return m, nil
		}
		if !m.paused {
			steps := int(m.speed * stepsPerTick)
			if steps < 1 {
				steps = 1
			}
			for i := 0; i < steps && !m.paused; i++ {
				m.step()
			}
		}
		return m, tick(m.run)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateExplore:
		return m.exploreKey(msg)
	case stateMotion:
		return m.motionKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.open(config.GetPreset(m.presets[m.cursor]))
	}
	return m, nil
}

func (m model) exploreKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = stateMenu
		return m, tea.ClearScreen
	case "+", "=":
		if m.slices > 0 && m.slices < config.DefaultMaxSlices {
			m.slices *= 2
			m.build()
		}
	case "-", "_":
		if m.slices > 1 {
			m.slices /= 2
			m.build()
		}
	case "left", "h":
		m.move(r3.Vec{X: -m.stepSize})
	case "right", "l":
		m.move(r3.Vec{X: m.stepSize})
	case "up", "k":
		m.move(r3.Vec{Y: m.stepSize})
	case "down", "j":
		m.move(r3.Vec{Y: -m.stepSize})
	case "pgup":
		m.move(r3.Vec{Z: m.stepSize})
	case "pgdown":
		m.move(r3.Vec{Z: -m.stepSize})
	case "[":
		m.stepSize /= 2
	case "]":
		m.stepSize *= 2
	case "r":
		m.poi = m.home
		m.evaluate()
	case "s":
		m.saturate = !m.saturate
	case "m":
		if m.scenario.Motion != nil {
			m.startMotion()
			if m.err == nil {
				m.run++
				return m, tea.Batch(tea.ClearScreen, tick(m.run))
			}
		}
	}
	return m, nil
}

func (m model) motionKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = stateExplore
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		m.startMotion()
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = math.Min(m.speed*2, 16)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 0.25)
	case "0":
		m.speed = 1.0
	}
	return m, nil
}

// open switches to the explorer for sc.
func (m *model) open(sc *config.Scenario) {
	m.scenario = sc
	m.slices = sc.Source.SlicesOrZero()
	m.saturate = sc.Saturation > 0
	m.history = m.history[:0]
	m.poi = r3.Vec{}
	if pts := sc.Points(); len(pts) > 0 {
		m.poi = pts[0]
	}
	m.home = m.poi
	m.state = stateExplore
	m.build()
	m.stepSize = m.scale() / 20
}

// build rediscretizes the scenario at the current slice count.
func (m *model) build() {
	sc := m.scenario
	if m.slices > 0 {
		sc = sc.WithSlices(m.slices)
	}
	exp, err := experiment.New(sc, m.reg)
	if err != nil {
		m.err = err
		m.exp = nil
		return
	}
	m.exp = exp
	m.err = nil
	m.evaluate()
}

func (m *model) move(d r3.Vec) {
	m.poi = r3.Add(m.poi, d)
	m.evaluate()
}

func (m *model) evaluate() {
	if m.exp == nil {
		return
	}
	m.result = m.exp.Sum().At(m.poi)
	m.cmp = nil
	if ref := m.exp.Reference(); ref != nil {
		if want, err := ref(m.poi); err == nil {
			c := analytic.Compare(m.result.Magnitude, want)
			m.cmp = &c
		}
	}
	m.history = append(m.history, m.result.Magnitude)
	if len(m.history) > 60 {
		m.history = m.history[1:]
	}
}

// scale is the largest distance of any element or the POI from the origin.
func (m *model) scale() float64 {
	s := r3.Norm(m.poi)
	if m.exp != nil {
		for _, e := range m.exp.Sum().Elements() {
			s = math.Max(s, r3.Norm(e.Pos))
		}
	}
	if s == 0 {
		return 1
	}
	return s
}

func (m *model) startMotion() {
	mc := m.scenario.Motion
	env, err := experiment.Environment(m.scenario, m.reg, mc.CaptureRadius)
	if err != nil {
		m.err = err
		return
	}
	stepper, err := m.reg.GetStepper(mc.Stepper)
	if err != nil {
		m.err = err
		return
	}

	m.env = env
	m.stepper = stepper
	m.charge = motion.Charge{Q: mc.Charge, Mass: mc.Mass}
	m.particle = motion.State{Pos: mc.Position.R3(), Vel: mc.Velocity.R3()}
	m.force, _ = env.Force(m.particle.Pos, m.charge.Q)
	m.dt = mc.Dt
	m.maxSteps = mc.Steps
	m.simTime = 0
	m.stepsTaken = 0
	m.paused = false
	m.speed = 1.0
	m.trail = make([]r3.Vec, 0, 200)

	m.frame = []r3.Vec{m.particle.Pos}
	for _, c := range env.Charges {
		m.frame = append(m.frame, c.Pos)
	}
	m.err = nil
	m.state = stateMotion
}

func (m *model) step() {
	if m.stepsTaken >= m.maxSteps {
		m.paused = true
		return
	}
	accel := func(pos r3.Vec) r3.Vec {
		f, _ := m.env.Force(pos, m.charge.Q)
		return r3.Scale(1/m.charge.Mass, f)
	}
	next := m.stepper.Step(m.particle, accel, m.dt)
	if !next.Valid() {
		m.err = &motion.SimulationError{Step: m.stepsTaken, Time: m.simTime, State: m.particle, Wrapped: motion.ErrDiverged}
		m.paused = true
		return
	}
	m.particle = next
	m.simTime += m.dt
	m.stepsTaken++
	m.force, _ = m.env.Force(next.Pos, m.charge.Q)

	m.trail = append(m.trail, next.Pos)
	if len(m.trail) > 200 {
		m.trail = m.trail[1:]
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateExplore:
		return m.viewExplore()
	case stateMotion:
		return m.viewMotion()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("f i e l d l a b") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		desc := config.GetPreset(name).Description
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-18s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-18s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter explore   q quit") + "\n")

	return b.String()
}

func (m model) viewExplore() string {
	var b strings.Builder
	sc := m.scenario

	b.WriteString("\n   " + cyan.Render(sc.Name))
	if m.exp != nil {
		n := fmt.Sprintf("N=%d", m.exp.Sum().Len())
		b.WriteString("  " + dim.Render(m.exp.Sum().Law().String()) + "  " + magenta.Render(n))
	}
	b.WriteString("\n")
	if sc.Description != "" {
		b.WriteString("   " + dimmer.Render(sc.Description) + "\n")
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("   " + yellow.Render(m.err.Error()) + "\n")
		b.WriteString("\n" + dim.Render("   ±slices  esc back  q quit") + "\n")
		return b.String()
	}

	unit := "N/C"
	if m.exp != nil && m.exp.Sum().Law() == field.BiotSavart {
		unit = "T"
	}
	display, saturated := m.result.Field, false
	if m.saturate {
		display, saturated = field.Saturate(m.result.Field, sc.Saturation)
	}

	b.WriteString(fmt.Sprintf("   %s %s  %s\n", dim.Render("poi  "), white.Render(vec(m.poi)), dimmer.Render(fmt.Sprintf("step %.2e", m.stepSize))))
	b.WriteString(fmt.Sprintf("   %s %s %s\n", dim.Render("field"), white.Render(vec(display)), dim.Render(unit)))
	b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("|F|  "), white.Render(fmt.Sprintf("%.6e", m.result.Magnitude))))

	if m.cmp != nil {
		diff := m.cmp.String()
		style := green
		if !m.cmp.Computable || m.cmp.AbsPercentDiff() >= 1 {
			style = yellow
		}
		b.WriteString(fmt.Sprintf("   %s %s  %s\n", dim.Render("ref  "), white.Render(fmt.Sprintf("%.6e", m.cmp.Analytic)), style.Render(diff)))
	}

	if sc.Saturation > 0 {
		ratio := math.Min(r3.Norm(display)/sc.Saturation, 1)
		barWidth := 36
		filled := int(ratio * float64(barWidth))
		bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
		note := dim.Render("saturation off")
		if m.saturate {
			note = dim.Render("saturation on")
			if saturated {
				note = yellow.Render("saturated")
			}
		}
		b.WriteString(fmt.Sprintf("\n   %s  %s\n", bar, note))
	}

	if m.result.Skipped > 0 {
		b.WriteString("   " + yellow.Render(fmt.Sprintf("%d coincident element(s) skipped", m.result.Skipped)) + "\n")
	}

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("\n   %s %s\n", dim.Render("|F|"), cyan.Render(sparkline(m.history, 40))))
	}

	keys := "   ←→↑↓ move  pgup/pgdn z  [] step  ±slices  s saturation  r reset"
	if sc.Motion != nil {
		keys += "  m motion"
	}
	b.WriteString("\n" + dim.Render(keys+"  esc back  q quit") + "\n")

	return b.String()
}

func (m model) viewMotion() string {
	cw := m.width - 6
	ch := m.height - 10
	if cw < 50 {
		cw = 50
	}
	if ch < 12 {
		ch = 12
	}

	c := newCanvas(cw, ch, m.frame)
	for _, p := range m.trail {
		c.plot(p, '·')
	}
	for _, q := range m.env.Charges {
		c.plot(q.Pos, chargeRune(q.Q))
	}
	c.plot(m.particle.Pos, '●')

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n", statusIcon, cyan.Render(m.scenario.Name), statusText))

	progress := 0.0
	if m.maxSteps > 0 {
		progress = float64(m.stepsTaken) / float64(m.maxSteps)
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(fmt.Sprintf("%.2fs", m.simTime)), dim.Render(fmt.Sprintf("x%.2f", m.speed))))

	b.WriteString(c.String())

	b.WriteString(fmt.Sprintf("\n   %s%s  %s%s  %s%s\n",
		dim.Render("pos="), white.Render(vec(m.particle.Pos)),
		dim.Render("|v|="), white.Render(fmt.Sprintf("%.3e", r3.Norm(m.particle.Vel))),
		dim.Render("|F|="), white.Render(fmt.Sprintf("%.3e", r3.Norm(m.force)))))

	if m.err != nil {
		b.WriteString("   " + yellow.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  r restart  esc field  q quit") + "\n")

	return b.String()
}

func vec(v r3.Vec) string {
	return fmt.Sprintf("<%.3e, %.3e, %.3e>", v.X, v.Y, v.Z)
}

// Run opens the explorer on sc, or on the preset menu when sc is nil.
func Run(reg *experiment.Registry, sc *config.Scenario) error {
	m := NewExplorer(reg)
	if sc != nil {
		m.open(sc)
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
