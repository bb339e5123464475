package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/motion"
)

const (
	liveWidth   = 70
	liveHeight  = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a motion.Observer that redraws the xy plane at most
// frameRate times per second.
type LiveRenderer struct {
	out       io.Writer
	name      string
	frameRate int
	lastFrame time.Time
	env       motion.Environment
	canvas    *canvas
	trail     []r3.Vec
}

// NewLiveRenderer frames the fixed charges and the start position.
func NewLiveRenderer(out io.Writer, name string, env motion.Environment, start r3.Vec, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	pts := []r3.Vec{start}
	for _, c := range env.Charges {
		pts = append(pts, c.Pos)
	}
	return &LiveRenderer{
		out:       out,
		name:      name,
		frameRate: frameRate,
		env:       env,
		canvas:    newCanvas(liveWidth, liveHeight, pts),
		trail:     make([]r3.Vec, 0, 50),
	}
}

func (r *LiveRenderer) OnStep(s motion.State, force r3.Vec, t float64) {
	r.trail = append(r.trail, s.Pos)
	if len(r.trail) > 50 {
		r.trail = r.trail[1:]
	}

	if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	r.render(s, force, t)
}

func (r *LiveRenderer) draw(s motion.State) {
	r.canvas.clear()
	for _, p := range r.trail {
		r.canvas.plot(p, '·')
	}
	for _, c := range r.env.Charges {
		r.canvas.plot(c.Pos, chargeRune(c.Q))
	}
	r.canvas.plot(s.Pos, '●')
}

func (r *LiveRenderer) render(s motion.State, force r3.Vec, t float64) {
	r.draw(s)

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", r.name, t))
	b.WriteString("  " + strings.Repeat("-", liveWidth) + "\n")
	b.WriteString(r.canvas.String())
	b.WriteString("  " + strings.Repeat("-", liveWidth) + "\n")
	b.WriteString(fmt.Sprintf("  x=%.3e y=%.3e  |v|=%.3e  |F|=%.3e\n",
		s.Pos.X, s.Pos.Y, r3.Norm(s.Vel), r3.Norm(force)))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
