package tui

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// canvas is a character grid showing the xy plane over fixed bounds.
type canvas struct {
	w, h       int
	cells      [][]rune
	minX, maxX float64
	minY, maxY float64
}

// newCanvas fits the xy extent of pts, padded by a tenth on each side.
func newCanvas(w, h int, pts []r3.Vec) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.clear()

	c.minX, c.minY = math.Inf(1), math.Inf(1)
	c.maxX, c.maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		c.minX, c.maxX = math.Min(c.minX, p.X), math.Max(c.maxX, p.X)
		c.minY, c.maxY = math.Min(c.minY, p.Y), math.Max(c.maxY, p.Y)
	}
	if len(pts) == 0 {
		c.minX, c.maxX, c.minY, c.maxY = -1, 1, -1, 1
	}
	span := math.Max(c.maxX-c.minX, c.maxY-c.minY)
	if span == 0 {
		span = math.Max(math.Max(math.Abs(c.maxX), math.Abs(c.maxY)), 1)
	}
	pad := span * 0.1
	cx, cy := (c.minX+c.maxX)/2, (c.minY+c.maxY)/2
	half := span/2 + pad
	c.minX, c.maxX = cx-half, cx+half
	c.minY, c.maxY = cy-half, cy+half
	return c
}

func (c *canvas) clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

func (c *canvas) project(p r3.Vec) (int, int, bool) {
	x := int((p.X - c.minX) / (c.maxX - c.minX) * float64(c.w-1))
	y := int((c.maxY - p.Y) / (c.maxY - c.minY) * float64(c.h-1))
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return 0, 0, false
	}
	return x, y, true
}

func (c *canvas) plot(p r3.Vec, r rune) {
	if x, y, ok := c.project(p); ok {
		c.cells[y][x] = r
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString("   ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	return b.String()
}

func chargeRune(q float64) rune {
	if q < 0 {
		return '-'
	}
	return '+'
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	start := 0
	if len(data) > width {
		start = len(data) - width
	}
	var sb strings.Builder
	for _, v := range data[start:] {
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}
