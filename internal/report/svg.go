package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/motion"
)

// TrajectorySVG draws the xy projection of the test charge's path with the
// fixed charges as red (positive) and blue (negative) dots. It returns "" for
// fewer than two states.
func TrajectorySVG(res *motion.Result, charges field.PointCharges, width, height int) string {
	if len(res.States) < 2 {
		return ""
	}

	pts := make([]r3.Vec, 0, len(res.States)+len(charges))
	for _, s := range res.States {
		pts = append(pts, s.Pos)
	}
	for _, c := range charges {
		pts = append(pts, c.Pos)
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	project := func(p r3.Vec) (float64, float64) {
		return (p.X - minX) / rangeX * float64(width),
			float64(height) - (p.Y-minY)/rangeY*float64(height)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="#00ccff" stroke-width="1.5" d="M`,
		width, height, width, height))

	for i, s := range res.States {
		x, y := project(s.Pos)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")

	for _, c := range charges {
		x, y := project(c.Pos)
		fill := "#ff4444"
		if c.Q < 0 {
			fill = "#4488ff"
		}
		sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4\" fill=\"%s\"/>\n", x, y, fill))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func WriteTrajectorySVG(w io.Writer, res *motion.Result, charges field.PointCharges) error {
	svg := TrajectorySVG(res, charges, 800, 600)
	if svg == "" {
		return fmt.Errorf("trajectory has fewer than two states")
	}
	_, err := io.WriteString(w, svg)
	return err
}
