// Package export renders rides as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r2"
)

const (
	curveColor   = "#ffff00"
	controlColor = "#ff0000"
	trailColor   = "#00ff88"
	bodyColor    = "#ffffff"
)

// BrailleGrid is a character grid of braille cells, such as the TUI canvas.
type BrailleGrid interface {
	Dims() (cols, rows int)
	At(col, row int) rune
}

// CanvasToSVG converts a braille canvas to SVG, one circle per raised dot.
func CanvasToSVG(grid BrailleGrid, scale float64) string {
	if grid == nil {
		return ""
	}
	cols, rows := grid.Dims()

	width := float64(cols) * scale * 2  // 2 sub-pixels per char
	height := float64(rows) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, curveColor))

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r := grid.At(col, row)
			if r < 0x2800 || r > 0x28FF {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// RideSVG draws the track curve, its control points and the path of the
// gondola body, with a disc of the given world radius at the last body
// position. It returns "" when the curve has fewer than two points.
func RideSVG(curve, controls, trail []r2.Point, radius float64, width, height int) string {
	if len(curve) < 2 {
		return ""
	}

	f := newFrame(width, height, curve, controls, trail)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="2" d="%s"/>
`, curveColor, f.pathData(curve)))

	if len(trail) >= 2 {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1" stroke-dasharray="4 2" d="%s"/>
`, trailColor, f.pathData(trail)))
	}

	for _, p := range controls {
		x, y := f.project(p)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
`, x, y, controlColor))
	}

	if len(trail) > 0 {
		x, y := f.project(trail[len(trail)-1])
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="2"/>
`, x, y, radius*f.scale, bodyColor))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// frame maps world coordinates into the SVG viewport with 10% padding and a
// uniform scale so that circles stay round.
type frame struct {
	minX, minY float64
	scale      float64
	offX, offY float64
	height     float64
}

func newFrame(width, height int, sets ...[]r2.Point) frame {
	first := true
	var minX, maxX, minY, maxY float64
	for _, set := range sets {
		for _, p := range set {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
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
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	scale := min(float64(width)/rangeX, float64(height)/rangeY)
	return frame{
		minX:   minX,
		minY:   minY,
		scale:  scale,
		offX:   (float64(width) - rangeX*scale) / 2,
		offY:   (float64(height) - rangeY*scale) / 2,
		height: float64(height),
	}
}

func (f frame) project(p r2.Point) (float64, float64) {
	x := f.offX + (p.X-f.minX)*f.scale
	y := f.height - f.offY - (p.Y-f.minY)*f.scale
	return x, y
}

func (f frame) pathData(points []r2.Point) string {
	var sb strings.Builder
	for i, p := range points {
		x, y := f.project(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	return sb.String()
}
