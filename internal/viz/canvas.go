package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Ink is the layer a dot was drawn with. A cell takes the ink of the last
// dot set in it.
type Ink uint8

const (
	InkTrack Ink = iota
	InkTrail
	InkControl
	InkBody
	inkCount
)

type Canvas struct {
	Width, Height int
	Grid          [][]rune

	inks [][]Ink
	pen  Ink
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		inks:   make([][]Ink, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.inks[i] = make([]Ink, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

// Dims returns the canvas size in character cells.
func (c *Canvas) Dims() (cols, rows int) { return c.Width, c.Height }

// At returns the braille character of a cell, or a blank one outside the
// canvas.
func (c *Canvas) At(col, row int) rune {
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return blank
	}
	return c.Grid[row][col]
}

// Pixels returns the canvas size in sub-pixels.
func (c *Canvas) Pixels() (w, h int) { return c.Width * 2, c.Height * 4 }

// SetPen selects the ink used by the following drawing calls.
func (c *Canvas) SetPen(ink Ink) { c.pen = ink }

// Set raises the dot at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.inks[row][col] = c.pen
}

// Unset lowers a dot.
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.inks[i][j] = InkTrack
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPolyline joins consecutive points with lines.
func (c *Canvas) DrawPolyline(xs, ys []int) {
	for i := 1; i < len(xs) && i < len(ys); i++ {
		c.DrawLine(xs[i-1], ys[i-1], xs[i], ys[i])
	}
}

// DrawCircle outlines a circle with the midpoint algorithm. A radius below
// one sub-pixel draws a single dot.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	x, y := r, 0
	d := 1 - r
	for x >= y {
		c.Set(cx+x, cy+y)
		c.Set(cx+y, cy+x)
		c.Set(cx-y, cy+x)
		c.Set(cx-x, cy+y)
		c.Set(cx-x, cy-y)
		c.Set(cx-y, cy-x)
		c.Set(cx+y, cy-x)
		c.Set(cx+x, cy-y)
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

// DrawSpokes draws n spokes of length r from (cx, cy), the first at angle
// radians counterclockwise from the x axis. Sub-pixel y grows downwards.
func (c *Canvas) DrawSpokes(cx, cy, r int, angle float64, n int) {
	for i := 0; i < n; i++ {
		a := angle + float64(i)*2*math.Pi/float64(n)
		x := cx + int(math.Round(float64(r)*math.Cos(a)))
		y := cy - int(math.Round(float64(r)*math.Sin(a)))
		c.DrawLine(cx, cy, x, y)
	}
}

// FillSquare raises every dot within half sub-pixels of (cx, cy).
func (c *Canvas) FillSquare(cx, cy, half int) {
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			c.Set(cx+dx, cy+dy)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render is String with each run of equally inked cells wrapped in the
// matching style. Blank cells are left unstyled.
func (c *Canvas) Render(palette [inkCount]lipgloss.Style) string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && sameRun(row[start], c.inks[i][start], row[j], c.inks[i][j]) {
				continue
			}
			run := string(row[start:j])
			if row[start] == blank {
				b.WriteString(run)
			} else {
				b.WriteString(palette[c.inks[i][start]].Render(run))
			}
			start = j
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func sameRun(a rune, ai Ink, b rune, bi Ink) bool {
	if a == blank || b == blank {
		return a == b
	}
	return ai == bi
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
