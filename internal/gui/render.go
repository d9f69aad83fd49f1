package gui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/torozsom/gondola/internal/gondola"
)

var (
	ColBg      = rl.NewColor(0, 0, 0, 255)
	ColTrack   = rl.NewColor(255, 255, 0, 255)
	ColControl = rl.NewColor(255, 0, 0, 255)
	ColBody    = rl.NewColor(51, 102, 255, 255)
	ColOutline = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColError   = rl.NewColor(255, 68, 68, 255)
)

const (
	curveSamples = 100
	controlSize  = 10
)

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawTrack()
	a.drawGondola()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) drawTrack() {
	track := a.Sim.Track()
	if track.Len() >= 2 {
		curve := track.Sample(curveSamples)
		points := make([]rl.Vector2, len(curve))
		for i, p := range curve {
			points[i] = a.toScreen(p)
		}
		rl.DrawLineStrip(points, ColTrack)
	}

	for _, p := range track.ControlPoints() {
		v := a.toScreen(p)
		rl.DrawRectangle(int32(v.X)-controlSize/2, int32(v.Y)-controlSize/2, controlSize, controlSize, ColControl)
	}
}

// drawGondola draws the body as a filled disc with a white rim and four
// spokes turned by the heading. Nothing is drawn while idle.
func (a *App) drawGondola() {
	g := a.Sim.Gondola()
	if g.Phase() == gondola.Idle {
		return
	}
	center := a.toScreen(g.Position())
	r := float32(g.Params().Radius * a.Camera.PixelsPerUnit(a.window()))

	rl.DrawCircleV(center, r, ColBody)
	rl.DrawCircleLines(int32(center.X), int32(center.Y), r, ColOutline)
	for i := 0; i < 4; i++ {
		angle := g.Heading() + float64(i)*math.Pi/2
		// screen y points down
		tip := rl.NewVector2(
			center.X+r*float32(math.Cos(angle)),
			center.Y-r*float32(math.Sin(angle)),
		)
		rl.DrawLineV(center, tip, ColOutline)
	}
}

func (a *App) DrawHUD() {
	g := a.Sim.Gondola()
	status := g.Phase().String()
	if g.Phase() == gondola.Departed {
		status += ": " + g.Reason().String()
	} else if g.Phase() == gondola.Moving && !a.Running {
		status = "paused"
	}

	rl.DrawText(fmt.Sprintf("t %.2fs  v %.2f  points %d", a.Sim.Clock(), g.Speed(), a.Sim.Track().Len()), 10, 10, 16, ColText)
	rl.DrawText(status, a.Width-rl.MeasureText(status, 16)-10, 10, 16, ColText)
	if a.status != "" {
		rl.DrawText(a.status, 10, 32, 14, ColError)
	}
	rl.DrawText("[CLICK] ADD  [SPACE] LAUNCH  [P] PAUSE  [R] RESET  [C] CLEAR  [Q] QUIT", 10, a.Height-20, 10, ColTextDim)

	a.DrawTelemetry()
}

// DrawTelemetry plots recent speeds as a line strip above the key hints.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := float32(10), float32(a.Height-90)
	width, height := float32(200), float32(50)

	maxVal := a.Telemetry[0]
	for _, v := range a.Telemetry {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := rectX + float32(i)/float32(telemetryHistory)*width
		py := rectY + height - float32(val/maxVal)*height
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColText)
	rl.DrawText(fmt.Sprintf("v %.2f", a.Telemetry[len(a.Telemetry)-1]), int32(rectX+width+10), int32(rectY+height-10), 12, ColText)
}
