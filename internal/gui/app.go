package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/golang/geo/r2"
	"go.uber.org/zap"

	"github.com/torozsom/gondola/internal/config"
	"github.com/torozsom/gondola/internal/gondola"
	"github.com/torozsom/gondola/internal/sim"
	"github.com/torozsom/gondola/internal/view"
)

const (
	Title            = "Gondola Spline Simulation"
	telemetryHistory = 200
)

type App struct {
	Sim     *sim.Simulator
	Camera  view.Camera
	Width   int32
	Height  int32
	Running bool

	// Telemetry holds the most recent speeds for the HUD graph.
	Telemetry []float64
	status    string
	quit      bool
	logger    *zap.Logger
}

// initWindow opens the window and disables the default exit key so that Esc
// does not close it.
func initWindow(w, h int32, fps int) {
	rl.InitWindow(w, h, Title)
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// NewApp wires s to a window described by vc. It registers an observer on s.
func NewApp(s *sim.Simulator, vc config.ViewConfig, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{
		Sim: s,
		Camera: view.NewCamera(
			r2.Point{X: vc.CenterX, Y: vc.CenterY},
			r2.Point{X: vc.Size * float64(vc.Width) / float64(vc.Height), Y: vc.Size},
		),
		Width:     int32(vc.Width),
		Height:    int32(vc.Height),
		Running:   true,
		Telemetry: make([]float64, 0, telemetryHistory),
		logger:    logger,
	}
	s.AddObserver(app)
	return app
}

// Run opens the window and blocks until it is closed or Q is pressed.
func Run(s *sim.Simulator, vc config.ViewConfig, logger *zap.Logger) {
	initWindow(int32(vc.Width), int32(vc.Height), vc.FPS)
	defer rl.CloseWindow()

	app := NewApp(s, vc, logger)
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		a.Draw()
	}
}

// OnStep records telemetry for the HUD.
func (a *App) OnStep(_ float64, s gondola.Sample) {
	a.Telemetry = append(a.Telemetry, s.Speed)
	if len(a.Telemetry) > telemetryHistory {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) window() r2.Point {
	return r2.Point{X: float64(a.Width), Y: float64(a.Height)}
}

func (a *App) toScreen(p r2.Point) rl.Vector2 {
	px := a.Camera.WorldToPixel(p, a.window())
	return rl.NewVector2(float32(px.X), float32(px.Y))
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
		return
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		pos := rl.GetMousePosition()
		world := a.Camera.PixelToWorld(r2.Point{X: float64(pos.X), Y: float64(pos.Y)}, a.window())
		a.Sim.AddPoint(world)
		a.status = ""
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		if err := a.Sim.Launch(); err != nil {
			a.status = err.Error()
			a.logger.Debug("launch refused", zap.Error(err))
		} else {
			a.status = ""
			a.Running = true
		}
	}
	if rl.IsKeyPressed(rl.KeyP) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.Sim.Reset()
		a.Telemetry = a.Telemetry[:0]
	}
	if rl.IsKeyPressed(rl.KeyC) {
		a.Sim.Clear()
		a.Telemetry = a.Telemetry[:0]
	}

	if a.Running {
		a.Sim.Advance(float64(rl.GetFrameTime()))
	}
}
