package viz

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r2"
	"go.uber.org/zap"

	"github.com/torozsom/gondola/internal/export"
	"github.com/torozsom/gondola/internal/gondola"
	"github.com/torozsom/gondola/internal/sim"
	"github.com/torozsom/gondola/internal/view"
)

const (
	defaultCols     = 60
	defaultRows     = 30
	statsWidth      = 45
	historyCapacity = 600
	curveSamples    = 100

	// canvasStyle padding, in cells.
	canvasLeft = 2
	canvasTop  = 1
)

type TickMsg time.Time

// rideHistory records the telemetry shown in the stats panel.
type rideHistory struct {
	speeds []float64
	forces []float64
	trail  []r2.Point
}

func (h *rideHistory) OnStep(_ float64, s gondola.Sample) {
	h.speeds = appendCapped(h.speeds, s.Speed)
	h.forces = appendCapped(h.forces, s.Force)
	h.trail = appendCapped(h.trail, s.Position)
}

func (h *rideHistory) reset() {
	h.speeds = h.speeds[:0]
	h.forces = h.forces[:0]
	h.trail = h.trail[:0]
}

func appendCapped[T any](s []T, v T) []T {
	if len(s) >= historyCapacity {
		s = append(s[:0], s[1:]...)
	}
	return append(s, v)
}

// Model is the interactive ride editor: left clicks add control points to
// the track, space releases the gondola and every tick advances the
// simulation by the wall time since the previous tick.
type Model struct {
	sim    *sim.Simulator
	logger *zap.Logger
	title  string

	center   r2.Point
	viewSize float64
	camera   view.Camera
	canvas   *Canvas
	fps      int

	history  *rideHistory
	running  bool
	lastTick time.Time

	gauge     harmonica.Spring
	gaugePos  float64
	gaugeVel  float64
	fullScale float64

	snapshotDir string
	status      string
	showHelp    bool
}

type ModelOption func(*Model)

func WithLogger(l *zap.Logger) ModelOption {
	return func(m *Model) { m.logger = l }
}

// WithSnapshotDir sets where the s and S keys write SVG files.
func WithSnapshotDir(dir string) ModelOption {
	return func(m *Model) { m.snapshotDir = dir }
}

func WithTitle(title string) ModelOption {
	return func(m *Model) { m.title = title }
}

// NewModel shows the square of world space of side size centered at center.
// It registers an observer on s.
func NewModel(s *sim.Simulator, center r2.Point, size float64, fps int, opts ...ModelOption) Model {
	if fps <= 0 {
		fps = 60
	}
	m := Model{
		sim:         s,
		logger:      zap.NewNop(),
		title:       "gondola",
		center:      center,
		viewSize:    size,
		fps:         fps,
		history:     &rideHistory{},
		running:     true,
		gauge:       harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.9),
		fullScale:   math.Sqrt(2 * s.Gondola().Params().Gravity * size),
		snapshotDir: ".",
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.resizeCanvas(defaultCols, defaultRows)
	s.AddObserver(m.history)
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.fitWindow(msg.Width, msg.Height)
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.showHelp {
			return m, nil
		}
		if p, ok := m.cellToWorld(msg.X, msg.Y); ok {
			m.sim.AddPoint(p)
			m.status = ""
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if err := m.sim.Launch(); err != nil {
				m.status = err.Error()
			} else {
				m.status = ""
				m.running = true
			}
		case "p":
			m.running = !m.running
		case "r":
			m.sim.Reset()
			m.resetHistory()
		case "c":
			m.sim.Clear()
			m.resetHistory()
		case "s":
			m.status = m.saveSnapshot("ride", m.rideSVG())
		case "S":
			m.draw()
			m.status = m.saveSnapshot("canvas", export.CanvasToSVG(m.canvas, 4))
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		now := time.Time(msg)
		if m.running && !m.lastTick.IsZero() {
			m.sim.Advance(now.Sub(m.lastTick).Seconds())
		}
		m.lastTick = now
		m.gaugePos, m.gaugeVel = m.gauge.Update(m.gaugePos, m.gaugeVel, m.sim.Gondola().Speed())
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resetHistory() {
	m.history.reset()
	m.gaugePos, m.gaugeVel = 0, 0
	m.status = ""
}

// fitWindow sizes the canvas to the terminal, leaving room for the stats
// panel. Braille sub-pixels are roughly square, so world units stay square
// as long as the camera keeps the canvas aspect ratio.
func (m *Model) fitWindow(w, h int) {
	cols := w - statsWidth - 2*canvasLeft - 2
	rows := h - 2*canvasTop
	m.resizeCanvas(max(cols, 10), max(rows, 5))
}

func (m *Model) resizeCanvas(cols, rows int) {
	m.canvas = NewCanvas(cols, rows)
	pw, ph := m.canvas.Pixels()
	aspect := float64(pw) / float64(ph)
	m.camera = view.NewCamera(m.center, r2.Point{X: m.viewSize * aspect, Y: m.viewSize})
}

func (m *Model) window() r2.Point {
	pw, ph := m.canvas.Pixels()
	return r2.Point{X: float64(pw), Y: float64(ph)}
}

// cellToWorld maps a terminal cell to the world point at the center of the
// corresponding canvas cell.
func (m *Model) cellToWorld(x, y int) (r2.Point, bool) {
	col, row := x-canvasLeft, y-canvasTop
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return r2.Point{}, false
	}
	pixel := r2.Point{X: float64(col*2) + 1, Y: float64(row*4) + 2}
	return m.camera.PixelToWorld(pixel, m.window()), true
}

func (m *Model) project(p r2.Point) (int, int) {
	px := m.camera.WorldToPixel(p, m.window())
	return int(math.Round(px.X)), int(math.Round(px.Y))
}

func (m *Model) draw() {
	m.canvas.Clear()
	track := m.sim.Track()

	if track.Len() >= 2 {
		m.canvas.SetPen(InkTrack)
		curve := track.Sample(curveSamples)
		xs, ys := make([]int, len(curve)), make([]int, len(curve))
		for i, p := range curve {
			xs[i], ys[i] = m.project(p)
		}
		m.canvas.DrawPolyline(xs, ys)
	}

	m.canvas.SetPen(InkTrail)
	for _, p := range m.history.trail {
		m.canvas.Set(m.project(p))
	}

	m.canvas.SetPen(InkControl)
	for _, p := range track.ControlPoints() {
		x, y := m.project(p)
		m.canvas.FillSquare(x, y, 1)
	}

	g := m.sim.Gondola()
	if g.Phase() == gondola.Idle {
		return
	}
	m.canvas.SetPen(InkBody)
	cx, cy := m.project(g.Position())
	r := int(math.Round(g.Params().Radius * m.camera.PixelsPerUnit(m.window())))
	m.canvas.DrawCircle(cx, cy, r)
	m.canvas.DrawSpokes(cx, cy, r, g.Heading(), 4)
}

func (m *Model) rideSVG() string {
	track := m.sim.Track()
	return export.RideSVG(track.Sample(curveSamples), track.ControlPoints(), m.history.trail,
		m.sim.Gondola().Params().Radius, 600, 600)
}

// saveSnapshot writes an SVG into the snapshot directory and returns the
// status line to show.
func (m *Model) saveSnapshot(kind, svg string) string {
	if svg == "" {
		return "nothing to save"
	}
	name := fmt.Sprintf("gondola-%s-%s.svg", kind, time.Now().Format("20060102-150405"))
	path := filepath.Join(m.snapshotDir, name)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		m.logger.Error("snapshot failed", zap.String("path", path), zap.Error(err))
		return "snapshot failed: " + err.Error()
	}
	m.logger.Info("snapshot saved", zap.String("path", path))
	return "saved " + path
}

func (m Model) phaseLabel() string {
	g := m.sim.Gondola()
	switch g.Phase() {
	case gondola.Moving:
		if !m.running {
			return StatusPaused.Render("PAUSED")
		}
		return StatusMoving.Render("MOVING")
	case gondola.Departed:
		return StatusDeparted.Render("DEPARTED: " + strings.ToUpper(g.Reason().String()))
	}
	return StatusIdle.Render("IDLE")
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	theme := CurrentTheme
	canvasView := canvasStyle.Render(m.canvas.Render(theme.palette()))

	g := m.sim.Gondola()
	last := g.Last()
	headerStyle := lipgloss.NewStyle().Foreground(theme.Header).Bold(true).MarginBottom(1)

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.phaseLabel() + "\n\n")

	if chart := Chart(m.history.speeds, 30, 4, "Speed"); chart != "" {
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.sim.Clock()))
	row("Speed", fmt.Sprintf("%.2f", g.Speed()))
	row("Arc", fmt.Sprintf("%.3f", g.Arc()))
	row("Force", fmt.Sprintf("%.2f", last.Force))
	row("Curvature", fmt.Sprintf("%.3f", last.Curvature))
	row("Points", fmt.Sprintf("%d", m.sim.Track().Len()))
	row("Theme", theme.Name)

	gauge := 0.0
	if m.fullScale > 0 {
		gauge = m.gaugePos / m.fullScale
	}
	s.WriteString("\n" + labelStyle.Render("Gauge") + ProgressBar(gauge, 20) + "\n")
	s.WriteString(labelStyle.Render("Force") + SparklineChart(m.history.forces, 20) + "\n")

	if m.status != "" {
		s.WriteString("\n" + errorStyle.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nClick:Add point  SP:Launch\nR:Reset C:Clear P:Pause\nS:Save SVG T:Theme ?:Help Q:Quit"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Click    - Add a control point      ║
║  Space    - Launch the gondola       ║
║  P        - Pause/Resume             ║
║  R        - Reset the gondola        ║
║  C        - Clear the track          ║
║  s        - Save ride as SVG         ║
║  S        - Save canvas as SVG       ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
