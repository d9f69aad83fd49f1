package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r2"
	"go.uber.org/zap"

	"github.com/torozsom/gondola/internal/config"
	"github.com/torozsom/gondola/internal/sim"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleDesc    = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// BlankTrack starts the editor with no control points.
const BlankTrack = "blank"

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var paramNames = []string{"gravity", "radius", "dt", "size"}

// App picks a track, lets the physics be tuned, then hands over to the live
// Model.
type App struct {
	cfg    *config.Config
	opts   []ModelOption
	logger *zap.Logger

	state, cursor int
	tracks        []string
	selected      string

	params      map[string]float64
	paramCursor int
	editing     bool
	editBuf     string
	err         string

	width, height int
	live          Model
}

// NewApp lists BlankTrack followed by the built-in tracks. The logger is
// handed to the simulator of every ride started from the menu.
func NewApp(cfg *config.Config, logger *zap.Logger, opts ...ModelOption) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:    cfg,
		opts:   append([]ModelOption{WithLogger(logger)}, opts...),
		logger: logger,
		tracks: append([]string{BlankTrack}, config.ListTracks()...),
		params: map[string]float64{
			"gravity": cfg.Physics.Gravity,
			"radius":  cfg.Physics.Radius,
			"dt":      cfg.Sim.Dt,
			"size":    cfg.View.Size,
		},
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		a.width, a.height = ws.Width, ws.Height
	}
	if a.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			a.state = stateMenu
			return a, nil
		}
		live, cmd := a.live.Update(msg)
		a.live = live.(Model)
		return a, cmd
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch a.state {
		case stateMenu:
			return a.menuKey(k)
		case stateConfig:
			return a.configKey(k)
		}
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.tracks)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.selected = a.tracks[a.cursor]
		a.state, a.paramCursor, a.err = stateConfig, 0, ""
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (App, tea.Cmd) {
	name := paramNames[a.paramCursor]
	if a.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(a.editBuf, 64); err == nil {
				a.params[name] = v
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				c := s[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					a.editBuf += s
				}
			}
		}
		return a, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.paramCursor > 0 {
			a.paramCursor--
		}
	case "down", "j":
		if a.paramCursor < len(paramNames)-1 {
			a.paramCursor++
		}
	case "enter", " ":
		a.editing, a.editBuf = true, strconv.FormatFloat(a.params[name], 'g', -1, 64)
	case "left", "h":
		a.params[name] *= 0.9
	case "right", "l":
		a.params[name] *= 1.1
	case "s":
		return a.start()
	}
	return a, nil
}

// start builds a simulator for the selected track with the tuned
// parameters. Invalid parameters keep the config screen open.
func (a App) start() (App, tea.Cmd) {
	cfg := *a.cfg
	cfg.Physics.Gravity = a.params["gravity"]
	cfg.Physics.Radius = a.params["radius"]
	cfg.Sim.Dt = a.params["dt"]
	cfg.View.Size = a.params["size"]
	if a.selected != BlankTrack {
		cfg.Track = a.selected
	}
	if err := cfg.Validate(); err != nil {
		a.err = err.Error()
		return a, nil
	}

	s, err := NewRide(&cfg, a.selected, a.logger)
	if err != nil {
		a.err = err.Error()
		return a, nil
	}
	opts := append([]ModelOption{WithTitle(a.selected)}, a.opts...)
	a.live = NewModel(s, r2.Point{X: cfg.View.CenterX, Y: cfg.View.CenterY}, cfg.View.Size, cfg.View.FPS, opts...)
	if a.width > 0 && a.height > 0 {
		a.live.fitWindow(a.width, a.height)
	}
	a.state, a.err = stateSim, ""
	return a, a.live.Init()
}

// NewRide builds a simulator from cfg and loads the named built-in track
// into it. BlankTrack and "" leave the track empty.
func NewRide(cfg *config.Config, track string, logger *zap.Logger) (*sim.Simulator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := sim.New(cfg.Physics, cfg.Sim, sim.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if track == "" || track == BlankTrack {
		return s, nil
	}
	t, ok := config.GetTrack(track)
	if !ok {
		return nil, fmt.Errorf("unknown track %q", track)
	}
	for _, p := range t.Points {
		s.AddPoint(p)
	}
	return s, nil
}

func (a App) View() string {
	switch a.state {
	case stateMenu:
		return a.viewMenu()
	case stateConfig:
		return a.viewConfig()
	case stateSim:
		return a.live.View()
	}
	return ""
}

func trackInfo(name string) string {
	if name == BlankTrack {
		return "draw your own track"
	}
	t, _ := config.GetTrack(name)
	return t.Description
}

func header(title, sub string) string {
	return "\n\n    " + titleStyle.Render(title) + "\n    " + subStyle.Render(sub) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n"
}

func keyHints(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (a App) viewMenu() string {
	var b strings.Builder
	b.WriteString(header("GONDOLA", "roller coaster on a spline"))
	for i, name := range a.tracks {
		desc := trackInfo(name)
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", name)), idleDesc.Render(desc)))
		}
	}
	b.WriteString(keyHints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (a App) viewConfig() string {
	var b strings.Builder
	b.WriteString(header(strings.ToUpper(a.selected), trackInfo(a.selected)))
	for i, name := range paramNames {
		valStr := fmt.Sprintf("%8.3f", a.params[name])
		if a.editing && i == a.paramCursor {
			valStr = fmt.Sprintf("%8s", a.editBuf+"_")
		}
		if i == a.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", name)), idleDesc.Render(valStr)))
		}
	}
	if a.err != "" {
		b.WriteString("\n    " + errorStyle.Render(a.err) + "\n")
	}
	b.WriteString(keyHints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back"))
	return b.String()
}

// Run takes over the terminal with mouse reporting until the program quits.
func Run(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
