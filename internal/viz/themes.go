package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name    string
	Track   lipgloss.Color
	Trail   lipgloss.Color
	Control lipgloss.Color
	Body    lipgloss.Color
	Header  lipgloss.Color
	Muted   lipgloss.Color
}

// Available themes
var (
	ThemeClassic = Theme{
		Name:    "classic",
		Track:   lipgloss.Color("#ffff00"),
		Trail:   lipgloss.Color("#00ff88"),
		Control: lipgloss.Color("#ff0000"),
		Body:    lipgloss.Color("#ffffff"),
		Header:  lipgloss.Color("86"),
		Muted:   lipgloss.Color("240"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Track:   lipgloss.Color("#00ff00"),
		Trail:   lipgloss.Color("#005500"),
		Control: lipgloss.Color("#88ff88"),
		Body:    lipgloss.Color("#ccffcc"),
		Header:  lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Track:   lipgloss.Color("#00a8cc"),
		Trail:   lipgloss.Color("#4488aa"),
		Control: lipgloss.Color("#ffd700"),
		Body:    lipgloss.Color("#e0f0ff"),
		Header:  lipgloss.Color("#0077be"),
		Muted:   lipgloss.Color("#4488aa"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Track:   lipgloss.Color("#feca57"),
		Trail:   lipgloss.Color("#8b6b8c"),
		Control: lipgloss.Color("#ff4757"),
		Body:    lipgloss.Color("#fff5f5"),
		Header:  lipgloss.Color("#ff6b6b"),
		Muted:   lipgloss.Color("#8b6b8c"),
	}

	// Default theme
	CurrentTheme = ThemeClassic

	Themes = []Theme{
		ThemeClassic,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the classic one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	SetTheme(names[0])
}

// palette maps canvas inks to the theme's colors.
func (t Theme) palette() [inkCount]lipgloss.Style {
	var p [inkCount]lipgloss.Style
	p[InkTrack] = lipgloss.NewStyle().Foreground(t.Track)
	p[InkTrail] = lipgloss.NewStyle().Foreground(t.Trail)
	p[InkControl] = lipgloss.NewStyle().Foreground(t.Control).Bold(true)
	p[InkBody] = lipgloss.NewStyle().Foreground(t.Body).Bold(true)
	return p
}
