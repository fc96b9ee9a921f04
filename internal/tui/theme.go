package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme of the live monitor.
type Theme struct {
	Name    string
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:    "default",
		Accent:  lipgloss.Color("86"),
		Text:    lipgloss.Color("255"),
		Muted:   lipgloss.Color("242"),
		Success: lipgloss.Color("82"),
		Warning: lipgloss.Color("220"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Accent:  lipgloss.Color("#00ff00"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#008800"),
		Success: lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Accent:  lipgloss.Color("255"),
		Text:    lipgloss.Color("250"),
		Muted:   lipgloss.Color("240"),
		Success: lipgloss.Color("255"),
		Warning: lipgloss.Color("245"),
	}
)

var themes = map[string]Theme{
	ThemeDefault.Name: ThemeDefault,
	ThemeRetro.Name:   ThemeRetro,
	ThemeMono.Name:    ThemeMono,
}

// GetTheme looks a theme up by name, falling back to the default.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return ThemeDefault
}

// ThemeNames lists the available theme names.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	return names
}

type styles struct {
	accent  lipgloss.Style
	text    lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		accent:  lipgloss.NewStyle().Foreground(t.Accent),
		text:    lipgloss.NewStyle().Foreground(t.Text),
		muted:   lipgloss.NewStyle().Foreground(t.Muted),
		success: lipgloss.NewStyle().Foreground(t.Success),
		warning: lipgloss.NewStyle().Foreground(t.Warning),
	}
}
