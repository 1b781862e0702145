package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the material and UI colours.
type Theme struct {
	Name   string
	Water  lipgloss.Color
	Air    lipgloss.Color
	Hull   lipgloss.Color
	Sail   lipgloss.Color
	Mast   lipgloss.Color
	Bond   lipgloss.Color
	Frame  lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

var (
	ThemeOcean = Theme{
		Name:   "ocean",
		Water:  lipgloss.Color("#0077be"),
		Air:    lipgloss.Color("#5a6a7a"),
		Hull:   lipgloss.Color("#c8a060"),
		Sail:   lipgloss.Color("#ffffff"),
		Mast:   lipgloss.Color("#8b5a2b"),
		Bond:   lipgloss.Color("#ffd700"),
		Frame:  lipgloss.Color("#444466"),
		Accent: lipgloss.Color("#00ffff"),
		Muted:  lipgloss.Color("#666688"),
	}

	ThemeNight = Theme{
		Name:   "night",
		Water:  lipgloss.Color("#00a8cc"),
		Air:    lipgloss.Color("#333344"),
		Hull:   lipgloss.Color("#ff6b6b"),
		Sail:   lipgloss.Color("#feca57"),
		Mast:   lipgloss.Color("#ff9ff3"),
		Bond:   lipgloss.Color("#5fd068"),
		Frame:  lipgloss.Color("#2d1b2e"),
		Accent: lipgloss.Color("#ff00ff"),
		Muted:  lipgloss.Color("#8b6b8c"),
	}

	ThemeMono = Theme{
		Name:   "mono",
		Water:  lipgloss.Color("#cccccc"),
		Air:    lipgloss.Color("#555555"),
		Hull:   lipgloss.Color("#ffffff"),
		Sail:   lipgloss.Color("#ffffff"),
		Mast:   lipgloss.Color("#ffffff"),
		Bond:   lipgloss.Color("#aaaaaa"),
		Frame:  lipgloss.Color("#444444"),
		Accent: lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#888888"),
	}

	CurrentTheme = ThemeOcean

	Themes = []Theme{
		ThemeOcean,
		ThemeNight,
		ThemeMono,
	}
)

// Color returns the colour of an ink.
func (t Theme) Color(ink Ink) lipgloss.Color {
	switch ink {
	case InkWater:
		return t.Water
	case InkAir:
		return t.Air
	case InkHull:
		return t.Hull
	case InkSail:
		return t.Sail
	case InkMast:
		return t.Mast
	case InkBond:
		return t.Bond
	case InkFrame:
		return t.Frame
	}
	return t.Muted
}

func (t Theme) Style(ink Ink) lipgloss.Style {
	if ink == InkNone {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(t.Color(ink))
}

// GetTheme returns a theme by name, falling back to ocean.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
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
}
