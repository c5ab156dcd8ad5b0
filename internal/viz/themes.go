package viz

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name     string
	Title    lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Axis     lipgloss.Color
	Detector lipgloss.Color
	ChannelX lipgloss.Color
	ChannelY lipgloss.Color
	Arrow    lipgloss.Color
	Warning  lipgloss.Color
}

var (
	ThemeScope = Theme{
		Name:     "scope",
		Title:    lipgloss.Color("#00ffff"),
		Text:     lipgloss.Color("#e0e0e0"),
		Muted:    lipgloss.Color("#666688"),
		Axis:     lipgloss.Color("#555555"),
		Detector: lipgloss.Color("#8888aa"),
		ChannelX: lipgloss.Color("#ff4d6d"),
		ChannelY: lipgloss.Color("#4dd2ff"),
		Arrow:    lipgloss.Color("#ffd700"),
		Warning:  lipgloss.Color("#ff8800"),
	}

	ThemeRetro = Theme{
		Name:     "retro",
		Title:    lipgloss.Color("#00ff00"),
		Text:     lipgloss.Color("#00dd00"),
		Muted:    lipgloss.Color("#005500"),
		Axis:     lipgloss.Color("#004400"),
		Detector: lipgloss.Color("#008800"),
		ChannelX: lipgloss.Color("#88ff88"),
		ChannelY: lipgloss.Color("#00cc00"),
		Arrow:    lipgloss.Color("#ffff00"),
		Warning:  lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Title:    lipgloss.Color("#ffffff"),
		Text:     lipgloss.Color("#cccccc"),
		Muted:    lipgloss.Color("#888888"),
		Axis:     lipgloss.Color("#666666"),
		Detector: lipgloss.Color("#aaaaaa"),
		ChannelX: lipgloss.Color("#ffffff"),
		ChannelY: lipgloss.Color("#bbbbbb"),
		Arrow:    lipgloss.Color("#0088ff"),
		Warning:  lipgloss.Color("#ffaa00"),
	}

	Themes = []Theme{ThemeScope, ThemeRetro, ThemeMinimal}
)

// GetTheme falls back to the first theme for unknown names.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func (t Theme) PenColor(p Pen) lipgloss.Color {
	switch p {
	case PenAxis:
		return t.Axis
	case PenDetector:
		return t.Detector
	case PenChannelX:
		return t.ChannelX
	case PenChannelY:
		return t.ChannelY
	case PenArrow:
		return t.Arrow
	}
	return t.Text
}
