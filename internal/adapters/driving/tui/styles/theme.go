// Package styles holds the lipgloss styles of the chat TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette pairs a light and a dark variant for each role so the chat reads
// on either terminal background.
type Palette struct {
	Accent  lipgloss.AdaptiveColor // titles and questions
	Answer  lipgloss.AdaptiveColor
	Text    lipgloss.AdaptiveColor
	Subtle  lipgloss.AdaptiveColor // sources, hints, status
	Danger  lipgloss.AdaptiveColor
	Frame   lipgloss.AdaptiveColor
	BarFill lipgloss.AdaptiveColor
}

// DefaultPalette is red and blue, after the city colours.
func DefaultPalette() *Palette {
	return &Palette{
		Accent:  lipgloss.AdaptiveColor{Light: "#C8102E", Dark: "#E64553"},
		Answer:  lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"},
		Text:    lipgloss.AdaptiveColor{Light: "#4C4F69", Dark: "#CDD6F4"},
		Subtle:  lipgloss.AdaptiveColor{Light: "#8C8FA1", Dark: "#6C7086"},
		Danger:  lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"},
		Frame:   lipgloss.AdaptiveColor{Light: "#BCC0CC", Dark: "#45475A"},
		BarFill: lipgloss.AdaptiveColor{Light: "#E6E9EF", Dark: "#181825"},
	}
}

// Styles are built once per palette and shared by the components.
type Styles struct {
	palette *Palette

	Title      lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Question   lipgloss.Style
	Answer     lipgloss.Style
	Source     lipgloss.Style
	Error      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles derives the styles from p, or the default palette when nil.
func NewStyles(p *Palette) *Styles {
	if p == nil {
		p = DefaultPalette()
	}
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		palette:  p,
		Title:    fg(p.Accent).Bold(true),
		Normal:   fg(p.Text),
		Muted:    fg(p.Subtle),
		Question: fg(p.Accent).Bold(true),
		Answer:   fg(p.Answer),
		Source:   fg(p.Subtle).Italic(true).PaddingLeft(2),
		Error:    fg(p.Danger),
		Help:     fg(p.Subtle).Faint(true),
		InputField: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Frame).
			Padding(0, 1),
		StatusBar: fg(p.Subtle).Background(p.BarFill).Padding(0, 1),
	}
}

func DefaultStyles() *Styles {
	return NewStyles(nil)
}

func (s *Styles) Palette() *Palette {
	return s.palette
}
