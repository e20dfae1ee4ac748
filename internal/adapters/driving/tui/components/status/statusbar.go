// Package status renders the one-line bar under the chat.
package status

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/styles"
)

// State is what the chat is doing.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
)

const sessionPrefixLen = 8

// Bar shows the state on the left and key hints on the right. While an
// answer is pending it animates a spinner.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	help    help.Model
	spinner spinner.Model

	state   State
	message string
	session string
	mode    string
	width   int
}

// NewBar builds a bar; nil arguments take the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	h := help.New()
	h.Styles.ShortKey = s.Help.Bold(true)
	h.Styles.ShortDesc = s.Help
	h.Styles.ShortSeparator = s.Help

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(s.Muted))

	return &Bar{
		styles:  s,
		keymap:  km,
		help:    h,
		spinner: sp,
		state:   StateReady,
		width:   80,
	}
}

// Tick starts the spinner animation.
func (b *Bar) Tick() tea.Msg {
	return b.spinner.Tick()
}

// Update advances the spinner. Ticks are dropped once the answer arrives,
// which stops the animation.
func (b *Bar) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || b.state != StateThinking {
		return nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(tick)
	return cmd
}

func (b *Bar) View() string {
	left := b.stateView()
	if b.session != "" {
		left = b.styles.Muted.Render("["+shortID(b.session)+"] ") + left
	}
	right := b.help.ShortHelpView(b.keymap.ShortHelp())

	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) stateView() string {
	switch b.state {
	case StateThinking:
		return b.spinner.View() + b.styles.Muted.Render(" Recherche en cours...")
	case StateError:
		if b.message == "" {
			return b.styles.Error.Render("Erreur")
		}
		return b.styles.Error.Render("Erreur : " + b.message)
	}
	if b.mode != "" {
		return b.styles.Normal.Render(b.mode)
	}
	return b.styles.Muted.Render("Prêt")
}

func shortID(id string) string {
	if len(id) > sessionPrefixLen {
		return id[:sessionPrefixLen]
	}
	return id
}

func (b *Bar) SetState(state State) { b.state = state }
func (b *Bar) State() State         { return b.state }

// SetMessage sets the text shown in the error state.
func (b *Bar) SetMessage(message string) { b.message = message }
func (b *Bar) Message() string           { return b.message }

func (b *Bar) SetSession(id string) { b.session = id }

// SetMode shows the retrieval mode of the last answer.
func (b *Bar) SetMode(mode string) { b.mode = mode }

func (b *Bar) SetWidth(width int) {
	b.width = width
	b.help.Width = width / 2
}

func (b *Bar) Width() int { return b.width }
