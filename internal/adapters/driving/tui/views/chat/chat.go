// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
)

// Farewell is shown when the user leaves the chat.
const Farewell = "Au revoir !"

// exitWords end the conversation when typed as a question.
var exitWords = map[string]bool{"quit": true, "exit": true}

// IsExitWord reports whether the input ends the conversation.
func IsExitWord(input string) bool {
	return exitWords[strings.ToLower(strings.TrimSpace(input))]
}

// exchange is one question with its answer once received.
type exchange struct {
	question string
	answer   *domain.Answer
	err      error
}

// View is the chat view: transcript, question input and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	statusbar *status.Bar
	viewport  viewport.Model

	askService driving.AskService
	ctx        context.Context
	sessionID  string

	transcript  []exchange
	showSources bool
	pending     bool
	quitting    bool

	width  int
	height int
}

// NewView creates a new chat view bound to sessionID.
func NewView(s *styles.Styles, km *keymap.KeyMap, askService driving.AskService, sessionID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetSession(sessionID)

	v := &View{
		styles:      s,
		keymap:      km,
		input:       input.NewQuestionInput(s),
		statusbar:   bar,
		viewport:    viewport.New(80, 18),
		askService:  askService,
		ctx:         context.Background(),
		sessionID:   sessionID,
		showSources: true,
		width:       80,
		height:      24,
	}
	v.refresh()
	return v
}

// WithContext sets the context used for ask calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.SessionReset:
		v.sessionID = msg.SessionID
		v.statusbar.SetSession(msg.SessionID)
		v.statusbar.SetMode("")
		return v, nil

	case spinner.TickMsg:
		return v, v.statusbar.Update(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Quit):
		v.quitting = true
		return v, tea.Quit

	case keymap.Matches(keyStr, v.keymap.Send):
		return v.submit()

	case keymap.Matches(keyStr, v.keymap.Sources):
		v.showSources = !v.showSources
		v.refresh()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) submit() (*View, tea.Cmd) {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending {
		return v, nil
	}
	if IsExitWord(question) {
		v.quitting = true
		return v, tea.Quit
	}

	v.input.Remember(question)
	v.input.Reset()
	v.pending = true
	v.transcript = append(v.transcript, exchange{question: question})
	v.statusbar.SetState(status.StateThinking)
	v.refresh()

	return v, tea.Batch(v.askCmd(question), v.statusbar.Tick)
}

func (v *View) askCmd(question string) tea.Cmd {
	ctx, svc, session := v.ctx, v.askService, v.sessionID
	return func() tea.Msg {
		answer, err := svc.Ask(ctx, domain.Question{Text: question, SessionID: session})
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = false
	if n := len(v.transcript); n > 0 && v.transcript[n-1].question == msg.Question {
		v.transcript[n-1].answer = msg.Answer
		v.transcript[n-1].err = msg.Err
	}

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	} else {
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("")
		if msg.Answer != nil {
			v.statusbar.SetMode(msg.Answer.Mode.String())
		}
	}
	v.refresh()
}

// refresh re-renders the transcript into the viewport.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.transcript) == 0 {
		return v.styles.Muted.Render("Posez une question sur les événements à venir. Tapez 'quit' ou 'exit' pour quitter.")
	}

	var b strings.Builder
	for i, ex := range v.transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Question.Render("> " + ex.question))
		b.WriteString("\n")

		switch {
		case ex.err != nil:
			b.WriteString(v.styles.Error.Render("Erreur : " + ex.err.Error()))
			b.WriteString("\n")
		case ex.answer == nil:
			b.WriteString(v.styles.Muted.Render("..."))
			b.WriteString("\n")
		default:
			b.WriteString(v.styles.Answer.Width(v.width).Render(ex.answer.Response))
			b.WriteString("\n")
			if v.showSources && len(ex.answer.Context) > 0 {
				b.WriteString(v.styles.Muted.Render("Sources"))
				b.WriteString("\n")
				for _, src := range ex.answer.Context {
					b.WriteString(v.styles.Source.Render("- " + domain.Preview(src, domain.SourcePreviewLength)))
					b.WriteString("\n")
				}
			}
		}
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if v.quitting {
		return Farewell + "\n"
	}

	title := v.styles.Title.Render("agenda : événements")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		v.viewport.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	// Title, input (3 lines with border) and status bar.
	vpHeight := height - 5
	if vpHeight < 3 {
		vpHeight = 3
	}
	v.viewport.Width = width
	v.viewport.Height = vpHeight
	v.refresh()
}

// SessionID returns the session used for follow-ups.
func (v *View) SessionID() string {
	return v.sessionID
}

// Quitting reports whether the user asked to leave.
func (v *View) Quitting() bool {
	return v.quitting
}

// Pending reports whether an answer is awaited.
func (v *View) Pending() bool {
	return v.pending
}

// ShowSources reports whether sources are displayed.
func (v *View) ShowSources() bool {
	return v.showSources
}

// Transcript returns the asked questions in order.
func (v *View) Transcript() []string {
	out := make([]string, len(v.transcript))
	for i, ex := range v.transcript {
		out[i] = ex.question
	}
	return out
}

// Content returns the rendered transcript.
func (v *View) Content() string {
	return v.renderTranscript()
}
