// Package input is the question field of the chat, with recall of earlier
// questions on up/down.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/styles"
)

const (
	maxQuestionLen = 512
	labelWidth     = 16
	minFieldWidth  = 20
	historySize    = 50
)

// QuestionInput is a single-line field. Submitted questions are kept so
// the user can edit and resend them.
type QuestionInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int

	history []string
	// cursor indexes history while browsing; len(history) means the draft.
	cursor int
	draft  string
}

func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Placeholder = "Posez votre question..."
	field.CharLimit = maxQuestionLen
	field.Prompt = "› "
	field.Width = 60
	field.Focus()

	return &QuestionInput{field: field, styles: s, width: 60}
}

// Init starts the cursor blink.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyUp:
			q.browse(-1)
			return q, nil
		case tea.KeyDown:
			q.browse(1)
			return q, nil
		}
	}
	var cmd tea.Cmd
	q.field, cmd = q.field.Update(msg)
	return q, cmd
}

func (q *QuestionInput) browse(step int) {
	next := q.cursor + step
	if next < 0 || next > len(q.history) {
		return
	}
	if q.cursor == len(q.history) {
		q.draft = q.field.Value()
	}
	q.cursor = next
	if next == len(q.history) {
		q.field.SetValue(q.draft)
	} else {
		q.field.SetValue(q.history[next])
	}
	q.field.CursorEnd()
}

// Remember appends a submitted question to the history, skipping repeats of
// the latest entry.
func (q *QuestionInput) Remember(question string) {
	if question != "" && (len(q.history) == 0 || q.history[len(q.history)-1] != question) {
		q.history = append(q.history, question)
		if len(q.history) > historySize {
			q.history = q.history[len(q.history)-historySize:]
		}
	}
	q.cursor = len(q.history)
	q.draft = ""
}

func (q *QuestionInput) History() []string {
	return q.history
}

func (q *QuestionInput) View() string {
	label := q.styles.Title.Render("Question : ")
	//nolint:misspell // lipgloss.Center is the library's spelling
	return lipgloss.JoinHorizontal(lipgloss.Center, label, q.styles.InputField.Render(q.field.View()))
}

func (q *QuestionInput) Value() string         { return q.field.Value() }
func (q *QuestionInput) SetValue(value string) { q.field.SetValue(value) }
func (q *QuestionInput) Reset()                { q.field.Reset() }
func (q *QuestionInput) Width() int            { return q.width }

// SetWidth sizes the field to what remains after the label.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	q.field.Width = max(width-labelWidth, minFieldWidth)
}
