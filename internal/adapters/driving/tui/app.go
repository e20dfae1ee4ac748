package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/views/chat"
)

var _ tea.Model = (*App)(nil)

// App is the root bubbletea model. It owns session switching and delegates
// everything else to the chat view.
type App struct {
	ctx    context.Context
	keymap *keymap.KeyMap
	chat   *chat.View

	newSessionID func() string
	sized        bool
}

// NewApp builds the chat. An empty sessionID starts a fresh conversation.
func NewApp(ports *Ports, sessionID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	km := keymap.DefaultKeyMap()
	return &App{
		ctx:          context.Background(),
		keymap:       km,
		chat:         chat.NewView(styles.DefaultStyles(), km, ports.Ask, sessionID),
		newSessionID: uuid.NewString,
	}, nil
}

// WithContext bounds pending questions and the program itself by ctx.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chat.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("agenda"), a.chat.Init())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.sized = true
	case messages.Quit:
		return a, tea.Quit
	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.NewSession) {
			id := a.newSessionID()
			return a, func() tea.Msg { return messages.SessionReset{SessionID: id} }
		}
	}

	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if !a.sized && !a.chat.Quitting() {
		return "Initialising..."
	}
	return a.chat.View()
}

// Run blocks until the user quits or the context ends.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

func (a *App) SessionID() string { return a.chat.SessionID() }

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool { return a.sized }
