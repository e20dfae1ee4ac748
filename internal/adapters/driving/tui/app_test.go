package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agenda/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
)

type mockAskService struct{}

func (m *mockAskService) Ask(_ context.Context, q domain.Question) (*domain.Answer, error) {
	return &domain.Answer{Question: q.Text, Response: "ok"}, nil
}

func (m *mockAskService) Rebuild(_ context.Context) (domain.SnapshotInfo, error) {
	return domain.SnapshotInfo{}, nil
}

func (m *mockAskService) Health(_ context.Context) driving.HealthStatus {
	return driving.HealthStatus{}
}

func (m *mockAskService) LastContext() []string {
	return nil
}

func TestNewApp(t *testing.T) {
	t.Run("missing ask service", func(t *testing.T) {
		app, err := NewApp(&Ports{}, "")
		assert.ErrorIs(t, err, ErrMissingAskService)
		assert.Nil(t, app)
	})

	t.Run("generates a session", func(t *testing.T) {
		app, err := NewApp(&Ports{Ask: &mockAskService{}}, "")
		require.NoError(t, err)
		assert.Len(t, app.SessionID(), 36)
	})

	t.Run("keeps the given session", func(t *testing.T) {
		app, err := NewApp(&Ports{Ask: &mockAskService{}}, "cli")
		require.NoError(t, err)
		assert.Equal(t, "cli", app.SessionID())
	})
}

func TestApp_InitAndSize(t *testing.T) {
	app, err := NewApp(&Ports{Ask: &mockAskService{}}, "s")
	require.NoError(t, err)

	assert.NotNil(t, app.Init())
	assert.Equal(t, "Initialising...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "agenda")
}

func TestApp_NewSession(t *testing.T) {
	app, err := NewApp(&Ports{Ask: &mockAskService{}}, "s")
	require.NoError(t, err)
	app.newSessionID = func() string { return "fresh" }

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, "fresh", app.SessionID())
}

func TestApp_QuitMessage(t *testing.T) {
	app, err := NewApp(&Ports{Ask: &mockAskService{}}, "s")
	require.NoError(t, err)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
