package mcp

import (
	"context"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
)

// mockAskService is a test double for driving.AskService.
type mockAskService struct {
	answer     *domain.Answer
	err        error
	info       domain.SnapshotInfo
	rebuildErr error
	health     driving.HealthStatus
	last       []string

	questions []domain.Question
}

func (m *mockAskService) Ask(_ context.Context, q domain.Question) (*domain.Answer, error) {
	m.questions = append(m.questions, q)
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAskService) Rebuild(_ context.Context) (domain.SnapshotInfo, error) {
	return m.info, m.rebuildErr
}

func (m *mockAskService) Health(_ context.Context) driving.HealthStatus {
	return m.health
}

func (m *mockAskService) LastContext() []string {
	return m.last
}
