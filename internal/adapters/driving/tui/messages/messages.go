// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/custodia-labs/agenda/internal/core/domain"
)

// AskRequested is a command to answer a question.
type AskRequested struct {
	Question string
}

// AnswerReceived carries the answer, or the failure, back to the model.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// SessionReset is sent when the user starts a new conversation.
type SessionReset struct {
	SessionID string
}

// Quit is sent to exit the application.
type Quit struct{}
