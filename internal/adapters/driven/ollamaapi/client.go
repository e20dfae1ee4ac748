// Package ollamaapi adds the Ollama specific calls shared by the embedding
// and generation adapters.
package ollamaapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/agenda/internal/adapters/driven/httpapi"
)

// DefaultBaseURL is where a local Ollama listens.
const DefaultBaseURL = "http://localhost:11434"

// ErrModelNotPulled indicates the server answers but lacks the model.
var ErrModelNotPulled = errors.New("ollama: model not pulled")

// Client is an httpapi client bound to one Ollama server.
type Client struct {
	*httpapi.Client
}

// New creates a client for baseURL, or DefaultBaseURL when empty.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{httpapi.New("ollama", baseURL, timeout, nil)}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// CheckModel confirms the server answers and has model available locally.
func (c *Client) CheckModel(ctx context.Context, model string) error {
	var tags tagsResponse
	if err := c.Get(ctx, "/api/tags", &tags); err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	for _, m := range tags.Models {
		if withTag(m.Name) == withTag(model) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (run 'ollama pull %s')", ErrModelNotPulled, model, model)
}

// withTag makes the implicit ":latest" tag explicit.
func withTag(name string) string {
	if strings.Contains(name, ":") {
		return name
	}
	return name + ":latest"
}
