package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agenda/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestGenerate(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "Quels concerts ce soir ?", req.Prompt)
		require.NotNil(t, req.Options)
		assert.Equal(t, 128, req.Options.NumPredict)
		assert.InDelta(t, 0.2, req.Options.Temperature, 1e-9)

		_, _ = w.Write([]byte(`{"response":"  Un concert de jazz.\n","done":true}`))
	})

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	got, err := svc.Generate(context.Background(), "Quels concerts ce soir ?",
		driven.GenerateOptions{MaxTokens: 128, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "Un concert de jazz.", got)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
}

func TestGenerate_NoOptions(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.Options)
		_, _ = w.Write([]byte(`{"response":"ok","done":true}`))
	})

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.NoError(t, err)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"out of memory"}`},
		{name: "not done", status: http.StatusOK, body: `{"response":"Un","done":false,"done_reason":"load"}`},
		{name: "empty", status: http.StatusOK, body: `{"response":"  ","done":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			svc := NewLLMService(LLMConfig{BaseURL: server.URL})
			_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
			assert.Error(t, err)
		})
	}
}

func TestPing(t *testing.T) {
	server := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
	})

	assert.NoError(t, NewLLMService(LLMConfig{BaseURL: server.URL}).Ping(context.Background()))

	err := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "mistral"}).Ping(context.Background())
	assert.ErrorIs(t, err, ollamaapi.ErrModelNotPulled)
}
