package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agenda/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/agenda/internal/adapters/driven/ollamaapi"
)

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}

func TestEmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)
		assert.True(t, req.Truncate)
		assert.Equal(t, []string{"Fête des Lumières", "Nuits de Fourvière"}, req.Input)

		_, _ = w.Write([]byte(`{"model":"all-minilm","embeddings":[[0.5,0.5],[1,0]]}`))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 2})
	got, err := svc.EmbedBatch(context.Background(), []string{"Fête des Lumières", "Nuits de Fourvière"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.5, 0.5}, {1, 0}}, got)
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})
	got, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmbed_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"all-minilm\" not found, try pulling it first"}`))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})
	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	var apiErr *httpapi.StatusError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestEmbed_BadResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "count mismatch", body: `{"embeddings":[]}`},
		{name: "wrong dimensions", body: `{"embeddings":[[0.1,0.2,0.3]]}`},
		{name: "malformed", body: `{"embeddings":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 2})
			_, err := svc.Embed(context.Background(), "x")
			assert.Error(t, err)
		})
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"all-minilm:latest"}]}`))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})
	assert.NoError(t, svc.Ping(context.Background()))

	missing := NewEmbeddingService(Config{BaseURL: server.URL, Model: "nomic-embed-text"})
	assert.ErrorIs(t, missing.Ping(context.Background()), ollamaapi.ErrModelNotPulled)

	server.Close()
	assert.Error(t, svc.Ping(context.Background()))
}
