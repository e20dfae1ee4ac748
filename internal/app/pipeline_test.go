package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

// fakeOllama embeds texts by keyword and records generation prompts.
type fakeOllama struct {
	mu      sync.Mutex
	prompts []string
}

var keywords = []string{"jazz", "poterie", "marché"}

func keywordVector(text string) []float64 {
	text = strings.ToLower(text)
	v := make([]float64, len(keywords)+1)
	for i, k := range keywords {
		if strings.Contains(text, k) {
			v[i] = 1
		}
	}
	v[len(keywords)] = 0.1
	return v
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/embed":
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := make([][]float64, len(req.Input))
		for i, text := range req.Input {
			out[i] = keywordVector(text)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": out})
	case "/api/generate":
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.prompts = append(f.prompts, req.Prompt)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "Voici un événement.", "done": true})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeOllama) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func writeEvents(t *testing.T) string {
	t.Helper()
	lines := []string{
		`{"event_id":"e1","title":"Nuit du jazz","vectorise_text":"Nuit du jazz au parc de la Tête d'Or","dates_text":"Première date : 05/12/2025"}`,
		`{"event_id":"e2","title":"Atelier poterie","vectorise_text":"Atelier poterie pour enfants","dates_text":"Première date : 06/12/2025"}`,
		`{"event_id":"e3","title":"Marché de Noël","vectorise_text":"Grand marché de Noël place Carnot","dates_text":"Première date : 07/12/2025"}`,
	}
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestPipeline_IngestRebuildAsk(t *testing.T) {
	fake := &fakeOllama{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s := localSettings(t)
	s.Embedding.BaseURL = srv.URL
	s.Embedding.Dimensions = len(keywords) + 1
	s.LLM.BaseURL = srv.URL
	s.Retrieval.TopK = 1

	a, err := New(context.Background(), s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	ctx := context.Background()

	conn, err := a.Connector(SourceJSONL, writeEvents(t))
	require.NoError(t, err)
	stats, err := a.Ingest.Ingest(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.EventsRead)
	assert.Equal(t, 3, stats.Chunks)

	info, err := a.Ask.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Snapshot.BuildID, info.BuildID)
	assert.Equal(t, 3, info.Count)

	history, err := a.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, info.BuildID, history[0].BuildID)

	answer, err := a.Ask.Ask(ctx, domain.Question{Text: "Un atelier de poterie ?", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "Voici un événement.", answer.Response)
	require.Len(t, answer.Retrieved, 1)
	assert.Equal(t, "e2", answer.Retrieved[0].EventID)
	assert.Contains(t, fake.lastPrompt(), "Atelier poterie pour enfants")

	// A follow-up in the same session reuses the last event.
	followUp, err := a.Ask.Ask(ctx, domain.Question{Text: "Plus de détails sur cet atelier", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RetrievalModeFollowUp, followUp.Mode)
	assert.Equal(t, "e2", followUp.Retrieved[0].EventID)

	assert.Equal(t, []string{"Atelier poterie pour enfants"}, a.Ask.LastContext())
}
