package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
)

type mockAskService struct {
	answer     *domain.Answer
	askErr     error
	info       domain.SnapshotInfo
	rebuildErr error
	health     driving.HealthStatus
	last       []string

	questions []domain.Question
	rebuilds  int
}

func (m *mockAskService) Ask(_ context.Context, q domain.Question) (*domain.Answer, error) {
	m.questions = append(m.questions, q)
	if m.askErr != nil {
		return nil, m.askErr
	}
	return m.answer, nil
}

func (m *mockAskService) Rebuild(_ context.Context) (domain.SnapshotInfo, error) {
	m.rebuilds++
	return m.info, m.rebuildErr
}

func (m *mockAskService) Health(_ context.Context) driving.HealthStatus { return m.health }

func (m *mockAskService) LastContext() []string { return m.last }

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

func TestAsk_Success(t *testing.T) {
	mock := &mockAskService{answer: &domain.Answer{
		Question: "Quels concerts ?",
		Response: "Un concert de jazz.",
		Context:  []string{"Jazz au parc"},
	}}
	router := NewRouter(mock, RouterConfig{})

	rec := do(t, router, http.MethodPost, "/ask", `{"question":"Quels concerts ?","session_id":"s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Quels concerts ?", resp.Question)
	assert.Equal(t, "Un concert de jazz.", resp.Response)
	assert.Equal(t, []string{"Jazz au parc"}, resp.Context)

	require.Len(t, mock.questions, 1)
	assert.Equal(t, "s1", mock.questions[0].SessionID)
}

func TestAsk_EmptyContextIsArray(t *testing.T) {
	mock := &mockAskService{answer: &domain.Answer{Question: "q", Response: "r"}}
	router := NewRouter(mock, RouterConfig{})

	rec := do(t, router, http.MethodPost, "/ask", `{"question":"q"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"context":[]`)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", `{"question":""}`},
		{"whitespace", `{"question":"   \n\t"}`},
		{"missing", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockAskService{}
			router := NewRouter(mock, RouterConfig{})

			rec := do(t, router, http.MethodPost, "/ask", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			apiErr := decodeError(t, rec)
			assert.Equal(t, EmptyQuestionMessage, apiErr.Message)
			assert.Equal(t, CodeInvalidInput, apiErr.Code)
			assert.Empty(t, mock.questions)
		})
	}
}

func TestAsk_MalformedBody(t *testing.T) {
	router := NewRouter(&mockAskService{}, RouterConfig{})

	rec := do(t, router, http.MethodPost, "/ask", `{"question":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidInput), http.StatusBadRequest, CodeInvalidInput},
		{fmt.Errorf("no snapshot: %w", domain.ErrIndexUnavailable), http.StatusServiceUnavailable, CodeIndexUnavailable},
		{fmt.Errorf("embed: %w", domain.ErrEmbedding), http.StatusBadGateway, CodeUpstream},
		{fmt.Errorf("generate: %w", domain.ErrGeneration), http.StatusBadGateway, CodeUpstream},
		{fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			router := NewRouter(&mockAskService{askErr: tt.err}, RouterConfig{})

			rec := do(t, router, http.MethodPost, "/ask", `{"question":"q"}`)

			assert.Equal(t, tt.status, rec.Code)
			apiErr := decodeError(t, rec)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.err.Error(), apiErr.Message)
		})
	}
}

func TestRebuild_Success(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			mock := &mockAskService{info: domain.SnapshotInfo{BuildID: "b1", Count: 4, Dimensions: 3}}
			router := NewRouter(mock, RouterConfig{})

			rec := do(t, router, method, "/rebuild", "")

			require.Equal(t, http.StatusOK, rec.Code)
			var resp RebuildResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "success", resp.Status)
			assert.Equal(t, RebuildMessage, resp.Message)
			assert.Equal(t, "b1", resp.Snapshot.BuildID)
			assert.Equal(t, 1, mock.rebuilds)
		})
	}
}

func TestRebuild_Failure(t *testing.T) {
	mock := &mockAskService{rebuildErr: fmt.Errorf("5 rows for 4 vectors: %w", domain.ErrIndexUnavailable)}
	router := NewRouter(mock, RouterConfig{})

	rec := do(t, router, http.MethodGet, "/rebuild", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, CodeIndexUnavailable, decodeError(t, rec).Code)
}

func TestHealth(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		mock := &mockAskService{health: driving.HealthStatus{
			Ready:    true,
			Snapshot: domain.SnapshotInfo{BuildID: "b1"},
		}}
		rec := do(t, NewRouter(mock, RouterConfig{}), http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"build_id":"b1"`)
	})

	t.Run("not ready", func(t *testing.T) {
		rec := do(t, NewRouter(&mockAskService{}, RouterConfig{}), http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ready":false`)
	})
}

func TestMetadata(t *testing.T) {
	t.Run("after ask", func(t *testing.T) {
		mock := &mockAskService{last: []string{"a", "b"}}
		rec := do(t, NewRouter(mock, RouterConfig{}), http.MethodGet, "/metadata", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp MetadataResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{"a", "b"}, resp.Context)
	})

	t.Run("before any ask", func(t *testing.T) {
		rec := do(t, NewRouter(&mockAskService{}, RouterConfig{}), http.MethodGet, "/metadata", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"context":[]}`, rec.Body.String())
	})
}

func TestCORS(t *testing.T) {
	router := NewRouter(&mockAskService{}, RouterConfig{AllowOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewRouter(&mockAskService{}, RouterConfig{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, srv.Run(ctx))
}
