package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New("mistral", server.URL+"/v1/", time.Second, BearerAuth("k"))
	assert.Equal(t, server.URL+"/v1", c.BaseURL())
	assert.Equal(t, "mistral", c.Provider())

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Post(context.Background(), "/chat", map[string]string{"q": "x"}, &out))
	assert.True(t, out.OK)
}

func TestClient_GetDiscardsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := New("openai", server.URL, time.Second, nil)
	assert.NoError(t, c.Get(context.Background(), "/models", nil))
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		message   string
		kind      string
		retryable bool
	}{
		{name: "plain string", status: 404, body: `{"error":"model not found"}`, message: "model not found"},
		{name: "object", status: 401, body: `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			message: "invalid x-api-key", kind: "authentication_error"},
		{name: "message field", status: 429, body: `{"message":"Requests rate limit exceeded"}`,
			message: "Requests rate limit exceeded", retryable: true},
		{name: "detail string", status: 400, body: `{"detail":"bad model"}`, message: "bad model"},
		{name: "detail list", status: 422, body: `{"detail":[{"msg":"field required"}]}`,
			message: `[{"msg":"field required"}]`},
		{name: "raw text", status: 502, body: "upstream down", message: "upstream down", retryable: true},
		{name: "empty", status: 503, body: "", message: "Service Unavailable", retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := New("test", server.URL, time.Second, nil).Post(context.Background(), "/", struct{}{}, &struct{}{})

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.Status)
			assert.Equal(t, tt.message, se.Message)
			assert.Equal(t, tt.kind, se.Type)
			assert.Equal(t, tt.retryable, se.Retryable())
			assert.Contains(t, err.Error(), "test error (status")
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New("slow", server.URL, 20*time.Millisecond, nil)
	err := c.Get(context.Background(), "/", &struct{}{})
	assert.Error(t, err)
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"broken":`))
	}))
	defer server.Close()

	err := New("x", server.URL, time.Second, nil).Get(context.Background(), "/", &struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
