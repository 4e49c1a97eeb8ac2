package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/roastume/internal/llm"
)

func newTestClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1/",
		Timeout: timeout,
	}, nil)
}

func writeCompletion(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
}

func TestGenerateReview_RequestShape(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(t, w, "Overall Score: 8/10")
	}, time.Second)

	out, err := c.GenerateReview(context.Background(), "Jane Doe\nGo developer")
	require.NoError(t, err)
	assert.Equal(t, "Overall Score: 8/10", out)

	assert.Equal(t, "deepseek-chat", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	assert.Equal(t, 2000, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, llm.SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Contains(t, got.Messages[1].Content, "Jane Doe\nGo developer")
	assert.NotContains(t, got.Messages[1].Content, "{cv_content}")
}

func TestGenerateReview_Non2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}, time.Second)

	_, err := c.GenerateReview(context.Background(), "cv")
	require.Error(t, err)

	var ge *llm.GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, llm.FailureStatus, ge.Kind)
	assert.Equal(t, http.StatusInternalServerError, ge.StatusCode)
}

func TestGenerateReview_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := c.GenerateReview(context.Background(), "cv")
	require.Error(t, err)
	assert.Equal(t, llm.FailureTimeout, llm.KindOf(err))
}

func TestGenerateReview_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: url, Timeout: time.Second}, nil)
	_, err := c.GenerateReview(context.Background(), "cv")
	require.Error(t, err)
	assert.Equal(t, llm.FailureTransport, llm.KindOf(err))
}

func TestGenerateReview_MalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"no choices", `{"choices":[]}`},
		{"content not string", `{"choices":[{"message":{"content":42}}]}`},
		{"missing message", `{"choices":[{"text":"hi"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}, time.Second)

			_, err := c.GenerateReview(context.Background(), "cv")
			require.Error(t, err)
			assert.Equal(t, llm.FailureDecode, llm.KindOf(err))
		})
	}
}

func TestGenerateReview_EmptyContentIsNotAFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(t, w, "   ")
	}, time.Second)

	out, err := c.GenerateReview(context.Background(), "cv")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "from-env")
	c := NewClient(Config{}, nil)

	assert.Equal(t, "from-env", c.cfg.APIKey)
	assert.Equal(t, "https://api.deepseek.com/v1", c.cfg.BaseURL)
	assert.Equal(t, "deepseek-chat", c.cfg.Model)
	assert.Equal(t, 2000, c.cfg.MaxTokens)
	assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
}
