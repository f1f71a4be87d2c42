package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notmat/api/internal/config"
)

func newTestClient(baseURL string) *GeminiClient {
	return NewGeminiClient(&config.GeminiConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "gemini-2.5-flash",
		Temperature: 0.7,
		MaxTokens:   4000,
	})
}

func geminiResponse(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerateJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		genCfg := req["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genCfg["responseMimeType"])

		w.Write([]byte(geminiResponse(`{"meta": {}}`)))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).GenerateJSON(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"meta": {}}`, out)
}

func TestGenerateJSON_ConcatenatesParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "{\"a\":"}, {"text": " 1}"}]}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).GenerateJSON(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestGenerateJSON_BlockedPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback": {"blockReason": "SAFETY"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateJSON(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContentBlocked)
}

func TestGenerateJSON_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateJSON(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestGenerateJSON_TruncatedOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiResponse(`{"meta": {"detectedLang`)))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateJSON(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestGenerateJSON_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateJSON(context.Background(), "prompt")
	require.Error(t, err)
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, (*GeminiClient)(nil).IsConfigured())
	assert.False(t, NewGeminiClient(&config.GeminiConfig{}).IsConfigured())
	assert.True(t, newTestClient("http://localhost").IsConfigured())
}
