package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telehealth/internal/completion"
	"telehealth/internal/completion/claude"
	"telehealth/internal/config"
	"telehealth/internal/port"
)

func newTestProvider(serverURL string) *claude.Provider {
	cfg := &config.CompletionProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  5,
	}
	return claude.NewProviderWithEndpoint(cfg, serverURL)
}

func TestClaudeProvider_Complete_TextOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])

		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		require.Len(t, content, 1)
		block := content[0].(map[string]interface{})
		assert.Equal(t, "text", block["type"])
		assert.Equal(t, "hello", block["text"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": "```json\n{\"reply\":\"hi\"}"},
				{"type": "text", "text": "\n```"},
			},
		})
	}))
	defer server.Close()

	out, err := newTestProvider(server.URL).Complete(context.Background(), port.CompletionInput{Prompt: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "```json\n{\"reply\":\"hi\"}\n```", out.Text)
	assert.Equal(t, "claude-sonnet-4-20250514", out.Model)
}

func TestClaudeProvider_Complete_ImageAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		msg := reqBody["messages"].([]interface{})[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		require.Len(t, content, 2)
		img := content[0].(map[string]interface{})
		assert.Equal(t, "image", img["type"])
		source := img["source"].(map[string]interface{})
		assert.Equal(t, "image/png", source["media_type"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":   "claude-sonnet-4-20250514",
			"content": []map[string]interface{}{{"type": "text", "text": `{"type":"heart_rate"}`}},
		})
	}))
	defer server.Close()

	out, err := newTestProvider(server.URL).Complete(context.Background(), port.CompletionInput{
		Prompt:     "read it",
		Attachment: &port.Attachment{Data: []byte("png"), MIMEType: "image/png"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"type":"heart_rate"}`, out.Text)
}

func TestClaudeProvider_Complete_UnsupportedAttachment(t *testing.T) {
	p := newTestProvider("http://127.0.0.1:1")

	_, err := p.Complete(context.Background(), port.CompletionInput{
		Prompt:     "x",
		Attachment: &port.Attachment{Data: []byte("x"), MIMEType: "image/heic"},
	})

	assert.Error(t, err)
}

func TestClaudeProvider_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Complete(context.Background(), port.CompletionInput{Prompt: "x"})

	var rlErr *completion.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, float64(7), rlErr.RetryAfter.Seconds())
}

func TestClaudeProvider_Complete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid x-api-key"}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Complete(context.Background(), port.CompletionInput{Prompt: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClaudeProvider_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Complete(context.Background(), port.CompletionInput{Prompt: "x"})

	assert.Error(t, err)
}
