package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telehealth/internal/completion"
	"telehealth/internal/completion/gemini"
	"telehealth/internal/config"
	"telehealth/internal/port"
)

func newTestProvider(serverURL string) *gemini.Provider {
	cfg := &config.CompletionProviderConfig{
		Provider:     "gemini",
		APIKey:       "g-key",
		DefaultModel: "gemini-2.0-flash",
		TimeoutSecs:  5,
	}
	return gemini.NewProviderWithEndpoint(cfg, serverURL)
}

func TestGeminiProvider_Complete_InlineImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		contents := reqBody["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		require.Len(t, parts, 2)
		inline := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
		assert.Equal(t, "image/jpeg", inline["mime_type"])
		assert.Equal(t, "read the display", parts[1].(map[string]interface{})["text"])
		gen := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", gen["responseMimeType"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]interface{}{{"text": `{"confidence":80}`}}}},
			},
		})
	}))
	defer server.Close()

	out, err := newTestProvider(server.URL).Complete(context.Background(), port.CompletionInput{
		Prompt:     "read the display",
		Attachment: &port.Attachment{Data: []byte{0xff, 0xd8, 0xff}, MIMEType: "image/jpeg"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"confidence":80}`, out.Text)
	assert.Equal(t, "gemini-2.0-flash", out.Model)
}

func TestGeminiProvider_NewProvider_BaseURLPath(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	p := gemini.NewProvider(&config.CompletionProviderConfig{Provider: "gemini", BaseURL: server.URL + "/v1beta/models"})
	_, err := p.Complete(context.Background(), port.CompletionInput{Prompt: "x"})

	require.NoError(t, err)
	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", path)
}

func TestGeminiProvider_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Complete(context.Background(), port.CompletionInput{Prompt: "x"})

	var rlErr *completion.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 3*time.Second, rlErr.RetryAfter)
}

func TestGeminiProvider_Complete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Complete(context.Background(), port.CompletionInput{Prompt: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGeminiProvider_Complete_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestProvider(server.URL).Complete(ctx, port.CompletionInput{Prompt: "x"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
