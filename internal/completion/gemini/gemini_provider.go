package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"telehealth/internal/completion"
	"telehealth/internal/config"
	"telehealth/internal/port"
)

const (
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Provider implements port.CompletionProvider using Google's Gemini REST API.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewProvider creates a Gemini completion provider.
func NewProvider(cfg *config.CompletionProviderConfig) *Provider {
	return newProvider(cfg, "")
}

// NewProviderWithEndpoint creates a provider pointing at a custom API endpoint (for testing).
func NewProviderWithEndpoint(cfg *config.CompletionProviderConfig, endpoint string) *Provider {
	return newProvider(cfg, endpoint)
}

func newProvider(cfg *config.CompletionProviderConfig, endpoint string) *Provider {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if endpoint == "" {
		base := apiBaseURL
		if cfg.BaseURL != "" {
			base = strings.TrimRight(cfg.BaseURL, "/")
		}
		endpoint = fmt.Sprintf("%s/%s:generateContent", base, model)
	}
	return &Provider{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *Provider) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	var parts []map[string]interface{}
	if a := input.Attachment; a != nil {
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]interface{}{
				"mime_type": a.MIMEType,
				"data":      base64.StdEncoding.EncodeToString(a.Data),
			},
		})
	}
	parts = append(parts, map[string]interface{}{"text": input.Prompt})

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": parts,
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  4096,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, completion.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := completion.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, completion.NewRateLimitError("gemini", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, p.model)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

func parseResponse(body []byte, model string) (*port.CompletionOutput, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}
	return &port.CompletionOutput{Text: sb.String(), Model: model}, nil
}
