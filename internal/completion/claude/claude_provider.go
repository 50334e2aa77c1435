package claude

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
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// Provider implements port.CompletionProvider using the Anthropic Messages API.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewProvider creates a Claude completion provider from a provider config.
func NewProvider(cfg *config.CompletionProviderConfig) *Provider {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages"
	}
	return newProvider(cfg, endpoint)
}

// NewProviderWithEndpoint creates a provider pointing at a custom API endpoint (for testing).
func NewProviderWithEndpoint(cfg *config.CompletionProviderConfig, endpoint string) *Provider {
	return newProvider(cfg, endpoint)
}

func newProvider(cfg *config.CompletionProviderConfig, endpoint string) *Provider {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Provider{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *Provider) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	contentBlocks, err := buildContentBlocks(input)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	reqBody := map[string]interface{}{
		"model":      p.model,
		"max_tokens": 4096,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
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
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, completion.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := completion.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, completion.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, p.model)
}

func buildContentBlocks(input port.CompletionInput) ([]map[string]interface{}, error) {
	var blocks []map[string]interface{}

	if a := input.Attachment; a != nil {
		encoded := base64.StdEncoding.EncodeToString(a.Data)
		switch {
		case a.MIMEType == "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type": "document",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": "application/pdf",
					"data":       encoded,
				},
			})
		case a.MIMEType == "image/jpeg", a.MIMEType == "image/png", a.MIMEType == "image/webp", a.MIMEType == "image/gif":
			blocks = append(blocks, map[string]interface{}{
				"type": "image",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": a.MIMEType,
					"data":       encoded,
				},
			})
		default:
			return nil, fmt.Errorf("unsupported attachment type: %s", a.MIMEType)
		}
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": input.Prompt,
	})

	return blocks, nil
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.CompletionOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if resp.Model != "" {
		model = resp.Model
	}
	return &port.CompletionOutput{Text: sb.String(), Model: model}, nil
}
