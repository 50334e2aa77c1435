package openai

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
	apiURL = "https://api.openai.com/v1/chat/completions"
)

// Provider implements port.CompletionProvider using the OpenAI Chat Completions API.
// BaseURL lets it target any OpenAI-compatible server.
type Provider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewProvider creates an OpenAI completion provider from a provider config.
func NewProvider(cfg *config.CompletionProviderConfig) *Provider {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
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
		model = "gpt-4o"
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
		"model":                 p.model,
		"max_completion_tokens": 4096,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
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
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, completion.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := completion.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, completion.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, p.model)
}

func buildContentBlocks(input port.CompletionInput) ([]map[string]interface{}, error) {
	var blocks []map[string]interface{}

	if a := input.Attachment; a != nil {
		dataURI := fmt.Sprintf("data:%s;base64,%s", a.MIMEType, base64.StdEncoding.EncodeToString(a.Data))
		switch {
		case a.MIMEType == "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type": "file",
				"file": map[string]interface{}{
					"filename":  "document.pdf",
					"file_data": dataURI,
				},
			})
		case strings.HasPrefix(a.MIMEType, "image/"):
			blocks = append(blocks, map[string]interface{}{
				"type": "image_url",
				"image_url": map[string]interface{}{
					"url": dataURI,
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

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.CompletionOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Model != "" {
		model = resp.Model
	}
	return &port.CompletionOutput{Text: resp.Choices[0].Message.Content, Model: model}, nil
}
