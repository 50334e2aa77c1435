// Package googleai is a completion provider backed by the Google Gen AI SDK.
// It talks to the Gemini API with an API key, or to Vertex AI when a
// project and location are configured.
package googleai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"telehealth/internal/completion"
	"telehealth/internal/config"
	"telehealth/internal/port"
)

// Provider implements port.CompletionProvider using genai.Client.
type Provider struct {
	client *genai.Client
	model  string
}

// NewProvider creates a Gen AI SDK completion provider.
func NewProvider(ctx context.Context, cfg *config.CompletionProviderConfig) (*Provider, error) {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if cfg.Project != "" && cfg.Location != "" {
		cc.APIKey = ""
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(cfg.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	parts := make([]*genai.Part, 0, 2)
	if a := input.Attachment; a != nil {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(input.Prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		MaxOutputTokens:  4096,
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return nil, completion.NewRateLimitError("genai", err, 0)
		}
		return nil, fmt.Errorf("calling genai API: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil, fmt.Errorf("empty response from API: no content")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}

	model := p.model
	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}
	return &port.CompletionOutput{Text: sb.String(), Model: model}, nil
}
