// Package extraction turns free-text completion output into typed records.
//
// A Client renders a prompt template, sends it (with an optional attachment)
// to a completion provider under a fixed timeout, and converts the reply into
// the fields the caller declared. Malformed replies are normal: missing or
// ill-typed fields are filled by per-field default policies and the result is
// marked FallbackUsed. Only a failed call to the provider is an error.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tyler-sommer/stick"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 30 * time.Second

// ErrInvalidRequest reports a malformed request. No remote call is made.
var ErrInvalidRequest = errors.New("invalid extraction request")

// Status mirrors the persisted extraction status.
type Status = domain.ExtractionStatus

const (
	Parsed       = domain.ExtractionParsed
	FallbackUsed = domain.ExtractionFallbackUsed
	Rejected     = domain.ExtractionRejected
)

// Request is one extraction, built per user action and never persisted.
type Request struct {
	PromptTemplate string
	Vars           map[string]any
	Shape          Shape
	Attachment     *port.Attachment
}

// Extractor is implemented by Client. Services depend on it.
type Extractor interface {
	Extract(ctx context.Context, req Request) (*Result, error)
}

// Client is safe for concurrent use. It keeps no state between calls.
type Client struct {
	provider port.CompletionProvider
	env      *stick.Env
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates an extraction client over the given completion provider.
func NewClient(provider port.CompletionProvider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		env:      stick.New(nil),
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract renders the request, calls the provider, and converts the reply.
//
// It returns ErrInvalidRequest (and a nil result) for an empty rendered prompt,
// an empty shape, or an unusable attachment. When the provider call fails or
// times out it returns a Rejected result with nil Fields and an error wrapping
// domain.ErrCompletionUnavailable. Otherwise the error is nil and Fields holds
// a value for every declared field.
func (c *Client) Extract(ctx context.Context, req Request) (*Result, error) {
	if err := req.Shape.validate(); err != nil {
		return nil, err
	}
	prompt, err := c.render(req)
	if err != nil {
		return nil, err
	}
	attachment, err := prepareAttachment(req.Attachment)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.provider.Complete(callCtx, port.CompletionInput{
		Prompt:     prompt,
		Attachment: attachment,
	})
	if err != nil {
		c.logger.Warn("extraction.Extract: completion failed", "error", err)
		return &Result{Status: Rejected}, fmt.Errorf("extraction.Extract: %w: %w", domain.ErrCompletionUnavailable, err)
	}
	if out == nil {
		out = &port.CompletionOutput{}
	}

	result := convert(out.Text, req.Shape)
	result.Model = out.Model
	if result.Status == FallbackUsed {
		c.logger.Info("extraction.Extract: fallback used",
			"model", out.Model, "defaulted", result.Defaulted, "raw_len", len(out.Text))
	}
	return result, nil
}

func (c *Client) render(req Request) (string, error) {
	if strings.TrimSpace(req.PromptTemplate) == "" {
		return "", fmt.Errorf("%w: empty prompt template", ErrInvalidRequest)
	}
	vars := make(map[string]stick.Value, len(req.Vars))
	for k, v := range req.Vars {
		vars[k] = v
	}
	var sb strings.Builder
	if err := c.env.Execute(req.PromptTemplate, &sb, vars); err != nil {
		return "", fmt.Errorf("%w: rendering template: %v", ErrInvalidRequest, err)
	}
	prompt := strings.TrimSpace(sb.String())
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is empty after substitution", ErrInvalidRequest)
	}
	return prompt, nil
}

// prepareAttachment fills in a missing MIME type by sniffing the payload and
// rejects types no completion provider accepts.
func prepareAttachment(a *port.Attachment) (*port.Attachment, error) {
	if a == nil {
		return nil, nil
	}
	if len(a.Data) == 0 {
		return nil, fmt.Errorf("%w: attachment is empty", ErrInvalidRequest)
	}
	mime := strings.TrimSpace(a.MIMEType)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "" || mime == "application/octet-stream" {
		mime = mimetype.Detect(a.Data).String()
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = mime[:i]
		}
	}
	if !SupportedMIME(mime) {
		return nil, fmt.Errorf("%w: unsupported attachment type %s", ErrInvalidRequest, mime)
	}
	return &port.Attachment{Data: a.Data, MIMEType: mime}, nil
}

// SupportedMIME reports whether an attachment of this type can be sent to a provider.
func SupportedMIME(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/webp", "image/gif", "image/heic", "image/heif", "application/pdf":
		return true
	}
	return false
}

// convert is the pure part of Extract: normalize, parse, and fill the shape.
func convert(raw string, shape Shape) *Result {
	text := Normalize(raw)
	obj, parsed := parseObject(text)

	result := &Result{
		Fields: make(map[string]any, len(shape)),
		Raw:    raw,
		Status: Parsed,
	}
	if !parsed {
		result.Status = FallbackUsed
	}

	for _, f := range shape {
		if parsed {
			if v, present := obj[f.Name]; present && v != nil {
				if cv, ok := coerce(f.Type, v); ok {
					result.Fields[f.Name] = cv
					continue
				}
				if !f.Optional && f.Type != Confidence {
					result.Status = FallbackUsed
				}
			} else if !f.Optional && f.Type != Confidence {
				result.Status = FallbackUsed
			}
		}
		result.Fields[f.Name] = defaultValue(f, text)
		result.Defaulted = append(result.Defaulted, f.Name)
	}
	return result
}

func defaultValue(f Field, text string) any {
	if f.Type == Confidence || f.Default == nil {
		return zeroValue(f.Type)
	}
	v := f.Default(text)
	if v == nil {
		return zeroValue(f.Type)
	}
	if cv, ok := coerce(f.Type, v); ok {
		return cv
	}
	return zeroValue(f.Type)
}

// Normalize trims the reply and strips a code fence, optionally tagged with a
// language such as json, when the fence wraps the whole reply. Text around an
// inner fenced block is kept as is.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) < 6 || !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") {
		return s
	}
	inner := s[3 : len(s)-3]
	if strings.Contains(inner, "```") {
		return s
	}
	return strings.TrimSpace(dropFenceTag(inner))
}

// fencedBlock returns the body of the first fenced block inside text.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(dropFenceTag(rest[:end])), true
}

func dropFenceTag(s string) string {
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && isFenceTag(s[:nl]) {
		return s[nl+1:]
	}
	return s
}

func isFenceTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// parseObject decodes text as a JSON object. When the model wrapped the object
// in prose it retries on the first fenced block, then on the outermost {...}
// slice.
func parseObject(text string) (map[string]any, bool) {
	if obj, ok := decodeObject(text); ok {
		return obj, true
	}
	if block, ok := fencedBlock(text); ok {
		if obj, ok := decodeObject(block); ok {
			return obj, true
		}
	}
	i := strings.IndexByte(text, '{')
	j := strings.LastIndexByte(text, '}')
	if i < 0 || j <= i {
		return nil, false
	}
	return decodeObject(text[i : j+1])
}

func decodeObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
