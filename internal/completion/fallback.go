package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"telehealth/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackProvider fails over across differently configured endpoints, in order,
// skipping those whose rate-limit circuit is open. Each endpoint is called at
// most once per Complete; it never retries the same endpoint.
type FallbackProvider struct {
	providers []port.CompletionProvider
	circuits  []*circuitState
	names     []string
	logger    *slog.Logger
}

// NewFallbackProvider creates a FallbackProvider from an ordered list of providers and their names.
func NewFallbackProvider(providers []port.CompletionProvider, names []string, logger *slog.Logger) *FallbackProvider {
	circuits := make([]*circuitState, len(providers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackProvider{
		providers: providers,
		circuits:  circuits,
		names:     names,
		logger:    logger,
	}
}

func (f *FallbackProvider) Complete(ctx context.Context, input port.CompletionInput) (*port.CompletionOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, p := range f.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Debug("completion.FallbackProvider: skipping provider",
				"provider", f.names[i], "circuit_open_until", resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := p.Complete(ctx, input)
		if err == nil {
			return out, nil
		}

		f.logger.Warn("completion.FallbackProvider: provider failed", "provider", f.names[i], "error", err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all completion providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all completion providers failed: %w", lastErr)
}
