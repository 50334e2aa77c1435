package completion_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"telehealth/internal/completion"
)

func TestNewRateLimitError_DefaultsTo60s(t *testing.T) {
	err := completion.NewRateLimitError("gemini", errors.New("429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "gemini rate limited")
}

func TestRateLimitError_Unwrap(t *testing.T) {
	base := errors.New("too many requests")
	err := completion.NewRateLimitError("openai", base, 5)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, 5*time.Second, err.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, completion.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, completion.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, 12, completion.ParseRetryAfterHeader("12"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", completion.Truncate("abc", 5))
	assert.Equal(t, "ab...", completion.Truncate("abcdef", 2))
}
