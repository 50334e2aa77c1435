package completion_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"telehealth/internal/completion"
	"telehealth/internal/logging"
	"telehealth/internal/port"
	"telehealth/mocks"
)

var testInput = port.CompletionInput{Prompt: "read this prescription"}

func output(model string) *port.CompletionOutput {
	return &port.CompletionOutput{Text: `{"medicines":[]}`, Model: model}
}

func TestFallbackProvider_FirstSucceeds(t *testing.T) {
	p1 := new(mocks.MockCompletionProvider)
	p2 := new(mocks.MockCompletionProvider)
	p1.On("Complete", mock.Anything, testInput).Return(output("claude"), nil)

	fp := completion.NewFallbackProvider(
		[]port.CompletionProvider{p1, p2},
		[]string{"claude", "gemini"},
		logging.Discard(),
	)

	result, err := fp.Complete(context.Background(), testInput)

	require.NoError(t, err)
	assert.Equal(t, "claude", result.Model)
	p2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackProvider_FirstFails_SecondSucceeds(t *testing.T) {
	p1 := new(mocks.MockCompletionProvider)
	p2 := new(mocks.MockCompletionProvider)
	p1.On("Complete", mock.Anything, testInput).Return(nil, errors.New("502 bad gateway")).Once()
	p2.On("Complete", mock.Anything, testInput).Return(output("gemini"), nil).Once()

	fp := completion.NewFallbackProvider(
		[]port.CompletionProvider{p1, p2},
		[]string{"claude", "gemini"},
		logging.Discard(),
	)

	result, err := fp.Complete(context.Background(), testInput)

	require.NoError(t, err)
	assert.Equal(t, "gemini", result.Model)
	p1.AssertNumberOfCalls(t, "Complete", 1)
}

func TestFallbackProvider_RateLimitOpensCircuit(t *testing.T) {
	p1 := new(mocks.MockCompletionProvider)
	p2 := new(mocks.MockCompletionProvider)
	p1.On("Complete", mock.Anything, testInput).
		Return(nil, completion.NewRateLimitError("claude", errors.New("429"), 60)).Once()
	p2.On("Complete", mock.Anything, testInput).Return(output("gemini"), nil).Twice()

	fp := completion.NewFallbackProvider(
		[]port.CompletionProvider{p1, p2},
		[]string{"claude", "gemini"},
		logging.Discard(),
	)

	_, err := fp.Complete(context.Background(), testInput)
	require.NoError(t, err)

	// Second call skips the rate-limited provider entirely.
	result, err := fp.Complete(context.Background(), testInput)
	require.NoError(t, err)
	assert.Equal(t, "gemini", result.Model)
	p1.AssertNumberOfCalls(t, "Complete", 1)
	p2.AssertNumberOfCalls(t, "Complete", 2)
}

func TestFallbackProvider_AllRateLimited(t *testing.T) {
	p1 := new(mocks.MockCompletionProvider)
	p2 := new(mocks.MockCompletionProvider)
	p1.On("Complete", mock.Anything, testInput).
		Return(nil, completion.NewRateLimitError("claude", errors.New("429"), 30))
	p2.On("Complete", mock.Anything, testInput).
		Return(nil, completion.NewRateLimitError("gemini", errors.New("429"), 90))

	fp := completion.NewFallbackProvider(
		[]port.CompletionProvider{p1, p2},
		[]string{"claude", "gemini"},
		logging.Discard(),
	)

	_, err := fp.Complete(context.Background(), testInput)

	var rlErr *completion.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "all", rlErr.Provider)
	assert.LessOrEqual(t, rlErr.RetryAfter.Seconds(), 30.0)
}

func TestFallbackProvider_AllFail(t *testing.T) {
	p1 := new(mocks.MockCompletionProvider)
	p2 := new(mocks.MockCompletionProvider)
	p1.On("Complete", mock.Anything, testInput).
		Return(nil, completion.NewRateLimitError("claude", errors.New("429"), 30))
	p2.On("Complete", mock.Anything, testInput).Return(nil, errors.New("invalid api key"))

	fp := completion.NewFallbackProvider(
		[]port.CompletionProvider{p1, p2},
		[]string{"claude", "gemini"},
		logging.Discard(),
	)

	_, err := fp.Complete(context.Background(), testInput)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all completion providers failed")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestFallbackProvider_StopsOnCancelledContext(t *testing.T) {
	p1 := new(mocks.MockCompletionProvider)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fp := completion.NewFallbackProvider(
		[]port.CompletionProvider{p1},
		[]string{"claude"},
		logging.Discard(),
	)

	_, err := fp.Complete(ctx, testInput)

	assert.ErrorIs(t, err, context.Canceled)
	p1.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}
