package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshworks/textgate/internal/config"
	"github.com/meshworks/textgate/internal/observability"
)

func TestMockScriptedReplies(t *testing.T) {
	p := NewMockProvider()
	p.Enqueue("first")
	p.FailWith(errors.New("boom"))
	p.Enqueue("second")

	got, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "first", got.Text)

	_, err = p.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	assert.EqualError(t, err, "boom")

	got, err = p.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "second", got.Text)
	assert.Equal(t, 3, p.Calls())
}

func TestMockDefaultReplies(t *testing.T) {
	p := NewMockProvider()

	got, err := p.Complete(context.Background(), CompletionRequest{Prompt: "Analyze the sentiment of the text."})
	require.NoError(t, err)
	assert.Contains(t, got.Text, `"sentiment"`)

	got, err = p.Complete(context.Background(), CompletionRequest{Prompt: "Extract the key points from the text."})
	require.NoError(t, err)
	assert.Contains(t, got.Text, "- ")

	got, err = p.Complete(context.Background(), CompletionRequest{Prompt: "Summarize the text."})
	require.NoError(t, err)
	assert.NotEmpty(t, got.Text)
	assert.Equal(t, "mock-model", got.Model)
}

func TestMockHonorsCancelledContext(t *testing.T) {
	p := NewMockProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Complete(ctx, CompletionRequest{Prompt: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProviderSelection(t *testing.T) {
	// The factory defaults to the mock so the gateway runs without
	// upstream credentials.
	p, err := NewProvider(config.LLMConfig{}, observability.NewNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())

	_, err = NewProvider(config.LLMConfig{Provider: "carrier-pigeon"}, observability.NewNoopLogger())
	assert.Error(t, err)
}
