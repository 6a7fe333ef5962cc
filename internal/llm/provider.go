// Package llm abstracts the upstream model providers behind a single
// completion interface. Every provider pre-classifies its failures through
// the resilience taxonomy so the engine never inspects provider internals.
package llm

import (
	"context"
	"fmt"

	"github.com/meshworks/textgate/internal/config"
	"github.com/meshworks/textgate/internal/observability"
)

// CompletionRequest is one prompt sent upstream.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completion is the upstream's answer.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Provider produces completions. Implementations return errors already
// wrapped in the resilience taxonomy (transient, permanent, rate limit).
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// Default generation parameters applied when a request leaves them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)

func applyDefaults(req CompletionRequest) CompletionRequest {
	if req.Temperature == 0 {
		req.Temperature = DefaultTemperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	return req
}

// NewProvider builds the provider named by configuration.
func NewProvider(cfg config.LLMConfig, logger observability.Logger) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg, logger)
	case "bedrock":
		return NewBedrockProvider(cfg, logger)
	case "mock", "":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
