package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/meshworks/textgate/internal/config"
	"github.com/meshworks/textgate/internal/observability"
	"github.com/meshworks/textgate/internal/resilience"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"

	// The resilience engine owns retries and its per-attempt timeout is
	// shorter than this; the client timeout is a last-ditch bound.
	openAIClientTimeout = 60 * time.Second
)

// OpenAIProvider talks to the OpenAI chat completions API (or any
// API-compatible endpoint selected via OPENAI_BASE_URL).
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     observability.Logger
}

// NewOpenAIProvider validates credentials and builds the client.
func NewOpenAIProvider(cfg config.LLMConfig, logger observability.Logger) (*OpenAIProvider, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, &config.ConfigurationError{
			Setting: "OPENAI_API_KEY",
			Message: "the openai provider requires an API key",
		}
	}

	baseURL := cfg.OpenAIBaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIProvider{
		apiKey:     cfg.OpenAIAPIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: openAIClientTimeout},
		logger:     logger,
	}, nil
}

// Name identifies the provider in logs and metadata.
func (p *OpenAIProvider) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends a chat completion request. Failures come back classified:
// network and 5xx errors transient, 429 rate-limited with the server's
// Retry-After, other 4xx permanent.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	req = applyDefaults(req)

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, &resilience.PermanentError{Err: fmt.Errorf("encoding chat request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, &resilience.PermanentError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &resilience.TransientError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &resilience.TransientError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		cause := fmt.Errorf("openai returned status %d: %s", resp.StatusCode, truncateBody(body))
		return nil, resilience.ClassifyHTTPStatus(resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), cause)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &resilience.TransientError{Err: fmt.Errorf("decoding chat response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return nil, &resilience.TransientError{Err: errors.New("chat response contained no choices")}
	}

	return &Completion{
		Text:             parsed.Choices[0].Message.Content,
		Model:            p.model,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
	}, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
