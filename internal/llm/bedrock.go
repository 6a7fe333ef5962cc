package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/meshworks/textgate/internal/config"
	"github.com/meshworks/textgate/internal/observability"
	"github.com/meshworks/textgate/internal/resilience"
)

const (
	defaultBedrockRegion  = "us-east-1"
	defaultBedrockModelID = "anthropic.claude-3-haiku-20240307-v1:0"

	anthropicAPIVersion = "bedrock-2023-05-31"
)

// BedrockProvider invokes Anthropic models through Amazon Bedrock.
type BedrockProvider struct {
	client  *bedrockruntime.Client
	modelID string
	logger  observability.Logger
}

// NewBedrockProvider loads the ambient AWS credential chain and builds the
// runtime client. Credential problems surface here, not per request.
func NewBedrockProvider(cfg config.LLMConfig, logger observability.Logger) (*BedrockProvider, error) {
	region := cfg.AWSRegion
	if region == "" {
		region = defaultBedrockRegion
	}
	modelID := cfg.BedrockModelID
	if modelID == "" {
		modelID = defaultBedrockModelID
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, &config.ConfigurationError{
			Setting: "AWS_REGION",
			Message: fmt.Sprintf("loading AWS configuration: %v", err),
		}
	}

	return &BedrockProvider{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: modelID,
		logger:  logger,
	}, nil
}

// Name identifies the provider in logs and metadata.
func (p *BedrockProvider) Name() string { return "bedrock" }

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
	Temperature      float64            `json:"temperature"`
	MaxTokens        int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete invokes the configured model with the Anthropic messages body.
func (p *BedrockProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	req = applyDefaults(req)

	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicAPIVersion,
		System:           req.System,
		Messages:         []anthropicMessage{{Role: "user", Content: req.Prompt}},
		Temperature:      req.Temperature,
		MaxTokens:        req.MaxTokens,
	})
	if err != nil {
		return nil, &resilience.PermanentError{Err: fmt.Errorf("encoding bedrock request: %w", err)}
	}

	output, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, classifyBedrockError(err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(output.Body, &parsed); err != nil {
		return nil, &resilience.TransientError{Err: fmt.Errorf("decoding bedrock response: %w", err)}
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, &resilience.TransientError{Err: errors.New("bedrock response contained no text blocks")}
	}

	return &Completion{
		Text:             text.String(),
		Model:            p.modelID,
		PromptTokens:     parsed.Usage.InputTokens,
		CompletionTokens: parsed.Usage.OutputTokens,
	}, nil
}

// classifyBedrockError maps SDK failures onto the resilience taxonomy by
// exception name: throttling is a rate limit, validation and access errors
// are permanent, everything else (network, 5xx) is transient.
func classifyBedrockError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "ThrottlingException"), strings.Contains(msg, "TooManyRequests"):
		return &resilience.RateLimitError{Err: err}
	case strings.Contains(msg, "ValidationException"),
		strings.Contains(msg, "AccessDeniedException"),
		strings.Contains(msg, "ResourceNotFoundException"):
		return &resilience.PermanentError{Err: err}
	default:
		return &resilience.TransientError{Err: err}
	}
}
