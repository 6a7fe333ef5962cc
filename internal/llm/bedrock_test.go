package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meshworks/textgate/internal/resilience"
)

func TestClassifyBedrockError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want resilience.FailureClass
	}{
		{"throttling", errors.New("operation error Bedrock Runtime: InvokeModel, ThrottlingException: rate exceeded"), resilience.ClassRateLimit},
		{"validation", errors.New("ValidationException: malformed body"), resilience.ClassPermanent},
		{"access denied", errors.New("AccessDeniedException: no model access"), resilience.ClassPermanent},
		{"unknown model", errors.New("ResourceNotFoundException: model not found"), resilience.ClassPermanent},
		{"service fault", errors.New("InternalServerException: try again"), resilience.ClassTransient},
		{"network", errors.New("dial tcp: connection refused"), resilience.ClassTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resilience.Classify(classifyBedrockError(tt.err)))
		})
	}
}

func TestClassifyBedrockErrorPassesContextErrors(t *testing.T) {
	assert.ErrorIs(t, classifyBedrockError(context.Canceled), context.Canceled)
	assert.ErrorIs(t, classifyBedrockError(context.DeadlineExceeded), context.DeadlineExceeded)
}
