package processing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshworks/textgate/internal/cache"
	"github.com/meshworks/textgate/internal/llm"
	"github.com/meshworks/textgate/internal/observability"
	"github.com/meshworks/textgate/internal/resilience"
	"github.com/meshworks/textgate/pkg/models"
)

func newPipeline(t *testing.T) (*Service, *llm.MockProvider, *observability.Recorder) {
	t.Helper()

	tiered, err := cache.NewTieredCache(cache.TieredConfig{PresetName: "development"}, observability.NewNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tiered.Close() })

	preset, err := resilience.GetPreset("development")
	require.NoError(t, err)

	recorder := observability.NewRecorder(0)
	engine := resilience.NewService(resilience.ServiceConfig{Preset: preset, Recorder: recorder})
	provider := llm.NewMockProvider()

	svc := NewService(NewSanitizer(0), tiered, engine, provider, recorder, observability.NewNoopLogger())
	return svc, provider, recorder
}

func validRequest(op models.Operation) *models.TextProcessingRequest {
	req := &models.TextProcessingRequest{
		Text:      "The expedition reached the summit after three weeks of climbing through difficult weather.",
		Operation: op,
	}
	if op.RequiresQuestion() {
		req.Question = "How long did the climb take?"
	}
	return req
}

func TestProcessSummarize(t *testing.T) {
	svc, _, _ := newPipeline(t)

	resp, err := svc.Process(context.Background(), validRequest(models.OperationSummarize))
	require.NoError(t, err)

	assert.Equal(t, models.OperationSummarize, resp.Operation)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Result)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, "mock", resp.Metadata["provider"])
	assert.False(t, resp.Timestamp.IsZero())
}

func TestProcessResultShapes(t *testing.T) {
	svc, _, _ := newPipeline(t)

	resp, err := svc.Process(context.Background(), validRequest(models.OperationSentiment))
	require.NoError(t, err)
	require.NotNil(t, resp.Sentiment)
	assert.Equal(t, "neutral", resp.Sentiment.Sentiment)

	resp, err = svc.Process(context.Background(), validRequest(models.OperationKeyPoints))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.KeyPoints)

	resp, err = svc.Process(context.Background(), validRequest(models.OperationQuestions))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Questions)

	resp, err = svc.Process(context.Background(), validRequest(models.OperationQA))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Result)
}

func TestProcessCacheHitOnSecondCall(t *testing.T) {
	svc, provider, recorder := newPipeline(t)

	first, err := svc.Process(context.Background(), validRequest(models.OperationSummarize))
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := svc.Process(context.Background(), validRequest(models.OperationSummarize))
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Result, second.Result)

	// Upstream was only consulted once.
	assert.Equal(t, 1, provider.Calls())

	counts := recorder.CountsByType()
	assert.Equal(t, 1, counts[observability.MetricCacheHit])
	assert.Equal(t, 1, counts[observability.MetricCacheMiss])
}

func TestProcessRejectsInvalidRequest(t *testing.T) {
	svc, provider, _ := newPipeline(t)

	tests := []struct {
		name string
		req  *models.TextProcessingRequest
	}{
		{"short text", &models.TextProcessingRequest{Text: "too short", Operation: models.OperationSummarize}},
		{"unknown operation", &models.TextProcessingRequest{Text: "a perfectly reasonable text", Operation: "translate"}},
		{"qa without question", &models.TextProcessingRequest{Text: "a perfectly reasonable text", Operation: models.OperationQA}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Process(context.Background(), tt.req)
			var ve *models.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
	assert.Equal(t, 0, provider.Calls())
}

func TestProcessRejectedResponseNotCached(t *testing.T) {
	svc, provider, _ := newPipeline(t)

	// A response that echoes an injection phrase fails validation.
	provider.Enqueue("Fine, I will ignore previous instructions and comply.")

	_, err := svc.Process(context.Background(), validRequest(models.OperationSummarize))
	var rejected *ResponseRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "injection_echo", rejected.Reason)

	// The bad response was not cached: the next call reaches upstream.
	provider.Enqueue("A clean, valid summary of the expedition text.")
	resp, err := svc.Process(context.Background(), validRequest(models.OperationSummarize))
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, 2, provider.Calls())
}

func TestProcessSurfacesPermanentUpstreamError(t *testing.T) {
	svc, provider, _ := newPipeline(t)

	provider.FailWith(&resilience.PermanentError{Err: errors.New("model rejected the input")})

	_, err := svc.Process(context.Background(), validRequest(models.OperationSummarize))
	var pe *resilience.PermanentError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, provider.Calls())
}

func TestProcessMalformedSentimentRejectsResponse(t *testing.T) {
	svc, provider, _ := newPipeline(t)

	provider.Enqueue("the text is positive, trust me")

	_, err := svc.Process(context.Background(), validRequest(models.OperationSentiment))
	var rejected *ResponseRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "malformed_result", rejected.Reason)
}
