// Package processing implements the request pipeline: sanitization, cache
// lookup, prompt assembly, resilient dispatch, response validation and cache
// store, in that order.
package processing

import (
	"context"
	"time"

	"github.com/meshworks/textgate/internal/cache"
	"github.com/meshworks/textgate/internal/llm"
	"github.com/meshworks/textgate/internal/observability"
	"github.com/meshworks/textgate/internal/resilience"
	"github.com/meshworks/textgate/pkg/models"
)

// Service orchestrates the pipeline for single requests and exposes it to
// the batch orchestrator.
type Service struct {
	sanitizer  *Sanitizer
	cache      *cache.TieredCache
	resilience *resilience.Service
	provider   llm.Provider
	recorder   *observability.Recorder
	logger     observability.Logger
}

// NewService wires the pipeline.
func NewService(sanitizer *Sanitizer, tiered *cache.TieredCache, engine *resilience.Service, provider llm.Provider, recorder *observability.Recorder, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NewNoopLogger()
	}
	if recorder == nil {
		recorder = observability.NewRecorder(0)
	}
	return &Service{
		sanitizer:  sanitizer,
		cache:      tiered,
		resilience: engine,
		provider:   provider,
		recorder:   recorder,
		logger:     logger,
	}
}

// Process runs one request through the full pipeline. The returned error is
// one of the documented taxonomy: ValidationError, ResponseRejectedError,
// RetryExhaustedError, CircuitOpenError, or a context error.
func (s *Service) Process(ctx context.Context, req *models.TextProcessingRequest) (*models.TextProcessingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	op := req.Operation

	text := s.sanitizer.Sanitize(req.Text)
	question := s.sanitizer.Sanitize(req.Question)
	options := s.sanitizer.SanitizeOptions(req.Options)
	if text == "" {
		return nil, models.NewValidationError("text", "text is empty after sanitization")
	}

	key := cache.BuildKey(op, text, options, question)

	var cached models.TextProcessingResponse
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		cached.CacheHit = true
		s.record(observability.MetricCacheHit, op, time.Since(start), "")
		return &cached, nil
	} else if !cache.IsNotFound(err) {
		s.logger.Warn("cache lookup failed, continuing without cache", map[string]interface{}{
			"operation": op.String(),
			"error":     err.Error(),
		})
	}
	s.record(observability.MetricCacheMiss, op, 0, "")

	prompt := BuildPrompt(op, text, question, options)

	var completion *llm.Completion
	err := s.resilience.Execute(ctx, op.String(), func(attemptCtx context.Context) error {
		result, callErr := s.provider.Complete(attemptCtx, llm.CompletionRequest{
			System: prompt.System,
			Prompt: prompt.User,
		})
		if callErr != nil {
			return callErr
		}
		completion = result
		return nil
	})
	if err != nil {
		s.record(observability.MetricOperationCall, op, time.Since(start), err.Error())
		return nil, err
	}

	if err := ValidateResponse(op, completion.Text, prompt.System, text); err != nil {
		s.record(observability.MetricValidationEvent, op, 0, err.Error())
		return nil, err
	}

	resp, err := s.buildResponse(op, completion)
	if err != nil {
		s.record(observability.MetricValidationEvent, op, 0, err.Error())
		return nil, err
	}
	resp.ProcessingTimeMS = time.Since(start).Milliseconds()
	resp.Timestamp = time.Now().UTC()

	s.store(ctx, key, op, resp)
	s.record(observability.MetricOperationCall, op, time.Since(start), "")

	return resp, nil
}

// buildResponse maps the validated completion onto the operation's result
// shape. Parse failures are validation failures.
func (s *Service) buildResponse(op models.Operation, completion *llm.Completion) (*models.TextProcessingResponse, error) {
	resp := &models.TextProcessingResponse{
		Operation: op,
		Success:   true,
		Metadata: map[string]interface{}{
			"provider": s.provider.Name(),
			"model":    completion.Model,
		},
	}

	switch op {
	case models.OperationSentiment:
		sentiment, err := parseSentiment(completion.Text)
		if err != nil {
			return nil, err
		}
		resp.Sentiment = sentiment
	case models.OperationKeyPoints:
		resp.KeyPoints = parseList(completion.Text)
	case models.OperationQuestions:
		resp.Questions = parseList(completion.Text)
	default:
		resp.Result = completion.Text
	}
	return resp, nil
}

// store writes the response to the cache with the operation's TTL. Cache
// failures degrade, never fail the request; a cancelled context skips the
// write entirely.
func (s *Service) store(ctx context.Context, key string, op models.Operation, resp *models.TextProcessingResponse) {
	if ctx.Err() != nil {
		return
	}
	ttl := s.cache.TTLFor(op, nil)
	if ttl <= 0 {
		return
	}

	entry := *resp
	entry.CacheHit = false
	if err := s.cache.Set(ctx, key, &entry, ttl); err != nil {
		s.logger.Warn("cache store failed", map[string]interface{}{
			"operation": op.String(),
			"error":     err.Error(),
		})
	}
}

func (s *Service) record(metricType observability.MetricType, op models.Operation, duration time.Duration, errText string) {
	s.recorder.Append(observability.MetricRecord{
		Type:       metricType,
		Operation:  op.String(),
		Preset:     s.resilience.Preset().Name,
		DurationMS: duration.Milliseconds(),
		Error:      errText,
	})
}
