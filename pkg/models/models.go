// Package models defines the request and response contracts shared by the
// API surface, the processing pipeline, and the cache.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Request and batch bounds enforced before any processing happens.
const (
	TextMinLength = 10
	TextMaxLength = 10000
	BatchMinSize  = 1
	BatchMaxSize  = 200
)

// ValidationError describes a request or response that failed validation.
// It is never retried and never cached.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a named field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TextProcessingRequest is the body of POST /v1/text_processing/process.
type TextProcessingRequest struct {
	Text      string                 `json:"text"`
	Operation Operation              `json:"operation"`
	Question  string                 `json:"question,omitempty"`
	Options   map[string]interface{} `json:"options,omitempty"`
	// UserMetadata is an opaque diagnostic map. It never participates in
	// cache keying.
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// Validate checks the request against the documented bounds. Text is trimmed
// in place so downstream stages see the canonical form.
func (r *TextProcessingRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return NewValidationError("text", "text must not be empty")
	}
	if length := utf8.RuneCountInString(r.Text); length < TextMinLength {
		return NewValidationError("text", fmt.Sprintf("text must be at least %d characters", TextMinLength))
	} else if length > TextMaxLength {
		return NewValidationError("text", fmt.Sprintf("text must be at most %d characters", TextMaxLength))
	}
	if !r.Operation.Valid() {
		return NewValidationError("operation", fmt.Sprintf("unsupported operation %q", r.Operation))
	}
	if r.Operation.RequiresQuestion() && strings.TrimSpace(r.Question) == "" {
		return NewValidationError("question", "question is required for the qa operation")
	}
	return nil
}

// SentimentResult is the structured result of the sentiment operation.
type SentimentResult struct {
	Sentiment   string  `json:"sentiment"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Validate checks the parsed sentiment payload.
func (s *SentimentResult) Validate() error {
	switch s.Sentiment {
	case "positive", "negative", "neutral":
	default:
		return NewValidationError("sentiment", fmt.Sprintf("unknown sentiment %q", s.Sentiment))
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return NewValidationError("confidence", "confidence must be within [0, 1]")
	}
	return nil
}

// TextProcessingResponse is returned by the pipeline. Exactly one of Result,
// Sentiment, KeyPoints or Questions is populated, depending on the operation.
type TextProcessingResponse struct {
	Operation        Operation              `json:"operation"`
	Success          bool                   `json:"success"`
	Result           string                 `json:"result,omitempty"`
	Sentiment        *SentimentResult       `json:"sentiment,omitempty"`
	KeyPoints        []string               `json:"key_points,omitempty"`
	Questions        []string               `json:"questions,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	ProcessingTimeMS int64                  `json:"processing_time_ms"`
	Timestamp        time.Time              `json:"timestamp"`
	CacheHit         bool                   `json:"cache_hit"`
}

// BatchTextProcessingRequest is the body of POST /v1/text_processing/batch.
type BatchTextProcessingRequest struct {
	Requests []TextProcessingRequest `json:"requests"`
	BatchID  string                  `json:"batch_id,omitempty"`
}

// Validate checks the batch bounds. Per-item validation happens inside the
// pipeline so one bad item does not reject the whole batch.
func (r *BatchTextProcessingRequest) Validate() error {
	if len(r.Requests) < BatchMinSize {
		return NewValidationError("requests", "batch must contain at least one request")
	}
	if len(r.Requests) > BatchMaxSize {
		return NewValidationError("requests", fmt.Sprintf("batch must contain at most %d requests", BatchMaxSize))
	}
	return nil
}

// Batch item statuses.
const (
	BatchItemCompleted = "completed"
	BatchItemFailed    = "failed"
)

// BatchItemResult reports the outcome of a single batch item.
type BatchItemResult struct {
	RequestIndex int                     `json:"request_index"`
	Status       string                  `json:"status"`
	Response     *TextProcessingResponse `json:"response,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

// BatchTextProcessingResponse aggregates the per-item results in input order.
type BatchTextProcessingResponse struct {
	BatchID               string            `json:"batch_id"`
	TotalRequests         int               `json:"total_requests"`
	Completed             int               `json:"completed"`
	Failed                int               `json:"failed"`
	Results               []BatchItemResult `json:"results"`
	TotalProcessingTimeMS int64             `json:"total_processing_time_ms"`
}

// ErrorDetail is the inner payload of every error body.
type ErrorDetail struct {
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Detail ErrorDetail `json:"detail"`
}

// NewErrorBody builds the standard error body.
func NewErrorBody(message string, context map[string]interface{}) ErrorBody {
	return ErrorBody{Detail: ErrorDetail{Message: message, Context: context}}
}

// AsValidationError unwraps err into a *ValidationError if possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
