package models

import "fmt"

// Operation identifies a text-processing operation supported by the gateway.
type Operation string

// Supported operations. The set is closed: anything else is rejected at the
// API boundary before it reaches the pipeline.
const (
	OperationSummarize Operation = "summarize"
	OperationSentiment Operation = "sentiment"
	OperationKeyPoints Operation = "key_points"
	OperationQuestions Operation = "questions"
	OperationQA        Operation = "qa"
)

// Operations lists every supported operation in a stable order.
var Operations = []Operation{
	OperationSummarize,
	OperationSentiment,
	OperationKeyPoints,
	OperationQuestions,
	OperationQA,
}

// ParseOperation validates a raw operation string.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !op.Valid() {
		return "", fmt.Errorf("unsupported operation %q", s)
	}
	return op, nil
}

// Valid reports whether the operation belongs to the closed set.
func (o Operation) Valid() bool {
	switch o {
	case OperationSummarize, OperationSentiment, OperationKeyPoints, OperationQuestions, OperationQA:
		return true
	}
	return false
}

// RequiresQuestion reports whether the operation needs a question field.
func (o Operation) RequiresQuestion() bool {
	return o == OperationQA
}

func (o Operation) String() string {
	return string(o)
}

// OptionInt reads an integer option, tolerating the float64 values that
// arrive through JSON decoding.
func OptionInt(options map[string]interface{}, key string, def int) int {
	if options == nil {
		return def
	}
	switch v := options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}
