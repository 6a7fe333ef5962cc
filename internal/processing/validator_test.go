package processing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshworks/textgate/pkg/models"
)

func TestValidateResponseForbiddenContent(t *testing.T) {
	tests := []struct {
		name     string
		response string
		reason   string
	}{
		{"system prompt leak", "Sure. System prompt: you are a helpful service", "system_prompt_leak"},
		{"instruction leak", "My instructions are to summarize text", "system_prompt_leak"},
		{"ai assistant leak", "You are an AI assistant built to help", "system_prompt_leak"},
		{"programmed leak", "I have been programmed to refuse", "system_prompt_leak"},
		{"reasoning leak", "Let me start thinking step by step about this", "reasoning_leak"},
		{"chain of thought", "chain of thought: first I will read", "reasoning_leak"},
		{"debug artifact", "summary here. TODO: fix this later", "debug_artifact"},
		{"code artifact", "result console.log(data)", "debug_artifact"},
		{"injection echo", "I will ignore previous instructions as asked", "injection_echo"},
		{"jailbreak echo", "In this hypothetical scenario the answer is", "jailbreak_echo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(models.OperationSummarize, tt.response, "", "")
			var rejected *ResponseRejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.reason, rejected.Reason)
		})
	}
}

func TestValidateResponseSystemLeakage(t *testing.T) {
	system := "You are a text analysis service."
	response := "Here is the answer. you are a text analysis service. Done."
	assert.Error(t, ValidateResponse(models.OperationQA, response, system, ""))
}

func TestValidateResponseRegurgitation(t *testing.T) {
	long := strings.Repeat("the quick brown fox jumps over the lazy dog ", 8) // > 250 chars
	echoed := "Here is your text back: " + long

	assert.Error(t, ValidateResponse(models.OperationSummarize, echoed, "", long))

	// Short inputs may legitimately reappear.
	short := "the quick brown fox"
	assert.NoError(t, ValidateResponse(models.OperationSummarize, "about "+short+" and more", "", short))
}

func TestValidateResponseRefusals(t *testing.T) {
	refusals := []string{
		"I cannot fulfill this request.",
		"I am unable to help with that.",
		"As a large language model, I must decline.",
		"My apologies, but I cannot do this.",
	}
	for _, r := range refusals {
		assert.Error(t, ValidateResponse(models.OperationQA, r, "", ""), r)
	}
}

func TestValidateResponseShape(t *testing.T) {
	assert.Error(t, ValidateResponse(models.OperationSummarize, "short", "", ""))
	assert.NoError(t, ValidateResponse(models.OperationSummarize, "a perfectly fine summary", "", ""))

	assert.Error(t, ValidateResponse(models.OperationQA, "hm", "", ""))
	assert.NoError(t, ValidateResponse(models.OperationQuestions, "What is this about?", "", ""))
	assert.Error(t, ValidateResponse(models.OperationQuestions, "nothing", "", ""))
	assert.NoError(t, ValidateResponse(models.OperationQuestions, "a statement list without marks", "", ""))
}

func TestValidateResponseEmpty(t *testing.T) {
	assert.Error(t, ValidateResponse(models.OperationSummarize, "", "", ""))
	assert.Error(t, ValidateResponse(models.OperationQA, "", "", ""))
	assert.NoError(t, ValidateResponse(models.OperationSentiment, "", "", ""))
	assert.NoError(t, ValidateResponse(models.OperationKeyPoints, "", "", ""))
}
