package processing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/meshworks/textgate/pkg/models"
)

// Forbidden-content patterns checked against every upstream response,
// case-insensitive. A match rejects the response before it is cached or
// returned.
var forbiddenPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"system_prompt_leak", regexp.MustCompile(`(?i)system prompt:`)},
	{"system_prompt_leak", regexp.MustCompile(`(?i)my instructions are`)},
	{"system_prompt_leak", regexp.MustCompile(`(?i)You are an AI assistant`)},
	{"system_prompt_leak", regexp.MustCompile(`(?i)As an AI, my purpose is`)},
	{"system_prompt_leak", regexp.MustCompile(`(?i)According to my instructions`)},
	{"system_prompt_leak", regexp.MustCompile(`(?i)I have been programmed to`)},
	{"reasoning_leak", regexp.MustCompile(`(?i)thinking step by step`)},
	{"reasoning_leak", regexp.MustCompile(`(?i)chain of thought:`)},
	{"reasoning_leak", regexp.MustCompile(`(?i)internal thoughts:`)},
	{"debug_artifact", regexp.MustCompile(`(?i)debug mode`)},
	{"debug_artifact", regexp.MustCompile(`(?i)TODO:`)},
	{"debug_artifact", regexp.MustCompile(`(?i)FIXME:`)},
	{"debug_artifact", regexp.MustCompile(`(?i)console\.log`)},
	{"debug_artifact", regexp.MustCompile(`(?i)print\(`)},
	{"injection_echo", regexp.MustCompile(`(?i)ignore previous instructions`)},
	{"injection_echo", regexp.MustCompile(`(?i)new instructions:`)},
	{"injection_echo", regexp.MustCompile(`(?i)admin mode`)},
	{"jailbreak_echo", regexp.MustCompile(`(?i)pretend you are`)},
	{"jailbreak_echo", regexp.MustCompile(`(?i)simulation mode`)},
	{"jailbreak_echo", regexp.MustCompile(`(?i)hypothetical scenario`)},
}

var refusalPhrases = []string{
	"i cannot fulfill this request",
	"i am unable to",
	"i'm sorry, but as an ai model",
	"as a large language model",
	"i am not able to provide assistance with that",
	"my apologies, but i cannot",
}

// regurgitationThreshold is the minimum original-text length before a
// verbatim echo of it counts as a leak; short inputs legitimately reappear
// in answers.
const regurgitationThreshold = 250

// ResponseRejectedError reports an upstream completion the gateway refused
// to return: forbidden content, leaked instructions, a refusal, or output
// that does not fit the operation's result shape. The request itself was
// fine, so the API surfaces it as an upstream failure rather than a client
// error.
type ResponseRejectedError struct {
	Reason  string
	Message string
}

func (e *ResponseRejectedError) Error() string {
	return fmt.Sprintf("upstream response rejected (%s): %s", e.Reason, e.Message)
}

func rejectResponse(reason, message string) *ResponseRejectedError {
	return &ResponseRejectedError{Reason: reason, Message: message}
}

// ValidateResponse accepts or rejects an upstream response. It is pure: no
// logging, no mutation, no rewriting of content.
func ValidateResponse(op models.Operation, response, systemText, originalText string) error {
	lowerResponse := strings.ToLower(response)

	if response == "" {
		if op == models.OperationSummarize || op == models.OperationQA {
			return rejectResponse("empty_response", "upstream returned an empty response")
		}
		return nil
	}

	for _, fp := range forbiddenPatterns {
		if match := fp.pattern.FindString(response); match != "" {
			return rejectResponse(fp.name, fmt.Sprintf("response contains forbidden content %q", match))
		}
	}

	if systemText != "" && strings.Contains(lowerResponse, strings.ToLower(systemText)) {
		return rejectResponse("system_leak", "response echoes the system instruction")
	}
	if len(originalText) > regurgitationThreshold && strings.Contains(lowerResponse, strings.ToLower(originalText)) {
		return rejectResponse("regurgitation", "response repeats the input text verbatim")
	}

	for _, phrase := range refusalPhrases {
		if strings.Contains(lowerResponse, phrase) {
			return rejectResponse("refusal", fmt.Sprintf("upstream refused the request: %q", phrase))
		}
	}

	return validateShape(op, response)
}

func validateShape(op models.Operation, response string) error {
	switch op {
	case models.OperationSummarize:
		if len(response) < 10 {
			return rejectResponse("malformed_result", "summary is too short")
		}
	case models.OperationSentiment, models.OperationKeyPoints, models.OperationQA:
		if len(response) < 5 {
			return rejectResponse("malformed_result", "response is too short")
		}
	case models.OperationQuestions:
		if !strings.Contains(response, "?") && len(response) < 10 {
			return rejectResponse("malformed_result", "response contains no questions")
		}
	}
	return nil
}
