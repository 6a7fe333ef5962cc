package processing

import (
	"regexp"
	"strings"
)

// DefaultInputMaxLength caps sanitized text when no limit is configured.
const DefaultInputMaxLength = 2048

// injectionPatterns are removed from user text before prompt assembly,
// case-insensitive, in this order.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (all )?previous instructions`),
	regexp.MustCompile(`(?i)new instruction(s)?`),
	regexp.MustCompile(`(?i)system prompt`),
	regexp.MustCompile(`(?i)reveal .*? (password|key|secret|api_key|token)`),
	regexp.MustCompile(`(?i)pretend you are`),
	regexp.MustCompile(`(?i)act as if`),
	regexp.MustCompile(`(?i)roleplaying as`),
	regexp.MustCompile(`(?i)disregard the above`),
	regexp.MustCompile(`(?i)forget everything`),
	regexp.MustCompile(`(?i)override:`),
	regexp.MustCompile(`(?i)admin mode`),
	regexp.MustCompile(`(?i)developer mode`),
}

var (
	dangerousChars = regexp.MustCompile("[<>{}\\[\\];|`'\"\\\\]")
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Sanitizer applies the two-stage prompt-injection defense.
type Sanitizer struct {
	maxLength int
}

// NewSanitizer builds a sanitizer with the configured output cap.
func NewSanitizer(maxLength int) *Sanitizer {
	if maxLength <= 0 {
		maxLength = DefaultInputMaxLength
	}
	return &Sanitizer{maxLength: maxLength}
}

// Sanitize removes injection patterns, strips dangerous characters, escapes
// ampersands, normalizes whitespace and truncates. Idempotent: sanitizing
// already-sanitized text is a no-op.
func (s *Sanitizer) Sanitize(text string) string {
	if text == "" {
		return ""
	}

	for _, pattern := range injectionPatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	// Collapse entities from a prior pass before the character strip, so the
	// semicolon of an existing &amp; is not lost and escaping stays
	// idempotent.
	for strings.Contains(text, "&amp;") {
		text = strings.ReplaceAll(text, "&amp;", "&")
	}
	text = dangerousChars.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if runes := []rune(text); len(runes) > s.maxLength {
		text = strings.TrimSpace(string(runes[:s.maxLength]))
	}
	return text
}

// SanitizeOptions strips dangerous characters from string option values.
// Non-string values pass through untouched.
func (s *Sanitizer) SanitizeOptions(options map[string]interface{}) map[string]interface{} {
	if options == nil {
		return nil
	}
	out := make(map[string]interface{}, len(options))
	for k, v := range options {
		if str, ok := v.(string); ok {
			out[k] = dangerousChars.ReplaceAllString(str, "")
			continue
		}
		out[k] = v
	}
	return out
}
