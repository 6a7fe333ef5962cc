package processing

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/meshworks/textgate/pkg/models"
)

var (
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	listItemPrefix    = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
)

// parseSentiment extracts the JSON sentiment object from a model reply.
// Models occasionally wrap the object in prose or code fences, so the first
// balanced-looking object in the reply is used. Malformed payloads reject
// the response.
func parseSentiment(response string) (*models.SentimentResult, error) {
	raw := jsonObjectPattern.FindString(response)
	if raw == "" {
		return nil, rejectResponse("malformed_result", "response contains no JSON object")
	}

	var result models.SentimentResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, rejectResponse("malformed_result", "response JSON is malformed: "+err.Error())
	}
	result.Sentiment = strings.ToLower(strings.TrimSpace(result.Sentiment))
	if err := result.Validate(); err != nil {
		return nil, rejectResponse("malformed_result", err.Error())
	}
	return &result, nil
}

// parseList splits a model reply into an ordered list, stripping bullet and
// numbering prefixes. Blank lines are skipped.
func parseList(response string) []string {
	var items []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = listItemPrefix.ReplaceAllString(line, "")
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}
