package processing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meshworks/textgate/pkg/models"
)

func TestBuildPromptContainsAllSections(t *testing.T) {
	for _, op := range models.Operations {
		t.Run(op.String(), func(t *testing.T) {
			prompt := BuildPrompt(op, "some interesting text", "what is it about", nil)

			assert.NotEmpty(t, prompt.System)
			assert.Contains(t, prompt.User, userTextStart)
			assert.Contains(t, prompt.User, userTextEnd)
			assert.Contains(t, prompt.User, "some interesting text")
			// Task instruction follows the delimited user text.
			end := strings.Index(prompt.User, userTextEnd)
			assert.Greater(t, len(strings.TrimSpace(prompt.User[end+len(userTextEnd):])), 0)
		})
	}
}

func TestBuildPromptEscapesUserText(t *testing.T) {
	prompt := BuildPrompt(models.OperationSummarize, "tom & jerry", "", nil)
	assert.Contains(t, prompt.User, "tom &amp; jerry")
}

func TestBuildPromptAppliesOptions(t *testing.T) {
	prompt := BuildPrompt(models.OperationSummarize, "text to shorten", "", map[string]interface{}{"max_length": 50})
	assert.Contains(t, prompt.User, "50 words")

	prompt = BuildPrompt(models.OperationKeyPoints, "text", "", map[string]interface{}{"max_points": float64(7)})
	assert.Contains(t, prompt.User, "7 bullet points")

	prompt = BuildPrompt(models.OperationQuestions, "text", "", nil)
	assert.Contains(t, prompt.User, "3 insightful questions")
}

func TestBuildPromptIncludesQuestionForQA(t *testing.T) {
	prompt := BuildPrompt(models.OperationQA, "the moon orbits the earth", "what orbits the earth", nil)
	assert.Contains(t, prompt.User, "what orbits the earth")
}
