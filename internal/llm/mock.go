package llm

import (
	"context"
	"strings"
	"sync"
)

// MockProvider returns canned completions without talking to any upstream.
// It is the default provider so the gateway runs out of the box, and tests
// script it with Enqueue/FailWith.
type MockProvider struct {
	mu        sync.Mutex
	scripted  []scriptedReply
	callCount int
}

type scriptedReply struct {
	text string
	err  error
}

// NewMockProvider creates an unscripted mock.
func NewMockProvider() *MockProvider { return &MockProvider{} }

// Name identifies the provider in logs and metadata.
func (p *MockProvider) Name() string { return "mock" }

// Enqueue schedules a fixed reply for a future call. Scripted replies are
// consumed in order before the heuristic defaults apply.
func (p *MockProvider) Enqueue(text string) {
	p.mu.Lock()
	p.scripted = append(p.scripted, scriptedReply{text: text})
	p.mu.Unlock()
}

// FailWith schedules an error for a future call.
func (p *MockProvider) FailWith(err error) {
	p.mu.Lock()
	p.scripted = append(p.scripted, scriptedReply{err: err})
	p.mu.Unlock()
}

// Calls reports how many completions were requested.
func (p *MockProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callCount
}

// Complete pops a scripted reply if one is queued, otherwise synthesizes a
// plausible answer from the prompt's task wording.
func (p *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.callCount++
	var reply *scriptedReply
	if len(p.scripted) > 0 {
		reply = &p.scripted[0]
		p.scripted = p.scripted[1:]
	}
	p.mu.Unlock()

	if reply != nil {
		if reply.err != nil {
			return nil, reply.err
		}
		return p.completion(reply.text), nil
	}

	return p.completion(defaultReply(req.Prompt)), nil
}

func (p *MockProvider) completion(text string) *Completion {
	return &Completion{
		Text:             text,
		Model:            "mock-model",
		PromptTokens:     len(text) / 4,
		CompletionTokens: len(text) / 4,
	}
}

// defaultReply matches the task wording the prompt templates use so each
// operation gets a parseable answer shape.
func defaultReply(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "sentiment"):
		return `{"sentiment": "neutral", "confidence": 0.75, "explanation": "The text reads as factual with no strong emotional markers."}`
	case strings.Contains(lower, "key points"):
		return "- The text introduces its main subject\n- Supporting details reinforce the subject\n- The conclusion restates the core idea"
	case strings.Contains(lower, "questions"):
		return "1. What is the main subject of the text?\n2. Which details support the central claim?\n3. What conclusion does the author draw?"
	case strings.Contains(lower, "answer the question"):
		return "Based on the provided text, the answer addresses the question directly using the information given."
	default:
		return "This is a concise summary of the provided text covering its main subject and conclusions."
	}
}
