package cache

import (
	"time"

	"github.com/meshworks/textgate/pkg/models"
)

// DefaultTTL applies when an operation has no specific policy entry.
const DefaultTTL = 3600 * time.Second

// TTLPolicy maps operations to storage lifetimes.
type TTLPolicy map[models.Operation]time.Duration

// AITTLPolicy returns the response-cache TTLs. Sentiment barely changes for
// a given text so it keeps a full day; qa answers depend on the question and
// age out fastest.
func AITTLPolicy() TTLPolicy {
	return TTLPolicy{
		models.OperationSummarize: 7200 * time.Second,
		models.OperationSentiment: 86400 * time.Second,
		models.OperationKeyPoints: 7200 * time.Second,
		models.OperationQuestions: 3600 * time.Second,
		models.OperationQA:        1800 * time.Second,
	}
}

// For resolves the TTL for an operation. A caller-supplied override wins;
// zero or negative overrides mean "do not cache" and are returned as-is for
// the caller to act on.
func (p TTLPolicy) For(op models.Operation, override *time.Duration) time.Duration {
	if override != nil {
		return *override
	}
	if ttl, ok := p[op]; ok {
		return ttl
	}
	return DefaultTTL
}
