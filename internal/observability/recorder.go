package observability

import (
	"sync"
	"time"
)

// MetricType classifies a metric record.
type MetricType string

// Configuration metrics.
const (
	MetricConfigLoad      MetricType = "config_load"
	MetricPresetUsage     MetricType = "preset_usage"
	MetricConfigError     MetricType = "config_error"
	MetricConfigChange    MetricType = "config_change"
	MetricValidationEvent MetricType = "validation_event"
)

// Runtime metrics.
const (
	MetricOperationCall MetricType = "operation_call"
	MetricCacheHit      MetricType = "cache_hit"
	MetricCacheMiss     MetricType = "cache_miss"
	MetricRetry         MetricType = "retry"
	MetricCircuitOpen   MetricType = "circuit_open"
	MetricCircuitClose  MetricType = "circuit_close"
)

// MetricRecord is one observation appended to the ring buffer.
type MetricRecord struct {
	Type        MetricType             `json:"type"`
	Operation   string                 `json:"operation,omitempty"`
	Preset      string                 `json:"preset,omitempty"`
	DurationMS  int64                  `json:"duration_ms,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	SessionID   string                 `json:"session_id,omitempty"`
	UserContext map[string]interface{} `json:"user_context,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// DefaultRecorderCapacity bounds the ring buffer when no size is configured.
const DefaultRecorderCapacity = 10000

// MetricsSink receives records as they are appended. The recorder always
// stores records itself; a sink is an optional forwarder, not a gate.
type MetricsSink interface {
	Record(record MetricRecord)
}

// Recorder is a bounded, concurrency-safe ring buffer of metric records.
// Appends are O(1); once the capacity is reached the oldest record is
// overwritten.
type Recorder struct {
	mu       sync.RWMutex
	records  []MetricRecord
	next     int
	filled   bool
	appended uint64
	sink     MetricsSink
}

// NewRecorder creates a Recorder with the given capacity. Non-positive
// capacities fall back to DefaultRecorderCapacity.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultRecorderCapacity
	}
	return &Recorder{records: make([]MetricRecord, capacity)}
}

// WithSink attaches an optional forwarding sink.
func (r *Recorder) WithSink(sink MetricsSink) *Recorder {
	r.mu.Lock()
	r.sink = sink
	r.mu.Unlock()
	return r
}

// Append stores a record, stamping the timestamp if unset.
func (r *Recorder) Append(record MetricRecord) {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	r.records[r.next] = record
	r.next++
	if r.next == len(r.records) {
		r.next = 0
		r.filled = true
	}
	r.appended++
	sink := r.sink
	r.mu.Unlock()

	if sink != nil {
		sink.Record(record)
	}
}

// Snapshot returns the retained records, oldest first.
func (r *Recorder) Snapshot() []MetricRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.filled {
		out := make([]MetricRecord, r.next)
		copy(out, r.records[:r.next])
		return out
	}

	out := make([]MetricRecord, 0, len(r.records))
	out = append(out, r.records[r.next:]...)
	out = append(out, r.records[:r.next]...)
	return out
}

// Len returns the number of retained records.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.filled {
		return len(r.records)
	}
	return r.next
}

// Total returns the number of records appended over the process lifetime,
// including those already overwritten.
func (r *Recorder) Total() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.appended
}

// CountsByType aggregates retained records per metric type.
func (r *Recorder) CountsByType() map[MetricType]int {
	counts := make(map[MetricType]int)
	for _, record := range r.Snapshot() {
		counts[record.Type]++
	}
	return counts
}
