// Package observability provides logging and metrics collection for the
// gateway. Metric records are kept in a bounded in-process ring buffer so
// health and diagnostics endpoints can read them back without an external
// metrics backend.
package observability

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

// LogLevel represents the severity of a log message.
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

var levelOrder = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

// Logger is the logging interface every service in the gateway depends on.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})

	WithPrefix(prefix string) Logger
}

// StandardLogger is a Logger implementation on top of the standard log
// package, printing leveled, prefixed lines with sorted fields.
type StandardLogger struct {
	prefix string
	level  LogLevel
}

// NewStandardLogger creates a StandardLogger with the given prefix at INFO.
func NewStandardLogger(prefix string) *StandardLogger {
	return &StandardLogger{prefix: prefix, level: LogLevelInfo}
}

// WithLevel returns a copy of the logger with the given minimum level.
func (l *StandardLogger) WithLevel(level LogLevel) *StandardLogger {
	return &StandardLogger{prefix: l.prefix, level: level}
}

// WithPrefix returns a copy of the logger with a nested prefix.
func (l *StandardLogger) WithPrefix(prefix string) Logger {
	combined := prefix
	if l.prefix != "" {
		combined = l.prefix + "." + prefix
	}
	return &StandardLogger{prefix: combined, level: l.level}
}

// Debug logs a debug message.
func (l *StandardLogger) Debug(msg string, fields map[string]interface{}) {
	if l.levelEnabled(LogLevelDebug) {
		l.log(LogLevelDebug, msg, fields)
	}
}

// Info logs an info message.
func (l *StandardLogger) Info(msg string, fields map[string]interface{}) {
	if l.levelEnabled(LogLevelInfo) {
		l.log(LogLevelInfo, msg, fields)
	}
}

// Warn logs a warning message.
func (l *StandardLogger) Warn(msg string, fields map[string]interface{}) {
	if l.levelEnabled(LogLevelWarn) {
		l.log(LogLevelWarn, msg, fields)
	}
}

// Error logs an error message.
func (l *StandardLogger) Error(msg string, fields map[string]interface{}) {
	l.log(LogLevelError, msg, fields)
}

func (l *StandardLogger) levelEnabled(level LogLevel) bool {
	return levelOrder[level] >= levelOrder[l.level]
}

func (l *StandardLogger) log(level LogLevel, msg string, fields map[string]interface{}) {
	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	logPrefix := fmt.Sprintf("%s [%s] [%s]", timestamp, level, l.prefix)
	log.Printf("%s %s%s", logPrefix, msg, formatFields(fields))
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(" {")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v", k, fields[k])
	}
	sb.WriteString("}")
	return sb.String()
}

// LoggerFromEnv builds a StandardLogger whose level comes from LOG_LEVEL.
func LoggerFromEnv(prefix string) *StandardLogger {
	logger := NewStandardLogger(prefix)
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return logger.WithLevel(LogLevelDebug)
	case "WARN", "WARNING":
		return logger.WithLevel(LogLevelWarn)
	case "ERROR":
		return logger.WithLevel(LogLevelError)
	}
	return logger
}

// NoopLogger discards everything. Useful in tests.
type NoopLogger struct{}

// NewNoopLogger creates a logger that drops all messages.
func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (n *NoopLogger) Debug(msg string, fields map[string]interface{}) {}
func (n *NoopLogger) Info(msg string, fields map[string]interface{})  {}
func (n *NoopLogger) Warn(msg string, fields map[string]interface{})  {}
func (n *NoopLogger) Error(msg string, fields map[string]interface{}) {}
func (n *NoopLogger) WithPrefix(prefix string) Logger                 { return n }
