package testing

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/xiaoshi2013/warden/types"
)

// Entry is one record captured by a Logger.
type Entry struct {
	Level  string
	Msg    string
	Fields []any
}

// Logger is a types.Logger for tests.
//
// Records go to tb.Logf, so they only show for failing tests or with -v, and
// are kept so a test can assert on what was logged. Safe for concurrent use.
type Logger struct {
	tb testing.TB

	mu      sync.Mutex
	entries []Entry
}

var _ types.Logger = (*Logger)(nil)

// NewTestLogger creates a logger bound to tb.
func NewTestLogger(tb testing.TB) *Logger {
	return &Logger{tb: tb}
}

// Debug implements types.Logger.
func (l *Logger) Debug(msg string, keysAndValues ...any) { l.log("DEBUG", msg, keysAndValues) }

// Info implements types.Logger.
func (l *Logger) Info(msg string, keysAndValues ...any) { l.log("INFO", msg, keysAndValues) }

// Warn implements types.Logger.
func (l *Logger) Warn(msg string, keysAndValues ...any) { l.log("WARN", msg, keysAndValues) }

// Error implements types.Logger.
func (l *Logger) Error(msg string, keysAndValues ...any) { l.log("ERROR", msg, keysAndValues) }

// Fatal records the message and fails the test immediately.
func (l *Logger) Fatal(msg string, keysAndValues ...any) {
	l.record("FATAL", msg, keysAndValues)
	l.tb.Fatalf("FATAL: %s%s", msg, formatFields(keysAndValues))
}

// Entries returns the captured records of level ("" for all), oldest first.
func (l *Logger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Entry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}

	return out
}

// Logged reports whether msg was logged at level.
func (l *Logger) Logged(level, msg string) bool {
	for _, e := range l.Entries(level) {
		if e.Msg == msg {
			return true
		}
	}

	return false
}

func (l *Logger) log(level, msg string, keysAndValues []any) {
	l.record(level, msg, keysAndValues)
	l.tb.Logf("%s: %s%s", level, msg, formatFields(keysAndValues))
}

func (l *Logger) record(level, msg string, keysAndValues []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Fields: append([]any(nil), keysAndValues...)})
}

// formatFields renders alternating keys and values as " k=v k=v".
func formatFields(keysAndValues []any) string {
	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, " %v", keysAndValues[i])
		}
	}

	return b.String()
}
