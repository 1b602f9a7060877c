package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoshi2013/warden/types"
)

func TestSlogLogger_ImplementsInterface(_ *testing.T) {
	var _ types.Logger = (*SlogLogger)(nil)
	var _ types.Logger = (*NopLogger)(nil)
}

func TestNewSlogDefault(t *testing.T) {
	logger := NewSlogDefault()

	require.NotNil(t, logger)
	require.NotNil(t, logger.logger)
}

func TestSlogLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *SlogLogger)
		level string
		msg   string
	}{
		{"debug", func(l *SlogLogger) { l.Debug("pass evaluated", "index", ".watches") }, "level=DEBUG", "pass evaluated"},
		{"info", func(l *SlogLogger) { l.Info("service started", "index", ".watches") }, "level=INFO", "service started"},
		{"warn", func(l *SlogLogger) { l.Warn("format too old", "index", ".watches") }, "level=WARN", "format too old"},
		{"error", func(l *SlogLogger) { l.Error("pause failed", "index", ".watches") }, "level=ERROR", "pause failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewSlogText(buf, slog.LevelDebug)

			tt.log(logger)

			output := buf.String()
			assert.Contains(t, output, tt.msg)
			assert.Contains(t, output, tt.level)
			assert.Contains(t, output, "index=.watches")
		})
	}
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSlogText(buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
}

func TestSlogLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSlogText(buf, slog.LevelInfo).With("node", "node_1")

	logger.Info("decision", "action", "reload", "reason", "new local watcher shard")

	output := buf.String()
	assert.Contains(t, output, "node=node_1")
	assert.Contains(t, output, "action=reload")
	assert.Contains(t, output, `reason="new local watcher shard"`)
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()

	require.NotPanics(t, func() {
		logger.Debug("msg", "k", "v")
		logger.Info("msg")
		logger.Warn("msg", "single")
		logger.Error("msg", nil)
		logger.Fatal("msg", "k1", "v1") // must not exit
	})
}
