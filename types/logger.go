package types

// Logger defines methods for structured logging.
//
// Every method takes a message followed by alternating key/value pairs, which
// matches log/slog and zap.SugaredLogger.
type Logger interface {
	// Debug logs a message at debug level.
	Debug(msg string, keysAndValues ...any)

	// Info logs a message at info level.
	Info(msg string, keysAndValues ...any)

	// Warn logs a message at warn level.
	Warn(msg string, keysAndValues ...any)

	// Error logs a message at error level.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a message and terminates the process. Test and nop loggers may
	// choose not to exit.
	Fatal(msg string, keysAndValues ...any)
}
