package log

import (
	"context"
	"log/slog"
	"os"
)

// defaultLog is the process-wide logger used by the package-level
// functions. Diagnostics go to stderr so program output on stdout stays
// clean.
var defaultLog = Make(os.Stderr)

// Config updates the default logger with the given options.
func Config(opts ...Option) {
	defaultLog = defaultLog.Wrap(opts...)
}

// Default returns the current default logger.
func Default() Logger {
	return defaultLog
}

// TraceContext logs a message at Trace level using the default logger
// with the provided context.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.TraceContext(ctx, msg, attrs...)
}

// Trace logs a message at Trace level using the default logger.
func Trace(msg string, attrs ...slog.Attr) {
	TraceContext(context.Background(), msg, attrs...)
}

// DebugContext logs a message at Debug level using the default logger
// with the provided context.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.DebugContext(ctx, msg, attrs...)
}

// Debug logs a message at Debug level using the default logger.
func Debug(msg string, attrs ...slog.Attr) {
	DebugContext(context.Background(), msg, attrs...)
}

// InfoContext logs a message at Info level using the default logger
// with the provided context.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.InfoContext(ctx, msg, attrs...)
}

// Info logs a message at Info level using the default logger.
func Info(msg string, attrs ...slog.Attr) {
	InfoContext(context.Background(), msg, attrs...)
}

// WarnContext logs a message at Warn level using the default logger
// with the provided context.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.WarnContext(ctx, msg, attrs...)
}

// Warn logs a message at Warn level using the default logger.
func Warn(msg string, attrs ...slog.Attr) {
	WarnContext(context.Background(), msg, attrs...)
}

// ErrorContext logs a message at Error level using the default logger
// with the provided context.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.ErrorContext(ctx, msg, attrs...)
}

// Error logs a message at Error level using the default logger.
func Error(msg string, attrs ...slog.Attr) {
	ErrorContext(context.Background(), msg, attrs...)
}

// With returns a new Logger derived from the default logger that
// includes the given attributes in each log message.
func With(attrs ...slog.Attr) Logger {
	return defaultLog.With(attrs...)
}
