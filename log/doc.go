// Package log provides a simplified structured logging interface based
// on [log/slog].
//
// Loggers are created with [Make] and configured through functional
// options applied at creation time:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithStyle(true),
//	)
//
//	logger.Info("package built", slog.String("name", "demo"))
//
// The package adds a Trace level below Debug for high-volume internal
// diagnostics, and a styled text handler for interactive terminals.
// The zero value Logger discards everything, so library types can hold
// a Logger field that is only active when the host wires one in.
package log
