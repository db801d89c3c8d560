package log

import (
	"context"
	"log/slog"
	"os"
)

// DefaultContextProvider returns the context used by the logging functions
// that do not take one.
var DefaultContextProvider = context.TODO

var defaultLog = Make(os.Stderr)

// Config reconfigures the package-level logger.
func Config(opts ...Option) {
	defaultLog = defaultLog.Wrap(opts...)
}

// Default returns the package-level logger.
func Default() Logger { return defaultLog }

// With returns the package-level logger with attrs added to every record.
func With(attrs ...slog.Attr) Logger { return defaultLog.With(attrs...) }

// TraceContext logs msg at [LevelTrace] with the package-level logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.emit(ctx, LevelTrace, msg, attrs)
}

// DebugContext logs msg at [LevelDebug] with the package-level logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.emit(ctx, LevelDebug, msg, attrs)
}

// Debug logs msg at [LevelDebug] with the package-level logger.
func Debug(msg string, attrs ...slog.Attr) {
	defaultLog.emit(DefaultContextProvider(), LevelDebug, msg, attrs)
}

// InfoContext logs msg at [LevelInfo] with the package-level logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.emit(ctx, LevelInfo, msg, attrs)
}

// Info logs msg at [LevelInfo] with the package-level logger.
func Info(msg string, attrs ...slog.Attr) {
	defaultLog.emit(DefaultContextProvider(), LevelInfo, msg, attrs)
}

// WarnContext logs msg at [LevelWarn] with the package-level logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.emit(ctx, LevelWarn, msg, attrs)
}

// Warn logs msg at [LevelWarn] with the package-level logger.
func Warn(msg string, attrs ...slog.Attr) {
	defaultLog.emit(DefaultContextProvider(), LevelWarn, msg, attrs)
}

// ErrorContext logs msg at [LevelError] with the package-level logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	defaultLog.emit(ctx, LevelError, msg, attrs)
}

// Error logs msg at [LevelError] with the package-level logger.
func Error(msg string, attrs ...slog.Attr) {
	defaultLog.emit(DefaultContextProvider(), LevelError, msg, attrs)
}
