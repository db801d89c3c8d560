package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger is a value-type wrapper around [slog.Logger] carrying the
// configuration it was built from. The zero value discards everything.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a new [Logger] that writes to w.
// Without options the logger uses [DefaultFormat], [DefaultLevel],
// [DefaultTimeLayout], and [DefaultPretty], with caller info disabled.
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)

	return Logger{Logger: slog.New(cfg.handler()), config: cfg}
}

// Wrap returns a copy of l reconfigured by opts.
// The receiver's configuration is the base for the copy.
func (l Logger) Wrap(opts ...Option) Logger {
	var cfg config

	l.read(func(c config) { cfg = c.clone(opts...) })

	return Logger{Logger: slog.New(cfg.handler()), config: cfg}
}

// With returns a copy of l that adds attrs to every record.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}

	var cfg config

	l.read(func(c config) { cfg = c.clone() })

	return Logger{Logger: slog.New(l.Handler().WithAttrs(attrs)), config: cfg}
}

// Level returns the minimum level l emits.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}

	level := DefaultLevel

	l.read(func(c config) { level = c.level })

	return level
}

// Format returns the output format of l.
func (l Logger) Format() Format {
	if l.Logger == nil {
		return DefaultFormat
	}

	format := DefaultFormat

	l.read(func(c config) { format = c.format })

	return format
}

// TraceContext logs msg at [LevelTrace].
func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelTrace, msg, attrs)
}

// Trace logs msg at [LevelTrace] using [DefaultContextProvider].
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelTrace, msg, attrs)
}

// DebugContext logs msg at [LevelDebug].
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelDebug, msg, attrs)
}

// Debug logs msg at [LevelDebug] using [DefaultContextProvider].
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelDebug, msg, attrs)
}

// InfoContext logs msg at [LevelInfo].
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelInfo, msg, attrs)
}

// Info logs msg at [LevelInfo] using [DefaultContextProvider].
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelInfo, msg, attrs)
}

// WarnContext logs msg at [LevelWarn].
func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelWarn, msg, attrs)
}

// Warn logs msg at [LevelWarn] using [DefaultContextProvider].
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelWarn, msg, attrs)
}

// ErrorContext logs msg at [LevelError].
func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.emit(ctx, LevelError, msg, attrs)
}

// Error logs msg at [LevelError] using [DefaultContextProvider].
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.emit(DefaultContextProvider(), LevelError, msg, attrs)
}

// read calls fn with the configuration while holding the read lock.
func (l Logger) read(fn func(config)) {
	if l.mutex == nil {
		fn(l.config)

		return
	}

	l.mutex.RLock()
	defer l.mutex.RUnlock()

	fn(l.config)
}

// emit builds the record by hand so the reported source location is the
// caller of the exported method rather than this package.
func (l Logger) emit(
	ctx context.Context,
	level Level,
	msg string,
	attrs []slog.Attr,
) {
	if l.Logger == nil || !l.Enabled(ctx, slog.Level(level)) {
		return
	}

	// runtime.Callers, emit, exported method.
	const skip = 3

	var pcs [1]uintptr

	runtime.Callers(skip, pcs[:])

	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)

	l.read(func(config) { _ = l.Handler().Handle(ctx, r) })
}
