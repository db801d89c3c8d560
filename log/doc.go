// Package log is a small structured logging layer over [log/slog].
//
// A [Logger] is a value: [Logger.Wrap] and [Logger.With] return modified
// copies and never affect the receiver. The zero Logger discards everything,
// so components can hold one unconditionally.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.DebugContext(ctx, "rule selected", slog.String("token", "call"))
//
// Records below the configured level are dropped. In addition to the slog
// levels, [LevelTrace] sits below [LevelDebug] for per-step diagnostics.
//
// Output is JSON or text. With [WithPretty] enabled, values are colorized
// and JSON records are indented. Colors are suppressed automatically when
// the output is not a terminal.
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// default logger that [Config] reconfigures.
package log
