package lang

import "log/slog"

// Flag marks how a [Result] affects control flow.
type Flag uint8

const (
	// FlagError marks a result carrying an [InLanguageError].
	FlagError Flag = 1 << iota
	// FlagReturn marks a result that unwinds to the nearest function call.
	FlagReturn
)

// Result is produced by every evaluation step.
type Result struct {
	Value Value
	Flags Flag
}

// Ok returns an unflagged result holding v.
func Ok(v Value) Result { return Result{Value: v} }

// Fail returns an error-flagged result carrying e.
func Fail(e *InLanguageError) Result {
	return Result{Value: ErrorValue(e), Flags: FlagError}
}

// Return returns a result that unwinds to the nearest function call.
func Return(v Value) Result { return Result{Value: v, Flags: FlagReturn} }

// Failed reports whether r carries an in-language error.
func (r Result) Failed() bool { return r.Flags&FlagError != 0 }

// Returned reports whether r is unwinding to a function call.
func (r Result) Returned() bool { return r.Flags&FlagReturn != 0 }

// Err returns the in-language error carried by r, or nil.
func (r Result) Err() *InLanguageError {
	if !r.Failed() {
		return nil
	}

	e, _ := r.Value.AsError()

	return e
}

// LogValue implements [slog.LogValuer].
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("value", r.Value),
		slog.Bool("error", r.Failed()),
		slog.Bool("return", r.Returned()),
	)
}
