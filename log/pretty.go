package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	keyColor    = color.New(color.FgHiBlack)
	stringColor = color.New(color.FgCyan)
	numberColor = color.New(color.FgYellow)
	trueColor   = color.New(color.FgGreen)
	falseColor  = color.New(color.FgRed)
	timeColor   = color.New(color.FgBlue)
	spanColor   = color.New(color.FgMagenta)
)

// levelColor picks the color for a level name by severity.
func levelColor(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return color.New(color.FgRed, color.Bold)
	case l >= slog.LevelWarn:
		return color.New(color.FgYellow)
	case l >= slog.LevelInfo:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgBlue)
	}
}

// prettyHandler renders records either as colorized key=value pairs on one
// line or as an indented, colorized JSON-like object.
type prettyHandler struct {
	opts      slog.HandlerOptions
	mu        *sync.Mutex
	w         io.Writer
	attrs     []slog.Attr
	prefix    string
	multiline bool
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w}
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, multiline: true}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []slog.Attr

	builtin := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			fields = append(fields, a)
		}
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	// The level keeps its slog.Level value so it can be colored by severity;
	// the name comes from this package's Level.
	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.qualify(a))

		return true
	})

	buf := new(bytes.Buffer)

	if h.multiline {
		h.writeObject(buf, fields)
	} else {
		h.writeLine(buf, fields)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(c.attrs[:len(c.attrs):len(c.attrs)], make([]slog.Attr, 0, len(attrs))...)

	for _, a := range attrs {
		c.attrs = append(c.attrs, h.qualify(a))
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) qualify(a slog.Attr) slog.Attr {
	if h.prefix != "" {
		a.Key = h.prefix + a.Key
	}

	return a
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, fields []slog.Attr) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		h.writeAttr(buf, a, "")
	}
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		h.writeAttr(buf, a, "  ")
	}

	buf.WriteString("\n}")
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, a slog.Attr, indent string) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		for i, g := range group {
			if i > 0 {
				if indent == "" {
					buf.WriteByte(' ')
				} else {
					buf.WriteString(",\n" + indent)
				}
			}

			g.Key = a.Key + "." + g.Key
			h.writeAttr(buf, g, indent)
		}

		return
	}

	keyColor.Fprint(buf, a.Key)

	if indent == "" {
		buf.WriteByte('=')
	} else {
		buf.WriteString(": ")
	}

	writeValue(buf, a.Value)
}

func writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		stringColor.Fprint(buf, v.String())
	case slog.KindInt64:
		numberColor.Fprint(buf, strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		numberColor.Fprint(buf, strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		numberColor.Fprint(buf, strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			trueColor.Fprint(buf, "true")
		} else {
			falseColor.Fprint(buf, "false")
		}
	case slog.KindDuration:
		spanColor.Fprint(buf, v.Duration().String())
	case slog.KindTime:
		timeColor.Fprint(buf, v.Time().String())
	case slog.KindAny:
		if l, ok := v.Any().(slog.Level); ok {
			levelColor(l).Fprint(buf, strings.ToUpper(Level(l).String()))

			return
		}

		if v.Any() == nil {
			keyColor.Fprint(buf, "null")

			return
		}

		stringColor.Fprint(buf, v.String())
	default:
		stringColor.Fprint(buf, v.String())
	}
}
