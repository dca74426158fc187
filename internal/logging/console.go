package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const consoleTimeFormat = "15:04:05.000"

// ConsoleHandler is a slog.Handler that writes colored single-line records.
type ConsoleHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Leveler
	// preformatted holds the attrs added with WithAttrs, already qualified by the groups open at the time.
	preformatted string
	group        string
}

// NewConsoleHandler creates a ConsoleHandler writing to out.
func NewConsoleHandler(out io.Writer, level slog.Leveler) *ConsoleHandler {
	return &ConsoleHandler{mu: &sync.Mutex{}, out: out, level: level}
}

// Enabled reports whether records at level are written.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.HiBlueString(level)
	default:
		level = color.MagentaString(level)
	}

	var sb strings.Builder
	sb.WriteString(r.Time.Format(consoleTimeFormat))
	sb.WriteByte(' ')
	sb.WriteString(level)
	sb.WriteByte(' ')
	sb.WriteString(r.Message)

	sb.WriteString(h.preformatted)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)

		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.out, sb.String()); err != nil {
		return fmt.Errorf("error writing log record: %w", err)
	}

	return nil
}

// writeAttr writes a with its key qualified by prefix. Group values are expanded into one key per member.
func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, member := range a.Value.Group() {
			writeAttr(sb, key, member)
		}

		return
	}

	sb.WriteByte(' ')
	sb.WriteString(color.GreenString(key))
	sb.WriteByte('=')
	sb.WriteString(a.Value.String())
}

// WithAttrs returns a handler that always writes attrs, qualified by the current groups.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.preformatted)
	for _, a := range attrs {
		writeAttr(&sb, h.group, a)
	}
	h2 := *h
	h2.preformatted = sb.String()

	return &h2
}

// WithGroup returns a handler that prefixes attribute keys with name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	if h2.group != "" {
		h2.group += "." + name
	} else {
		h2.group = name
	}

	return &h2
}
