package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Output format of a logger.
type Format int

const (
	FormatText Format = iota // Terse human-readable lines.
	FormatJSON               // One JSON object per record.
)

// Parses a format name ("text" or "json").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// Controls how a logger is built.
type Options struct {
	Format  Format       // Output format.
	Level   slog.Leveler // Minimum level. Nil uses [slog.LevelInfo].
	Verbose bool         // Prefix text lines with a timestamp.
}

// Creates a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	if opts.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(&textHandler{
		out:     &output{w: w},
		level:   level,
		verbose: opts.Verbose,
	})
}

// Writer shared by a handler and its derivatives.
type output struct {
	mu sync.Mutex
	w  io.Writer
}

// Renders records as "LEVEL message key=value ...".
type textHandler struct {
	out     *output      // Shared destination.
	level   slog.Leveler // Minimum enabled level.
	verbose bool         // Whether to prefix a timestamp.
	prefix  string       // Preformatted attributes from WithAttrs.
	groups  []string     // Open groups from WithGroup.
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if h.verbose {
		ts := r.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		b.WriteString(ts.Format(time.RFC3339))
		b.WriteByte(' ')
	}

	b.WriteString(levelLabel(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.prefix)

	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.groups, a)
		return true
	})
	b.WriteByte('\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()

	_, err := io.WriteString(h.out.w, b.String())
	return err
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		appendAttr(&b, h.groups, a)
	}

	clone := *h
	clone.prefix = b.String()
	return &clone
}

func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// Returns a fixed-width label for a level.
func levelLabel(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN "
	case l >= slog.LevelInfo:
		return "INFO "
	}
	return "DEBUG"
}

// Writes " key=value", expanding groups into dotted keys.
func appendAttr(b *strings.Builder, groups []string, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if v.Kind() == slog.KindGroup {
		nested := groups
		if a.Key != "" {
			nested = append(append([]string(nil), groups...), a.Key)
		}
		for _, g := range v.Group() {
			appendAttr(b, nested, g)
		}
		return
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(quote(formatValue(v)))
}

// Renders a resolved value.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok && err != nil {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	return v.String()
}

// Quotes s if it contains spaces, quotes or control characters.
func quote(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '"' || r == '=' || r == 0x7f {
			return strconv.Quote(s)
		}
	}
	return s
}
