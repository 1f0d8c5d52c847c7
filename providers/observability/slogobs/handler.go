package slogobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

// compactHandler writes one line per record:
//
//	2026-10-17 10:40:35  WARN no posts recovered → {"parse.input.length":12}
type compactHandler struct {
	level  slog.Leveler
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string
}

func newCompactHandler(out io.Writer, level slog.Leveler) *compactHandler {
	return &compactHandler{level: level, out: out, mu: &sync.Mutex{}}
}

func (h *compactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *compactHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})

	buf := make([]byte, 0, 256)
	buf = r.Time.AppendFormat(buf, "2006-01-02 15:04:05")
	buf = append(buf, ' ')
	level := levelString(r.Level)
	for range 5 - len(level) {
		buf = append(buf, ' ')
	}
	buf = append(buf, level...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)
	if len(fields) > 0 {
		data, err := json.Marshal(fields)
		if err != nil {
			data = []byte(`{"error":"unencodable attributes"}`)
		}
		buf = append(buf, " → "...)
		buf = append(buf, data...)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

func (h *compactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *compactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// newHandler builds the slog.Handler for format.
func newHandler(format Format, out io.Writer, level slog.Level) slog.Handler {
	if format == FormatJSON {
		return slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.LevelKey {
					if l, ok := a.Value.Any().(slog.Level); ok {
						a.Value = slog.StringValue(levelString(l))
					}
				}
				return a
			},
		})
	}
	return newCompactHandler(out, level)
}
