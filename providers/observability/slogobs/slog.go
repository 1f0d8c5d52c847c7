package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/leofalp/trendweaver/providers/observability"
)

// Observer implements observability.Provider with a slog.Logger. Metrics are
// accumulated in memory and logged at Debug on every update.
type Observer struct {
	logger *slog.Logger

	mu       sync.Mutex
	counters map[string]*counter
	hists    map[string]*histogram
}

var _ observability.Provider = (*Observer)(nil)

// New creates an Observer. Without options the format and level come from
// TRENDWEAVER_LOG_FORMAT/LOG_FORMAT and TRENDWEAVER_LOG_LEVEL/LOG_LEVEL,
// defaulting to compact output at Info on stderr.
//
//	observer := slogobs.New(slogobs.WithLevel(slog.LevelDebug))
//	posts := parse.New(parse.WithObserver(observer)).Parse(raw)
func New(opts ...Option) *Observer {
	cfg := applyOptions(opts...)

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(newHandler(cfg.format, cfg.output, cfg.level))
	}
	if cfg.component != "" {
		logger = logger.With(slog.String(observability.AttrComponent, cfg.component))
	}
	return &Observer{
		logger:   logger,
		counters: make(map[string]*counter),
		hists:    make(map[string]*histogram),
	}
}

// Logger returns the underlying slog.Logger.
func (o *Observer) Logger() *slog.Logger {
	return o.logger
}

// --- TRACING ---

// StartSpan logs the span start at Debug and returns ctx carrying the span.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &slogSpan{
		name:   name,
		start:  time.Now(),
		logger: o.logger,
		attrs:  attrs,
	}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "span started",
		append([]slog.Attr{slog.String("span", name)}, toSlog(attrs)...)...)
	return observability.ContextWithSpan(ctx, span), span
}

type slogSpan struct {
	name   string
	start  time.Time
	logger *slog.Logger

	mu    sync.Mutex
	attrs []observability.Attribute
	ended bool
}

// End logs the span with its accumulated attributes and duration. Only the
// first call has an effect.
func (s *slogSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true

	attrs := []slog.Attr{
		slog.String("span", s.name),
		slog.Duration(observability.AttrDuration, time.Since(s.start)),
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "span ended", append(attrs, toSlog(s.attrs)...)...)
}

func (s *slogSpan) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *slogSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, observability.String(observability.AttrStatus, code.String()))
	if description != "" {
		s.attrs = append(s.attrs, observability.String(observability.AttrStatus+".description", description))
	}
}

// RecordError attaches err to the span and logs it at Error.
func (s *slogSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.attrs = append(s.attrs, observability.Error(err))
	s.mu.Unlock()

	s.logger.LogAttrs(context.Background(), slog.LevelError, "span error",
		slog.String("span", s.name), slog.String(observability.AttrError, err.Error()))
}

func (s *slogSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, name,
		append([]slog.Attr{slog.String("span", s.name)}, toSlog(attrs)...)...)
}

// --- METRICS ---

// Counter returns the counter registered under name, creating it on first use.
func (o *Observer) Counter(name string) observability.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.counters[name]
	if !ok {
		c = &counter{name: name, logger: o.logger}
		o.counters[name] = c
	}
	return c
}

// Histogram returns the histogram registered under name, creating it on
// first use.
func (o *Observer) Histogram(name string) observability.Histogram {
	o.mu.Lock()
	defer o.mu.Unlock()
	h, ok := o.hists[name]
	if !ok {
		h = &histogram{name: name, logger: o.logger}
		o.hists[name] = h
	}
	return h
}

// CounterValue returns the running total of a counter, or 0 if it was never
// used.
func (o *Observer) CounterValue(name string) int64 {
	o.mu.Lock()
	c, ok := o.counters[name]
	o.mu.Unlock()
	if !ok {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

type counter struct {
	name   string
	logger *slog.Logger

	mu    sync.Mutex
	value int64
}

func (c *counter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.mu.Lock()
	c.value += value
	total := c.value
	c.mu.Unlock()

	c.logger.LogAttrs(ctx, slog.LevelDebug, "counter", append([]slog.Attr{
		slog.String("metric", c.name),
		slog.Int64("value", total),
		slog.Int64("delta", value),
	}, toSlog(attrs)...)...)
}

type histogram struct {
	name   string
	logger *slog.Logger
}

func (h *histogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	h.logger.LogAttrs(ctx, slog.LevelDebug, "histogram", append([]slog.Attr{
		slog.String("metric", h.name),
		slog.Float64("value", value),
	}, toSlog(attrs)...)...)
}

// --- LOGGING ---

// Trace logs below Debug; it only shows up with the level set to TRACE.
func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, LevelTrace, msg, toSlog(attrs)...)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelDebug, msg, toSlog(attrs)...)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelInfo, msg, toSlog(attrs)...)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelWarn, msg, toSlog(attrs)...)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelError, msg, toSlog(attrs)...)
}

func toSlog(attrs []observability.Attribute) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, slog.Any(a.Key, a.Value))
	}
	return out
}
