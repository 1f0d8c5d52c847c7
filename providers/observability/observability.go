package observability

import (
	"context"
	"time"
)

// Provider bundles the tracing, metrics and logging hooks a parser reports
// to. A nil Provider means the caller does not observe the parse.
type Provider interface {
	Tracer
	Metrics
	Logger
}

// Tracer opens a span around one unit of work, such as a single parse call.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span is an open unit of work. End may be called more than once.
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	AddEvent(name string, attrs ...Attribute)
}

// StatusCode is the outcome recorded on a span.
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	// StatusError marks a parse that recovered nothing.
	StatusError
)

// String returns the lower-case status name.
func (c StatusCode) String() string {
	switch c {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return "unset"
	}
}

// Metrics hands out named instruments; repeated calls with one name share
// the same instrument.
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// Logger writes leveled, structured records. Trace sits below Debug and
// carries raw input previews.
type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// Attribute is one key-value pair attached to a span, metric or log record.
// Keys come from semconv.go.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error returns an AttrError attribute. A nil error yields an empty value.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: AttrError, Value: ""}
	}
	return Attribute{Key: AttrError, Value: err.Error()}
}
