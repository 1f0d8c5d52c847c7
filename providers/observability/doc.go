// Package observability defines the interfaces and semantic conventions used
// for tracing, metrics and structured logging in trendweaver.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics],
// and [Logger] into a single injectable dependency. Callers propagate an active
// [Provider] and [Span] through a [context.Context] using [ContextWithObserver]
// and [ContextWithSpan]; they can be retrieved with [ObserverFromContext] and
// [SpanFromContext].
//
// semconv.go holds the attribute, span and metric names recorded by the
// parser. The slogobs subpackage implements [Provider] on top of log/slog.
package observability
