// Package slogobs implements [observability.Provider] on top of log/slog.
//
// Spans, counters and histograms are reported as Debug records, so a parser
// wired to an Observer at the default Info level only logs warnings about
// unusable model output. Counter totals are kept in memory and can be read
// back with [Observer.CounterValue].
package slogobs
