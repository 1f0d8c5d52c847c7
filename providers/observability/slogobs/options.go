package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option is a functional option for configuring the Observer.
type Option func(*config)

type config struct {
	format    Format
	level     slog.Level
	output    io.Writer
	component string
	logger    *slog.Logger // bypasses format, level and output when set
}

// WithFormat sets the log output format.
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets the output writer for logs. Defaults to os.Stderr so that
// command output on stdout stays machine readable.
func WithOutput(output io.Writer) Option {
	return func(c *config) {
		if output != nil {
			c.output = output
		}
	}
}

// WithComponent adds a "component" attribute to every record, naming the
// program that parsed, e.g. "postparse".
func WithComponent(name string) Option {
	return func(c *config) {
		c.component = name
	}
}

// WithLogger uses an existing slog.Logger instead of building a handler.
// Format, level and output are then ignored; WithComponent still applies.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func defaultConfig() *config {
	return &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stderr,
	}
}

func applyOptions(opts ...Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
