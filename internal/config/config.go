// Package config loads parser settings from defaults, an optional YAML file
// and TRENDWEAVER_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/trendweaver/core/parse"
	"github.com/leofalp/trendweaver/providers/observability/slogobs"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TRENDWEAVER_"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the tunable parser settings. Zero values in Defaults, Aliases
// and Tags keep the built-in parser values.
type Config struct {
	// File is the YAML file read by Load; only settable from the environment.
	File string `env:"CONFIG" yaml:"-"`

	MinChunkLength int    `env:"MIN_CHUNK_LENGTH" yaml:"min_chunk_length"`
	Delimiter      string `env:"DELIMITER" yaml:"delimiter"`
	SplitMerged    bool   `env:"SPLIT_MERGED" yaml:"split_merged"`
	HTML           bool   `env:"HTML" yaml:"html"`
	JSON           bool   `env:"JSON" yaml:"json"`

	LogLevel  string `env:"LOG_LEVEL" yaml:"log_level"`
	LogFormat string `env:"LOG_FORMAT" yaml:"log_format"`

	Defaults Defaults `envPrefix:"DEFAULT_" yaml:"defaults"`
	Aliases  Labels   `envPrefix:"ALIASES_" yaml:"aliases"`
	Tags     Labels   `envPrefix:"TAGS_" yaml:"tags"`
}

// Defaults are the fallback values of the short fields.
type Defaults struct {
	Title         string `env:"TITLE" yaml:"title"`
	Angle         string `env:"ANGLE" yaml:"angle"`
	VisualKeyword string `env:"VISUAL_KEYWORD" yaml:"visual_keyword"`
}

// Labels lists names per field, used both for alias labels and tag names.
// Environment values are comma separated.
type Labels struct {
	Title         []string `env:"TITLE" yaml:"title"`
	Angle         []string `env:"ANGLE" yaml:"angle"`
	VisualKeyword []string `env:"VISUAL_KEYWORD" yaml:"visual_keyword"`
	Body          []string `env:"BODY" yaml:"body"`
}

// Default returns the configuration matching parse.New() with no options.
func Default() *Config {
	return &Config{
		MinChunkLength: parse.DefaultMinChunkLength,
		Delimiter:      parse.DefaultDelimiter,
		HTML:           true,
		JSON:           true,
		LogLevel:       "info",
		LogFormat:      string(slogobs.FormatCompact),
	}
}

// Load builds a Config from the defaults, the YAML file at path (or the one
// named by TRENDWEAVER_CONFIG when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.File == "" {
		cfg.File = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.File = path
	return nil
}

// Validate checks the settings and returns an error wrapping ErrInvalid.
func (c *Config) Validate() error {
	if c.MinChunkLength < 0 {
		return fmt.Errorf("%w: min_chunk_length must be >= 0, got %d", ErrInvalid, c.MinChunkLength)
	}
	if strings.TrimSpace(c.Delimiter) == "" {
		return fmt.Errorf("%w: delimiter must not be empty", ErrInvalid)
	}
	if _, ok := slogobs.ParseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case string(slogobs.FormatCompact), string(slogobs.FormatJSON):
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() slog.Level {
	level, _ := slogobs.ParseLogLevel(c.LogLevel)
	return level
}

// Format returns the parsed log format.
func (c *Config) Format() slogobs.Format {
	return slogobs.ParseFormat(c.LogFormat)
}

// Options converts the configuration into parser options.
func (c *Config) Options() []parse.Option {
	opts := []parse.Option{
		parse.WithMinChunkLength(c.MinChunkLength),
		parse.WithDelimiter(c.Delimiter),
		parse.WithSplitMerged(c.SplitMerged),
		parse.WithHTML(c.HTML),
		parse.WithJSON(c.JSON),
		parse.WithDefault(parse.RoleTitle, c.Defaults.Title),
		parse.WithDefault(parse.RoleAngle, c.Defaults.Angle),
		parse.WithDefault(parse.RoleVisualKeyword, c.Defaults.VisualKeyword),
	}
	for role, labels := range c.Aliases.byRole() {
		if len(labels) > 0 {
			opts = append(opts, parse.WithAliases(role, labels...))
		}
	}
	for role, names := range c.Tags.byRole() {
		if len(names) > 0 {
			opts = append(opts, parse.WithTagNames(role, names...))
		}
	}
	return opts
}

func (l Labels) byRole() map[parse.Role][]string {
	return map[parse.Role][]string{
		parse.RoleTitle:         l.Title,
		parse.RoleAngle:         l.Angle,
		parse.RoleVisualKeyword: l.VisualKeyword,
		parse.RoleBody:          l.Body,
	}
}
