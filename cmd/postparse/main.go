// Command postparse replays stored model output through the post parser and
// prints the recovered posts as JSON, or in the tagged format with -render.
//
// Usage:
//
//	postparse [flags] [file]
//
// With no file, or with "-", the raw text is read from stdin. Exit status is
// 0 on success, 1 on an input or configuration error and 2 when no post could
// be recovered. With -validate the input is only checked against the
// structured-output schema, and a mismatch exits with 1.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/leofalp/trendweaver/core/format"
	"github.com/leofalp/trendweaver/core/parse"
	"github.com/leofalp/trendweaver/internal/config"
	"github.com/leofalp/trendweaver/internal/utils"
	"github.com/leofalp/trendweaver/providers/observability"
	"github.com/leofalp/trendweaver/providers/observability/slogobs"

	_ "github.com/joho/godotenv/autoload"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitNoPosts = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type flags struct {
	config      string
	minLength   int
	delimiter   string
	splitMerged bool
	noHTML      bool
	noJSON      bool
	logLevel    string
	logFormat   string
	detail      bool
	render      bool
	schema      bool
	validate    bool
	verbose     bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("postparse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var f flags
	fs.StringVar(&f.config, "config", "", "YAML configuration file (default $TRENDWEAVER_CONFIG)")
	fs.IntVar(&f.minLength, "min", parse.DefaultMinChunkLength, "rune count a chunk must exceed to count as a post")
	fs.StringVar(&f.delimiter, "delimiter", parse.DefaultDelimiter, "token separating posts")
	fs.BoolVar(&f.splitMerged, "split-merged", false, "split delimited chunks that hold several titles")
	fs.BoolVar(&f.noHTML, "no-html", false, "do not convert HTML input to text")
	fs.BoolVar(&f.noJSON, "no-json", false, "do not decode JSON input")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: compact or json")
	fs.BoolVar(&f.detail, "detail", false, "print field provenance and split diagnostics")
	fs.BoolVar(&f.render, "render", false, "print the posts in the tagged format instead of JSON")
	fs.BoolVar(&f.schema, "schema", false, "print the JSON schema for structured-output requests and exit")
	fs.BoolVar(&f.validate, "validate", false, "check a JSON answer against the schema instead of parsing it")
	fs.BoolVar(&f.verbose, "v", false, "log parse diagnostics to stderr")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}
	if f.schema {
		schema, err := format.Schema()
		if err != nil {
			fmt.Fprintf(stderr, "postparse: %v\n", err)
			return exitFailure
		}
		fmt.Fprintln(stdout, utils.JSONToString(schema, true))
		return exitOK
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "postparse: at most one input file")
		return exitFailure
	}

	cfg, err := loadConfig(fs, &f)
	if err != nil {
		fmt.Fprintf(stderr, "postparse: %v\n", err)
		return exitFailure
	}

	raw, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "postparse: %v\n", err)
		return exitFailure
	}

	if f.validate {
		if err := format.Validate([]byte(raw)); err != nil {
			fmt.Fprintf(stderr, "postparse: %v\n", err)
			return exitFailure
		}
		fmt.Fprintln(stdout, "valid")
		return exitOK
	}

	ctx := context.Background()
	opts := cfg.Options()
	if f.verbose {
		observer := slogobs.New(
			slogobs.WithFormat(cfg.Format()),
			slogobs.WithLevel(cfg.Level()),
			slogobs.WithOutput(stderr),
			slogobs.WithComponent("postparse"),
		)
		observer.Debug(ctx, "configuration loaded",
			observability.String(observability.AttrConfigFile, cfg.File),
			observability.Int(observability.AttrParseInputLength, utf8.RuneCountInString(raw)))
		opts = append(opts, parse.WithObserver(observer))
	}

	parser := parse.New(opts...)
	res := parser.ParseResult(ctx, raw)

	switch {
	case f.render:
		if len(res.Posts) > 0 {
			fmt.Fprintln(stdout, format.New(parser).Render(res.Posts))
		}
	case f.detail:
		fmt.Fprintln(stdout, utils.JSONToString(res, true))
	default:
		fmt.Fprintln(stdout, utils.JSONToString(res.Posts, true))
	}

	if len(res.Posts) == 0 {
		fmt.Fprintln(stderr, "postparse: no posts recovered")
		return exitNoPosts
	}
	return exitOK
}

// loadConfig reads the configuration and lays explicitly set flags over it.
func loadConfig(fs *flag.FlagSet, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "min":
			cfg.MinChunkLength = f.minLength
		case "delimiter":
			cfg.Delimiter = f.delimiter
		case "split-merged":
			cfg.SplitMerged = f.splitMerged
		case "no-html":
			cfg.HTML = !f.noHTML
		case "no-json":
			cfg.JSON = !f.noJSON
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "log-format":
			cfg.LogFormat = f.logFormat
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}
