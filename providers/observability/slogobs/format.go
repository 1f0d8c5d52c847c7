package slogobs

import (
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is a single line with the attributes JSON-encoded:
	//   2026-10-17 10:40:35 DEBUG parse finished → {"parse.posts":3}
	FormatCompact Format = "compact"

	// FormatJSON is one JSON object per record, for log aggregation.
	FormatJSON Format = "json"
)

// ParseFormat parses a format name. Unknown names yield FormatCompact.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// FormatFromEnv reads TRENDWEAVER_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	return ParseFormat(firstEnv("TRENDWEAVER_LOG_FORMAT", "LOG_FORMAT"))
}

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
