package slogobs

import (
	"log/slog"
	"strings"
)

// LevelTrace sits below Debug and is only emitted when asked for explicitly.
const LevelTrace = slog.LevelDebug - 4

// ParseLogLevel parses TRACE, DEBUG, INFO, WARN/WARNING or ERROR in any case.
// The second result is false for anything else, in which case Info is
// returned.
func ParseLogLevel(level string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return LevelTrace, true
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// LevelFromEnv reads TRENDWEAVER_LOG_LEVEL, then LOG_LEVEL. Default: INFO.
func LevelFromEnv() slog.Level {
	level, _ := ParseLogLevel(firstEnv("TRENDWEAVER_LOG_LEVEL", "LOG_LEVEL"))
	return level
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
