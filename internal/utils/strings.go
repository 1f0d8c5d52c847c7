package utils

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

const (
	// DefaultMaxStringLength is the default maximum rune count kept by
	// TruncateString.
	DefaultMaxStringLength = 500
)

// JSONToString serialises object to JSON. When indent is true the output is
// pretty-printed with two-space indentation. On failure it returns a JSON
// error object, so the result is always safe to print.
func JSONToString(object any, indent ...bool) string {
	var (
		encoded []byte
		err     error
	)
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return `{"error": "failed to marshal to JSON: ` + err.Error() + `"}`
	}
	return string(encoded)
}

// TruncateString shortens s to at most maxLen runes and appends the original
// rune count. Multi-byte text such as Chinese is never cut inside a rune.
// If maxLen is zero or negative, [DefaultMaxStringLength] is used instead.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	total := utf8.RuneCountInString(s)
	if total <= maxLen {
		return s
	}
	cut, n := 0, 0
	for i := range s {
		if n == maxLen {
			cut = i
			break
		}
		n++
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:cut], total)
}
