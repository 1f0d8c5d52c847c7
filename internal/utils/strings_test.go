package utils

import (
	"strings"
	"testing"
)

func TestJSONToString(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		indent    bool
		wantSub   string
		wantLines bool
	}{
		{"compact", map[string]int{"a": 1}, false, `{"a":1}`, false},
		{"indented", map[string]int{"x": 42}, true, `"x": 42`, true},
		{"unicode kept", map[string]string{"title": "标题"}, false, `"标题"`, false},
		{"marshal error", make(chan int), false, `"error"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JSONToString(tt.input, tt.indent)
			if !strings.Contains(got, tt.wantSub) {
				t.Errorf("JSONToString() = %q, want it to contain %q", got, tt.wantSub)
			}
			if strings.Contains(got, "\n") != tt.wantLines {
				t.Errorf("JSONToString() multi-line = %v, want %v", strings.Contains(got, "\n"), tt.wantLines)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"ascii", "hello world", 5, "hello... (truncated, total: 11 chars)"},
		{"runes not bytes", "爆款深度内容", 2, "爆款... (truncated, total: 6 chars)"},
		{"zero uses default", strings.Repeat("a", DefaultMaxStringLength), 0, strings.Repeat("a", DefaultMaxStringLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
