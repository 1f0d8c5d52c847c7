package parse

import "fmt"

// Strategy names the way a blob was divided into records.
type Strategy int

const (
	// StrategyNone means no record survived.
	StrategyNone Strategy = iota
	// StrategyDelimiter means the divider token split the blob.
	StrategyDelimiter
	// StrategyTitleResplit means the divider was missing and the blob was
	// cut at every title tag instead.
	StrategyTitleResplit
	// StrategyJSON means the blob was a JSON document of posts.
	StrategyJSON
)

// String returns the strategy name used in logs.
func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyDelimiter:
		return "delimiter"
	case StrategyTitleResplit:
		return "title_resplit"
	case StrategyJSON:
		return "json"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// MarshalText lets Strategy appear by name in JSON output.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalText lets Source appear by name in JSON output.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of one parse with diagnostics. Fields[i] tells, for
// Posts[i], how each role was recovered, indexed by Role.
type Result struct {
	Posts    []Post              `json:"posts"`
	Fields   [][roleCount]Source `json:"fields"`
	Strategy Strategy            `json:"strategy"`

	// Chunks is the number of chunks that survived splitting.
	Chunks int `json:"chunks"`
	// Discarded is the number of non-empty pieces dropped as too short.
	Discarded int `json:"discarded"`
}

// Complete reports whether every field of post i came from a tag or a JSON
// key, with no alias or default involved.
func (r Result) Complete(i int) bool {
	if i < 0 || i >= len(r.Fields) {
		return false
	}
	for _, src := range r.Fields[i] {
		if src != SourceTag && src != SourceJSON {
			return false
		}
	}
	return true
}

// Incomplete counts the posts that needed an alias or a default.
func (r Result) Incomplete() int {
	n := 0
	for i := range r.Fields {
		if !r.Complete(i) {
			n++
		}
	}
	return n
}

// Defaults counts the fields, across all posts, filled with a default.
func (r Result) Defaults() int {
	n := 0
	for _, fields := range r.Fields {
		for _, src := range fields {
			if src == SourceDefault {
				n++
			}
		}
	}
	return n
}
