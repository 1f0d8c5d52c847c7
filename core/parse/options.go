package parse

import (
	"strings"

	"github.com/leofalp/trendweaver/providers/observability"
)

const (
	// DefaultMinChunkLength is the rune count a chunk must exceed to be
	// treated as a record rather than preamble chatter.
	DefaultMinChunkLength = 20

	// DefaultDelimiter is the token models are asked to put between posts.
	DefaultDelimiter = "---POST_DIVIDER---"

	// DefaultTitle, DefaultAngle and DefaultVisualKeyword fill the short
	// fields a record does not carry. The body falls back to the whole chunk.
	DefaultTitle         = "爆款深度内容"
	DefaultAngle         = "实时观察"
	DefaultVisualKeyword = "news"
)

// Option is a functional option for configuring a Parser.
type Option func(*config)

// config holds the tuning knobs of a Parser. Tag names and aliases are
// indexed by Role.
type config struct {
	minChunkLength int
	delimiter      string
	tagNames       [roleCount][]string
	aliases        [roleCount][]string
	defaults       [roleCount]string
	splitMerged    bool
	decodeHTML     bool
	decodeJSON     bool
	observer       observability.Provider
}

func defaultConfig() *config {
	return &config{
		minChunkLength: DefaultMinChunkLength,
		delimiter:      DefaultDelimiter,
		tagNames: [roleCount][]string{
			RoleTitle:         {"TITLE"},
			RoleAngle:         {"ANGLE"},
			RoleVisualKeyword: {"IMAGE_KEYWORD", "VISUAL_KEYWORD", "KEYWORD"},
			RoleBody:          {"CONTENT", "BODY"},
		},
		aliases: [roleCount][]string{
			RoleTitle:         {"标题", "Title", "Headline"},
			RoleAngle:         {"角度", "切入点", "视角", "Angle"},
			RoleVisualKeyword: {"图片关键词", "视觉关键词", "配图关键词", "Image Keyword", "Visual Keyword", "Keyword"},
			RoleBody:          {"正文", "内容", "Content", "Body"},
		},
		defaults: [roleCount]string{
			RoleTitle:         DefaultTitle,
			RoleAngle:         DefaultAngle,
			RoleVisualKeyword: DefaultVisualKeyword,
		},
		decodeHTML: true,
		decodeJSON: true,
	}
}

// WithMinChunkLength sets the rune count a chunk must exceed to survive
// splitting. Negative values are treated as zero.
func WithMinChunkLength(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.minChunkLength = n
	}
}

// WithDelimiter sets the record separator token. An empty token is ignored.
func WithDelimiter(token string) Option {
	return func(c *config) {
		if strings.TrimSpace(token) != "" {
			c.delimiter = strings.TrimSpace(token)
		}
	}
}

// WithTagNames replaces the sigil names recognized for role, e.g.
// WithTagNames(RoleBody, "CONTENT", "TEXT"). The first name is the canonical
// one. Calls with no usable name are ignored.
func WithTagNames(role Role, names ...string) Option {
	return func(c *config) {
		if !role.valid() {
			return
		}
		var kept []string
		for _, n := range names {
			if n = canonicalTag(n); n != "" {
				kept = append(kept, n)
			}
		}
		if len(kept) > 0 {
			c.tagNames[role] = kept
		}
	}
}

// WithAliases replaces the natural-language labels recognized for role when
// its sigil tag is missing. Passing no labels disables alias matching for
// the role.
func WithAliases(role Role, labels ...string) Option {
	return func(c *config) {
		if !role.valid() {
			return
		}
		kept := make([]string, 0, len(labels))
		for _, l := range labels {
			if l = strings.TrimSpace(l); l != "" {
				kept = append(kept, l)
			}
		}
		c.aliases[role] = kept
	}
}

// WithDefault sets the fallback value of a short role. The body has no
// configurable default: it falls back to the whole chunk. Empty values are
// ignored so a field can never come out empty.
func WithDefault(role Role, value string) Option {
	return func(c *config) {
		if role == RoleBody || !role.valid() {
			return
		}
		if value = strings.TrimSpace(value); value != "" {
			c.defaults[role] = value
		}
	}
}

// WithSplitMerged makes the splitter break a delimited chunk that carries
// more than one title tag into one chunk per title.
func WithSplitMerged(enabled bool) Option {
	return func(c *config) {
		c.splitMerged = enabled
	}
}

// WithHTML toggles conversion of HTML-shaped output to Markdown before
// normalization.
func WithHTML(enabled bool) Option {
	return func(c *config) {
		c.decodeHTML = enabled
	}
}

// WithJSON toggles decoding of tag-less JSON output as a list of posts.
func WithJSON(enabled bool) Option {
	return func(c *config) {
		c.decodeJSON = enabled
	}
}

// WithObserver attaches an observability provider. Without one the parser
// performs no I/O; an observer found in the context passed to
// [Parser.ParseResult] is used as a fallback.
func WithObserver(observer observability.Provider) Option {
	return func(c *config) {
		c.observer = observer
	}
}

func applyOptions(opts ...Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}
