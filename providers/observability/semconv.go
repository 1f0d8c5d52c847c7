package observability

// Semantic conventions for observability attributes.
// These constants keep attribute, span and metric names consistent between
// the parser, the CLI and any Provider implementation.

// --- Parse Attributes ---

const (
	// AttrParseInputLength is the rune count of the raw model output
	AttrParseInputLength = "parse.input.length"

	// AttrParseInputPreview is a truncated copy of the raw model output
	AttrParseInputPreview = "parse.input.preview"

	// AttrParseStrategy is the splitting strategy that produced the chunks
	// ("delimiter", "title_resplit", "json", "none")
	AttrParseStrategy = "parse.strategy"

	// AttrParseChunks is the number of chunks that survived splitting
	AttrParseChunks = "parse.chunks"

	// AttrParseDiscarded is the number of pieces dropped as too short
	AttrParseDiscarded = "parse.discarded"

	// AttrParsePosts is the number of posts returned
	AttrParsePosts = "parse.posts"

	// AttrParseIncomplete is the number of posts with at least one defaulted field
	AttrParseIncomplete = "parse.incomplete"

	// AttrParseField is the role name of a field ("title", "angle", ...)
	AttrParseField = "parse.field"
)

// --- Config Attributes ---

const (
	// AttrConfigFile is the path of the YAML configuration file
	AttrConfigFile = "config.file"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrComponent names the program emitting the record
	AttrComponent = "component"
)

// --- Span Names ---

const (
	// SpanParsePosts is the span name for one parse call
	SpanParsePosts = "parse.posts"
)

// --- Event Names ---

const (
	// EventParseFallback marks that the title re-split replaced the delimiter split
	EventParseFallback = "parse.fallback"

	// EventParseJSON marks that the structured JSON shortcut was taken
	EventParseJSON = "parse.json"
)

// --- Metric Names ---

const (
	// MetricParseCount is the counter for parse calls
	MetricParseCount = "trendweaver.parse.count"

	// MetricParseDuration is the histogram for parse duration in milliseconds
	MetricParseDuration = "trendweaver.parse.duration"

	// MetricParsePosts is the counter for posts returned
	MetricParsePosts = "trendweaver.parse.posts"

	// MetricParseDefaults is the counter for fields filled with a default
	MetricParseDefaults = "trendweaver.parse.defaults"

	// MetricParseEmpty is the counter for calls that recovered no post
	MetricParseEmpty = "trendweaver.parse.empty"
)
