package format

import "github.com/leofalp/trendweaver/internal/jsonschema"

// Record is one post as requested in structured-output mode. The keys are
// among those the JSON path of package parse recognizes.
type Record struct {
	Title         string `json:"title" jsonschema:"description=Headline of the post"`
	Angle         string `json:"angle" jsonschema:"description=Short label for the perspective taken"`
	VisualKeyword string `json:"imageKeyword" jsonschema:"description=English keywords for the cover image"`
	Content       string `json:"content" jsonschema:"description=Body text in Markdown, with [n] citation markers"`
}

// Batch is the top-level object of a structured-output answer.
type Batch struct {
	Posts []Record `json:"posts"`
}

// Schema returns the JSON schema of [Batch].
func Schema() (*jsonschema.Schema, error) {
	return jsonschema.GenerateJSONSchema[Batch]()
}
