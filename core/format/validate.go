package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidAnswer is wrapped by every error returned from Validate.
var ErrInvalidAnswer = errors.New("answer does not match the record schema")

// Issue is one schema violation, located by JSON pointer.
type Issue struct {
	Location string
	Message  string
}

// ValidationError lists the violations found in a structured answer.
type ValidationError struct {
	Issues []Issue
	Cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrInvalidAnswer.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidAnswer
}

var compiled = sync.OnceValues(compileSchema)

func compileSchema() (*jsonschema.Schema, error) {
	schema, err := Schema()
	if err != nil {
		return nil, err
	}
	encoded, err := schema.JSONString()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("records.json", strings.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("add record schema: %w", err)
	}
	return compiler.Compile("records.json")
}

// Validate checks a structured-output answer strictly against [Schema].
// The parser itself accepts far looser JSON; Validate tells whether the
// model honoured the requested shape.
func Validate(answer []byte) error {
	schema, err := compiled()
	if err != nil {
		return fmt.Errorf("compile record schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(answer, &doc); err != nil {
		return &ValidationError{
			Issues: []Issue{{Message: "not valid JSON: " + err.Error()}},
			Cause:  err,
		}
	}
	if err := schema.Validate(doc); err != nil {
		return &ValidationError{Issues: issues(err), Cause: err}
	}
	return nil
}

// issues flattens a validation error tree into its leaves.
func issues(err error) []Issue {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Issue{{Message: err.Error()}}
	}

	var out []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			out = append(out, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return out
}
