package jsonschema

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestGenerateJSONSchema_Types(t *testing.T) {
	type sample struct {
		Name     string            `json:"name"`
		Count    int               `json:"count"`
		Score    float64           `json:"score"`
		Active   bool              `json:"active"`
		Tags     []string          `json:"tags"`
		Extra    map[string]int    `json:"extra"`
		Optional *string           `json:"optional"`
		Skipped  string            `json:"-"`
		hidden   string
		Untagged string
		Nested   struct{ X uint8 } `json:"nested"`
	}

	schema, err := GenerateJSONSchema[sample]()
	if err != nil {
		t.Fatalf("GenerateJSONSchema() error = %v", err)
	}

	tests := []struct {
		prop string
		want string
	}{
		{"name", "string"},
		{"count", "integer"},
		{"score", "number"},
		{"active", "boolean"},
		{"tags", "array"},
		{"extra", "object"},
		{"optional", "string"},
		{"Untagged", "string"},
		{"nested", "object"},
	}
	for _, tt := range tests {
		got, ok := schema.Properties[tt.prop]
		if !ok {
			t.Errorf("property %q missing", tt.prop)
			continue
		}
		if got.Type != tt.want {
			t.Errorf("property %q type = %q, want %q", tt.prop, got.Type, tt.want)
		}
	}

	if len(schema.Properties) != len(tests) {
		t.Errorf("got %d properties, want %d", len(schema.Properties), len(tests))
	}
	if schema.Properties["tags"].Items.Type != "string" {
		t.Errorf("tags items = %+v, want string", schema.Properties["tags"].Items)
	}
	if vs, ok := schema.Properties["extra"].AdditionalProperties.(*Schema); !ok || vs.Type != "integer" {
		t.Errorf("extra additionalProperties = %v, want integer schema", schema.Properties["extra"].AdditionalProperties)
	}
	if schema.Properties["nested"].Properties["X"].Type != "integer" {
		t.Errorf("nested.X = %+v, want integer", schema.Properties["nested"].Properties["X"])
	}
	if schema.AdditionalProperties != false {
		t.Errorf("additionalProperties = %v, want false", schema.AdditionalProperties)
	}
}

func TestGenerateJSONSchema_Required(t *testing.T) {
	type sample struct {
		A string  `json:"a"`
		B string  `json:"b,omitempty"`
		C *string `json:"c"`
		D *string `json:"d" jsonschema:"required"`
	}

	schema, err := GenerateJSONSchema[sample]()
	if err != nil {
		t.Fatalf("GenerateJSONSchema() error = %v", err)
	}
	if want := []string{"a", "d"}; !reflect.DeepEqual(schema.Required, want) {
		t.Errorf("Required = %v, want %v", schema.Required, want)
	}
}

func TestGenerateJSONSchema_Tags(t *testing.T) {
	type sample struct {
		Mood  string  `json:"mood" jsonschema:"description=How it feels,enum=happy,enum=sad"`
		Level int     `json:"level" jsonschema:"enum=1,enum=2"`
		Ratio float64 `json:"ratio" jsonschema:"enum=0.5"`
		Flag  bool    `json:"flag" jsonschema:"enum=true"`
		Note  string  `json:"note" jsonschema:"description=One, two and three,required"`
	}

	schema, err := GenerateJSONSchema[sample]()
	if err != nil {
		t.Fatalf("GenerateJSONSchema() error = %v", err)
	}

	mood := schema.Properties["mood"]
	if mood.Description != "How it feels" {
		t.Errorf("mood description = %q", mood.Description)
	}
	if want := []any{"happy", "sad"}; !reflect.DeepEqual(mood.Enum, want) {
		t.Errorf("mood enum = %v, want %v", mood.Enum, want)
	}
	if want := []any{int64(1), int64(2)}; !reflect.DeepEqual(schema.Properties["level"].Enum, want) {
		t.Errorf("level enum = %v, want %v", schema.Properties["level"].Enum, want)
	}
	if want := []any{0.5}; !reflect.DeepEqual(schema.Properties["ratio"].Enum, want) {
		t.Errorf("ratio enum = %v, want %v", schema.Properties["ratio"].Enum, want)
	}
	if want := []any{true}; !reflect.DeepEqual(schema.Properties["flag"].Enum, want) {
		t.Errorf("flag enum = %v, want %v", schema.Properties["flag"].Enum, want)
	}
	if got := schema.Properties["note"].Description; got != "One, two and three" {
		t.Errorf("note description = %q, want %q", got, "One, two and three")
	}
}

func TestGenerateJSONSchema_BadEnum(t *testing.T) {
	tests := []struct {
		name string
		gen  func() (*Schema, error)
	}{
		{"int", func() (*Schema, error) {
			return GenerateJSONSchema[struct {
				N int `jsonschema:"enum=x"`
			}]()
		}},
		{"bool", func() (*Schema, error) {
			return GenerateJSONSchema[struct {
				B bool `jsonschema:"enum=maybe"`
			}]()
		}},
		{"unsupported kind", func() (*Schema, error) {
			return GenerateJSONSchema[struct {
				S []string `jsonschema:"enum=a"`
			}]()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.gen(); err == nil {
				t.Error("GenerateJSONSchema() error = nil, want error")
			}
		})
	}
}

type node struct {
	Name     string  `json:"name"`
	Children []*node `json:"children"`
}

func TestGenerateJSONSchema_Recursive(t *testing.T) {
	schema, err := GenerateJSONSchema[node]()
	if err != nil {
		t.Fatalf("GenerateJSONSchema() error = %v", err)
	}

	if ref := schema.Properties["children"].Items.Ref; ref != "#/$defs/node" {
		t.Errorf("children items ref = %q, want %q", ref, "#/$defs/node")
	}
	def, ok := schema.Defs["node"]
	if !ok || def == nil {
		t.Fatalf("Defs = %v, want a node definition", schema.Defs)
	}
	if def.Defs != nil {
		t.Error("definition must not carry its own $defs")
	}

	// Must encode without looping.
	if _, err := schema.JSONString(); err != nil {
		t.Errorf("JSONString() error = %v", err)
	}
}

func TestGenerateJSONSchema_Slice(t *testing.T) {
	type item struct {
		ID int `json:"id"`
	}

	schema, err := GenerateJSONSchema[[]item]()
	if err != nil {
		t.Fatalf("GenerateJSONSchema() error = %v", err)
	}
	if schema.Type != "array" || schema.Items.Properties["id"].Type != "integer" {
		t.Errorf("schema = %s", schema)
	}
	if schema.Defs != nil {
		t.Errorf("Defs = %v, want none", schema.Defs)
	}
}

func TestSchema_JSONString(t *testing.T) {
	schema := &Schema{
		Type:       "object",
		Properties: map[string]*Schema{"a": {Type: "string"}},
	}

	compact, err := schema.JSONString()
	if err != nil {
		t.Fatalf("JSONString() error = %v", err)
	}
	if want := `{"type":"object","properties":{"a":{"type":"string"}}}`; compact != want {
		t.Errorf("JSONString() = %s, want %s", compact, want)
	}

	indented, err := schema.JSONString(true)
	if err != nil {
		t.Fatalf("JSONString(true) error = %v", err)
	}
	if !strings.Contains(indented, "\n  \"type\": \"object\"") {
		t.Errorf("JSONString(true) = %s, want indented output", indented)
	}

	if schema.String() != compact {
		t.Errorf("String() = %s, want %s", schema.String(), compact)
	}

	var back Schema
	if err := json.Unmarshal([]byte(compact), &back); err != nil {
		t.Errorf("output does not decode: %v", err)
	}
}
