package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema is the subset of JSON Schema needed to describe the records a model
// is asked to return in structured-output mode.
type Schema struct {
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties maps JSON field names to their schemas.
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Items is the element schema of an array.
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties is false for closed objects or a value schema for maps.
	AdditionalProperties any   `json:"additionalProperties,omitempty"`
	Enum                 []any `json:"enum,omitempty"`
	// Ref points into Defs and breaks type recursion.
	Ref  string             `json:"$ref,omitempty"`
	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// GenerateJSONSchema derives a schema from T. Field names follow the json
// struct tag; a jsonschema tag adds "description=...", "enum=..." and
// "required". A field is required unless it is a pointer or has omitempty.
func GenerateJSONSchema[T any]() (*Schema, error) {
	g := &generator{
		active: make(map[reflect.Type]bool),
		defs:   make(map[string]*Schema),
	}
	schema, err := g.schema(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	if len(g.defs) > 0 {
		schema.Defs = g.defs
	}
	return schema, nil
}

type generator struct {
	// active holds the struct types currently being expanded.
	active map[reflect.Type]bool
	defs   map[string]*Schema
}

func (g *generator) schema(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}, nil
	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil
	case reflect.Slice, reflect.Array:
		items, err := g.schema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case reflect.Map:
		values, err := g.schema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil
	case reflect.Struct:
		return g.object(t)
	default:
		return &Schema{Type: "object"}, nil
	}
}

// object expands a struct. A struct met again while it is still being
// expanded becomes a $ref, and its finished schema is stored in defs.
func (g *generator) object(t reflect.Type) (*Schema, error) {
	name := defName(t)
	if g.active[t] {
		if _, ok := g.defs[name]; !ok {
			g.defs[name] = nil
		}
		return &Schema{Ref: "#/$defs/" + name}, nil
	}
	g.active[t] = true
	defer delete(g.active, t)

	schema := &Schema{
		Type:                 "object",
		Properties:           make(map[string]*Schema),
		AdditionalProperties: false,
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		fieldSchema, err := g.schema(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		required := field.Type.Kind() != reflect.Pointer && !omitEmpty
		if fieldSchema.Ref == "" {
			tagged, err := applyTag(field, fieldSchema)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
			required = required || tagged
		}

		schema.Properties[key] = fieldSchema
		if required {
			schema.Required = append(schema.Required, key)
		}
	}

	if def, ok := g.defs[name]; ok && def == nil {
		copied := *schema
		g.defs[name] = &copied
	}
	return schema, nil
}

func defName(t reflect.Type) string {
	if t.Name() != "" {
		return strings.ToLower(t.Name())
	}
	return "anonymousStruct"
}

func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, strings.Contains(opts, "omitempty"), false
}

// applyTag reads the jsonschema struct tag into s and reports whether the
// field is marked required. Items without "=" continue the previous
// description, so descriptions may contain commas.
func applyTag(field reflect.StructField, s *Schema) (bool, error) {
	tag := field.Tag.Get("jsonschema")
	if tag == "" {
		return false, nil
	}

	required := false
	inDescription := false
	for _, item := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		switch {
		case hasValue && key == "description":
			s.Description = value
			inDescription = true
		case hasValue && key == "enum":
			v, err := enumValue(field.Type, value)
			if err != nil {
				return false, err
			}
			s.Enum = append(s.Enum, v)
			inDescription = false
		case !hasValue && item == "required":
			required = true
			inDescription = false
		case inDescription:
			s.Description += "," + item
		}
	}
	return required, nil
}

// enumValue converts a tag value to the field's kind.
func enumValue(t reflect.Type, value string) (any, error) {
	switch t.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("enum value %q: %w", value, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("enum value %q: %w", value, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("enum value %q: %w", value, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("enum unsupported for %v", t)
	}
}

// JSONString encodes the schema, indented when indent is true.
func (s *Schema) JSONString(indent ...bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(indent) > 0 && indent[0] {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(data), nil
}

// String returns the compact JSON form of the schema.
func (s *Schema) String() string {
	out, err := s.JSONString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return out
}
