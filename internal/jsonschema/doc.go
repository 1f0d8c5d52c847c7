// Package jsonschema derives JSON Schema documents from Go types by
// reflection. Recursive types are expressed with $ref and $defs.
//
// The entry point is [GenerateJSONSchema].
package jsonschema
