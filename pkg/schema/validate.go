package schema

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON Schema.
type Schema struct {
	compiled *gojsonschema.Schema
}

// Compile parses a JSON Schema document.
func Compile(data []byte) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{compiled: s}, nil
}

// MustCompile is like Compile but panics on error. Intended for embedded schemas.
func MustCompile(data []byte) *Schema {
	s, err := Compile(data)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a decoded document (maps, slices and scalars as produced by
// encoding/json or yaml.v3) against the schema.
// Returns an *AggregateError with all validation failures found.
func (s *Schema) Validate(doc any) error {
	return s.validate(gojsonschema.NewGoLoader(doc))
}

// ValidateJSON checks a raw JSON document against the schema.
func (s *Schema) ValidateJSON(data []byte) error {
	return s.validate(gojsonschema.NewBytesLoader(data))
}

func (s *Schema) validate(doc gojsonschema.JSONLoader) error {
	result, err := s.compiled.Validate(doc)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, &ValidationError{
			Key:    e.Field(),
			Rule:   e.Type(),
			Reason: e.Description(),
		})
	}
	return &AggregateError{Errors: errs}
}
