// Package catalog holds the embedded LUMINEX decision graph and the codec
// for graph documents (YAML or JSON).
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/luminex/symptomcheck/internal/dto"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed data/graph.yaml
var defaultGraph []byte

//go:embed data/graph.schema.json
var graphSchema []byte

var documentSchema = schema.MustCompile(graphSchema)

// Schema returns the JSON Schema graph documents are validated against.
func Schema() []byte {
	return graphSchema
}

// Source returns the raw embedded graph document.
func Source() []byte {
	return defaultGraph
}

// Parse decodes a graph document. JSON is accepted as a subset of YAML.
// The document is checked against the graph schema before conversion.
func Parse(data []byte) (*domain.Graph, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	return Decode(raw)
}

// Decode converts a generic document (as produced by yaml or json decoding) into a graph.
func Decode(raw map[string]any) (*domain.Graph, error) {
	if raw == nil {
		return nil, fmt.Errorf("empty graph document")
	}
	if err := documentSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid graph document: %w", err)
	}

	var doc dto.GraphDocument
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	return doc.Graph()
}

var (
	defaultOnce sync.Once
	defaultG    *domain.Graph
	defaultErr  error
)

// Default returns the embedded graph. It is parsed once and shared; callers must not mutate it.
func Default() (*domain.Graph, error) {
	defaultOnce.Do(func() {
		defaultG, defaultErr = Parse(defaultGraph)
	})
	return defaultG, defaultErr
}

// Loader serves the embedded graph as a ports.GraphLoader.
type Loader struct{}

// NewLoader creates a loader for the embedded graph.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements ports.GraphLoader.
func (l *Loader) Load(_ context.Context) (*domain.Graph, error) {
	return Default()
}
