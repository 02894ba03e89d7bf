package dsl

import (
	"fmt"

	"github.com/luminex/symptomcheck/internal/validator"
	"github.com/luminex/symptomcheck/pkg/adapters/memory"
	"github.com/luminex/symptomcheck/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	graph      *domain.Graph
	categories map[string]int
	nodes      []*NodeBuilder
	strict     bool
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		graph:      domain.NewGraph(),
		categories: make(map[string]int),
	}
}

// Strict makes Build fail when the graph does not pass validation.
func (b *Builder) Strict() *Builder {
	b.strict = true
	return b
}

// Branch registers a branch of the booking catalog.
func (b *Builder) Branch(id, tr, en string) *Builder {
	b.graph.Branches[id] = &domain.Branch{ID: id, Name: text(tr, en)}
	return b
}

// Message registers a UI message.
func (b *Builder) Message(key, tr, en string) *Builder {
	b.graph.Messages[key] = text(tr, en)
	return b
}

// Symptom adds an entry symptom to a category, creating the category on first use.
func (b *Builder) Symptom(category, key, tr, en string) *Builder {
	idx, ok := b.categories[category]
	if !ok {
		b.graph.Categories = append(b.graph.Categories, domain.Category{ID: category, Label: text(category, "")})
		idx = len(b.graph.Categories) - 1
		b.categories[category] = idx
	}
	c := &b.graph.Categories[idx]
	c.Items = append(c.Items, domain.CatalogItem{Key: key, Label: text(tr, en)})
	return b
}

// Node creates a question node. If the node already exists, it returns the existing builder.
func (b *Builder) Node(key string) *NodeBuilder {
	if n, ok := b.graph.Nodes[key]; ok {
		for _, nb := range b.nodes {
			if nb.node == n {
				return nb
			}
		}
	}
	nb := &NodeBuilder{node: &domain.Node{Key: key}}
	b.graph.Nodes[key] = nb.node
	b.nodes = append(b.nodes, nb)
	return nb
}

// Result creates a terminal result. If it already exists, it returns the existing builder.
func (b *Builder) Result(id string) *ResultBuilder {
	r, ok := b.graph.Results[id]
	if !ok {
		r = &domain.Result{ID: id}
		b.graph.Results[id] = r
	}
	return &ResultBuilder{result: r}
}

// Fallback configures the generic recommendation of the graph.
func (b *Builder) Fallback() *ResultBuilder {
	if b.graph.Fallback == nil {
		b.graph.Fallback = &domain.Result{ID: domain.FallbackResultID}
	}
	return &ResultBuilder{result: b.graph.Fallback}
}

// Build returns the graph. In strict mode every validation error fails the build.
func (b *Builder) Build() (*domain.Graph, error) {
	if b.strict {
		if err := validator.ValidateGraph(b.graph, validator.AllowTranslationGaps()); err != nil {
			return nil, fmt.Errorf("invalid graph: %w", err)
		}
	}
	return b.graph, nil
}

// Loader builds the graph and wraps it in a memory loader.
func (b *Builder) Loader() (*memory.Loader, error) {
	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	return memory.NewLoader(g), nil
}

func text(tr, en string) domain.Text {
	t := domain.Text{domain.Turkish: tr}
	if en != "" {
		t[domain.English] = en
	}
	return t
}
