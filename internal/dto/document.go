package dto

import (
	"fmt"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// LocalizedText is the on-disk form of domain.Text: language code -> text.
type LocalizedText map[string]string

// Text converts the table, dropping empty translations.
func (t LocalizedText) Text() domain.Text {
	if len(t) == 0 {
		return nil
	}
	out := make(domain.Text, len(t))
	for lang, s := range t {
		if s != "" {
			out[domain.Language(lang)] = s
		}
	}
	return out
}

// GraphDocument represents a complete graph file.
// It uses "mapstructure" tags to match the YAML keys after generic decoding.
type GraphDocument struct {
	Version    string                    `json:"version" mapstructure:"version"`
	Languages  []string                  `json:"languages" mapstructure:"languages"`
	Branches   []BranchDocument          `json:"branches" mapstructure:"branches"`
	Messages   map[string]LocalizedText  `json:"messages" mapstructure:"messages"`
	Categories []CategoryDocument        `json:"categories" mapstructure:"categories"`
	Nodes      map[string]NodeDocument   `json:"nodes" mapstructure:"nodes"`
	Results    map[string]ResultDocument `json:"results" mapstructure:"results"`
	Fallback   *ResultDocument           `json:"fallback" mapstructure:"fallback"`
}

type BranchDocument struct {
	ID   string        `json:"id" mapstructure:"id"`
	Name LocalizedText `json:"name" mapstructure:"name"`
}

type CategoryDocument struct {
	ID    string         `json:"id" mapstructure:"id"`
	Label LocalizedText  `json:"label" mapstructure:"label"`
	Items []ItemDocument `json:"items" mapstructure:"items"`
}

type ItemDocument struct {
	Key   string        `json:"key" mapstructure:"key"`
	Label LocalizedText `json:"label" mapstructure:"label"`
}

type NodeDocument struct {
	Question LocalizedText    `json:"question" mapstructure:"question"`
	Options  []OptionDocument `json:"options" mapstructure:"options"`
}

type OptionDocument struct {
	ID     string        `json:"id" mapstructure:"id"`
	Text   LocalizedText `json:"text" mapstructure:"text"`
	Next   string        `json:"next,omitempty" mapstructure:"next"`
	Result string        `json:"result,omitempty" mapstructure:"result"`
}

type ResultDocument struct {
	Title      LocalizedText `json:"title" mapstructure:"title"`
	Desc       LocalizedText `json:"desc" mapstructure:"desc"`
	Department LocalizedText `json:"department,omitempty" mapstructure:"department"`
	Branch     string        `json:"branch" mapstructure:"branch"`
	Urgent     bool          `json:"urgent,omitempty" mapstructure:"urgent"`
}

// Node converts the document into a domain node keyed by key.
// Options without an id get their 1-based position as id.
func (n NodeDocument) Node(key string) (*domain.Node, error) {
	node := &domain.Node{
		Key:      key,
		Question: n.Question.Text(),
		Options:  make([]domain.Option, 0, len(n.Options)),
	}
	for i, o := range n.Options {
		id := o.ID
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		if (o.Next == "") == (o.Result == "") {
			return nil, fmt.Errorf("node %s option %s: exactly one of next or result is required", key, id)
		}
		node.Options = append(node.Options, domain.Option{
			ID:     id,
			Text:   o.Text.Text(),
			Next:   o.Next,
			Result: o.Result,
		})
	}
	return node, nil
}

// Result converts the document into a domain result with the given id.
func (r ResultDocument) Result(id string) *domain.Result {
	return &domain.Result{
		ID:         id,
		Title:      r.Title.Text(),
		Desc:       r.Desc.Text(),
		Department: r.Department.Text(),
		BranchID:   r.Branch,
		Urgent:     r.Urgent,
	}
}

// Graph converts the document into an immutable domain graph.
func (d GraphDocument) Graph() (*domain.Graph, error) {
	g := domain.NewGraph()
	g.Version = d.Version

	for _, b := range d.Branches {
		g.Branches[b.ID] = &domain.Branch{ID: b.ID, Name: b.Name.Text()}
	}
	for key, m := range d.Messages {
		g.Messages[key] = m.Text()
	}
	for _, c := range d.Categories {
		cat := domain.Category{ID: c.ID, Label: c.Label.Text()}
		for _, it := range c.Items {
			cat.Items = append(cat.Items, domain.CatalogItem{Key: it.Key, Label: it.Label.Text()})
		}
		g.Categories = append(g.Categories, cat)
	}
	for key, n := range d.Nodes {
		node, err := n.Node(key)
		if err != nil {
			return nil, err
		}
		g.Nodes[key] = node
	}
	for id, r := range d.Results {
		g.Results[id] = r.Result(id)
	}
	if d.Fallback != nil {
		g.Fallback = d.Fallback.Result(domain.FallbackResultID)
	}
	return g, nil
}
