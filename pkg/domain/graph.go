package domain

import "sort"

// Node is a non-terminal question in the decision graph.
type Node struct {
	Key      string   `json:"key" yaml:"key"`
	Question Text     `json:"question" yaml:"question"`
	Options  []Option `json:"options" yaml:"options"`
}

// Option is one answer of a Node. Exactly one of Next or Result is set.
type Option struct {
	// ID is stable within its node and is what hosts send back as the answer.
	ID   string `json:"id" yaml:"id"`
	Text Text   `json:"text" yaml:"text"`

	// Next is the key of the node to continue with.
	Next string `json:"next,omitempty" yaml:"next,omitempty"`

	// Result is the id of the terminal Result reached through this option.
	Result string `json:"result,omitempty" yaml:"result,omitempty"`
}

// Terminal reports whether the option ends traversal.
func (o Option) Terminal() bool {
	return o.Result != ""
}

// Result is a terminal recommendation.
type Result struct {
	ID    string `json:"id" yaml:"id"`
	Title Text   `json:"title" yaml:"title"`
	Desc  Text   `json:"desc" yaml:"desc"`

	// Department overrides the branch display name, e.g. "Acil Servis (112)".
	Department Text `json:"department,omitempty" yaml:"department,omitempty"`

	BranchID string `json:"branch_id" yaml:"branch_id"`
	Urgent   bool   `json:"urgent,omitempty" yaml:"urgent,omitempty"`
}

// Branch is an entry of the hospital branch catalog used by the booking flow.
type Branch struct {
	ID   string `json:"id" yaml:"id"`
	Name Text   `json:"name" yaml:"name"`
}

// Category groups entry symptoms on the entry selector.
type Category struct {
	ID    string        `json:"id" yaml:"id"`
	Label Text          `json:"label" yaml:"label"`
	Items []CatalogItem `json:"items" yaml:"items"`
}

// CatalogItem is a selectable symptom. Key is the entry node of the symptom.
type CatalogItem struct {
	Key   string `json:"key" yaml:"key"`
	Label Text   `json:"label" yaml:"label"`
}

// Graph is the immutable decision graph with its localization table.
// It is loaded once and shared read-only across sessions.
type Graph struct {
	Version    string             `json:"version,omitempty" yaml:"version,omitempty"`
	Nodes      map[string]*Node   `json:"nodes" yaml:"nodes"`
	Results    map[string]*Result `json:"results" yaml:"results"`
	Branches   map[string]*Branch `json:"branches" yaml:"branches"`
	Categories []Category         `json:"categories" yaml:"categories"`
	Messages   map[string]Text    `json:"messages,omitempty" yaml:"messages,omitempty"`

	// Fallback is presented when a node key cannot be resolved.
	Fallback *Result `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// NewGraph returns an empty graph ready to be populated.
func NewGraph() *Graph {
	return &Graph{
		Nodes:    make(map[string]*Node),
		Results:  make(map[string]*Result),
		Branches: make(map[string]*Branch),
		Messages: make(map[string]Text),
	}
}

// Node returns the node for key.
func (g *Graph) Node(key string) (*Node, bool) {
	n, ok := g.Nodes[key]
	return n, ok
}

// Result returns the result for id.
func (g *Graph) Result(id string) (*Result, bool) {
	r, ok := g.Results[id]
	return r, ok
}

// Branch returns the branch for id.
func (g *Graph) Branch(id string) (*Branch, bool) {
	b, ok := g.Branches[id]
	return b, ok
}

// Symptom returns the catalog item whose key matches.
func (g *Graph) Symptom(key string) (CatalogItem, bool) {
	for _, c := range g.Categories {
		for _, it := range c.Items {
			if it.Key == key {
				return it, true
			}
		}
	}
	return CatalogItem{}, false
}

// Symptoms returns every catalog item in display order.
func (g *Graph) Symptoms() []CatalogItem {
	var out []CatalogItem
	for _, c := range g.Categories {
		out = append(out, c.Items...)
	}
	return out
}

// Message returns a UI message in lang, or key itself when undefined.
func (g *Graph) Message(key string, lang Language) string {
	if t, ok := g.Messages[key]; ok {
		if s := t.Get(lang); s != "" {
			return s
		}
	}
	return key
}

// DepartmentName resolves the department shown for r: the result override,
// then the branch display name, then the branch id.
func (g *Graph) DepartmentName(r *Result, lang Language) string {
	if s := r.Department.Get(lang); s != "" {
		return s
	}
	return g.BranchName(r.BranchID, lang)
}

// BranchName returns the display name of a branch, or the id when unknown.
func (g *Graph) BranchName(id string, lang Language) string {
	if b, ok := g.Branches[id]; ok {
		if s := b.Name.Get(lang); s != "" {
			return s
		}
	}
	return id
}

// NodeKeys returns all node keys sorted.
func (g *Graph) NodeKeys() []string {
	keys := make([]string, 0, len(g.Nodes))
	for k := range g.Nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResultIDs returns all result ids sorted.
func (g *Graph) ResultIDs() []string {
	ids := make([]string, 0, len(g.Results))
	for k := range g.Results {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

// FallbackResultID identifies the synthesized generic recommendation.
const FallbackResultID = "fallback"

// GenericFallback is the built-in generic recommendation used when a graph
// does not declare its own fallback.
func GenericFallback() *Result {
	return &Result{
		ID: FallbackResultID,
		Title: Text{
			Turkish: "Uzman Değerlendirmesi Önerilir",
			English: "Specialist Evaluation Recommended",
		},
		Desc: Text{
			Turkish: "Şikayetleriniz için kesin bir yönlendirme yapılamadı. Bir iç hastalıkları uzmanının sizi değerlendirmesi önerilir.",
			English: "We could not route your symptoms precisely. An internal medicine specialist should evaluate you.",
		},
		Department: Text{
			Turkish: "Dahiliye (İç Hastalıkları)",
			English: "Internal Medicine",
		},
		BranchID: "dahiliye",
	}
}

// FallbackResult returns the graph fallback or the built-in one.
func (g *Graph) FallbackResult() *Result {
	if g.Fallback != nil {
		return g.Fallback
	}
	return GenericFallback()
}
