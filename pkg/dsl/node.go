package dsl

import "github.com/luminex/symptomcheck/pkg/domain"

// NodeBuilder provides a fluent API for configuring a question node.
type NodeBuilder struct {
	node *domain.Node
}

// Ask sets the question text.
func (n *NodeBuilder) Ask(tr, en string) *NodeBuilder {
	n.node.Question = text(tr, en)
	return n
}

// Next appends an option that continues with another node.
func (n *NodeBuilder) Next(id, tr, en, next string) *NodeBuilder {
	n.node.Options = append(n.node.Options, domain.Option{ID: id, Text: text(tr, en), Next: next})
	return n
}

// Result appends an option that ends traversal with the given result.
func (n *NodeBuilder) Result(id, tr, en, result string) *NodeBuilder {
	n.node.Options = append(n.node.Options, domain.Option{ID: id, Text: text(tr, en), Result: result})
	return n
}

// ResultBuilder provides a fluent API for configuring a result.
type ResultBuilder struct {
	result *domain.Result
}

// Title sets the result title.
func (r *ResultBuilder) Title(tr, en string) *ResultBuilder {
	r.result.Title = text(tr, en)
	return r
}

// Desc sets the explanatory text.
func (r *ResultBuilder) Desc(tr, en string) *ResultBuilder {
	r.result.Desc = text(tr, en)
	return r
}

// Department overrides the branch display name.
func (r *ResultBuilder) Department(tr, en string) *ResultBuilder {
	r.result.Department = text(tr, en)
	return r
}

// Branch sets the booking branch id.
func (r *ResultBuilder) Branch(id string) *ResultBuilder {
	r.result.BranchID = id
	return r
}

// Urgent flags the result for emergency presentation.
func (r *ResultBuilder) Urgent() *ResultBuilder {
	r.result.Urgent = true
	return r
}
