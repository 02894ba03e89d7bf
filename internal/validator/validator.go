package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// Issue kinds.
const (
	KindDanglingNext       = "dangling_next"
	KindMissingResult      = "missing_result"
	KindUnknownBranch      = "unknown_branch"
	KindEmptyOptions       = "empty_options"
	KindOptionShape        = "option_shape"
	KindDuplicateOption    = "duplicate_option"
	KindUnknownSymptom     = "unknown_symptom"
	KindDeadEnd            = "dead_end"
	KindMissingTranslation = "missing_translation"
	KindUnreachableNode    = "unreachable_node"
	KindUnusedResult       = "unused_result"
	KindCycle              = "cycle"
)

// Issue is a single finding about a graph.
type Issue struct {
	Kind    string `json:"kind"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Kind, i.Key, i.Message)
}

// Report collects the findings of a validation run.
// Errors break an invariant the engine relies on; warnings are content hygiene.
type Report struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// OK reports whether no errors were found.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err returns the errors as a single error, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	lines := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		lines[i] = e.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(lines, "\n- "))
}

func (r *Report) errorf(kind, key, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Kind: kind, Key: key, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) warnf(kind, key, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Kind: kind, Key: key, Message: fmt.Sprintf(format, args...)})
}

type options struct {
	languages       []domain.Language
	translationGaps bool
}

// Option configures a validation run.
type Option func(*options)

// WithLanguages restricts the parity check to the given languages.
func WithLanguages(langs ...domain.Language) Option {
	return func(o *options) { o.languages = langs }
}

// AllowTranslationGaps reports missing translations as warnings instead of errors.
func AllowTranslationGaps() Option {
	return func(o *options) { o.translationGaps = true }
}

// ValidateGraph returns an error describing every broken invariant of g.
func ValidateGraph(g *domain.Graph, opts ...Option) error {
	return Validate(g, opts...).Err()
}

// Validate checks g for:
//   - options whose next key or result id does not resolve,
//   - nodes without options and options that are not exactly one of next/result,
//   - results whose branch id is not in the branch catalog,
//   - catalog symptoms without an entry node or without any path to a result,
//   - missing translations,
//
// and warns about unreachable nodes, unused results and cycles.
func Validate(g *domain.Graph, opts ...Option) *Report {
	o := options{languages: domain.Languages}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Report{}
	checkNodes(g, r)
	checkResults(g, r)
	checkSymptoms(g, r)
	checkParity(g, r, o)
	checkCycles(g, r)
	return r
}

func checkNodes(g *domain.Graph, r *Report) {
	for _, key := range g.NodeKeys() {
		n := g.Nodes[key]
		if len(n.Options) == 0 {
			r.errorf(KindEmptyOptions, key, "node has no options")
			continue
		}
		seen := make(map[string]bool, len(n.Options))
		for _, opt := range n.Options {
			if seen[opt.ID] {
				r.errorf(KindDuplicateOption, key, "option id %q is used more than once", opt.ID)
			}
			seen[opt.ID] = true

			switch {
			case (opt.Next == "") == (opt.Result == ""):
				r.errorf(KindOptionShape, key, "option %q must have exactly one of next or result", opt.ID)
			case opt.Next != "":
				if _, ok := g.Node(opt.Next); !ok {
					r.errorf(KindDanglingNext, key, "option %q points to missing node %q", opt.ID, opt.Next)
				}
			default:
				if _, ok := g.Result(opt.Result); !ok {
					r.errorf(KindMissingResult, key, "option %q points to missing result %q", opt.ID, opt.Result)
				}
			}
		}
	}
}

func checkResults(g *domain.Graph, r *Report) {
	used := make(map[string]bool)
	for _, n := range g.Nodes {
		for _, opt := range n.Options {
			if opt.Result != "" {
				used[opt.Result] = true
			}
		}
	}
	for _, id := range g.ResultIDs() {
		res := g.Results[id]
		if _, ok := g.Branch(res.BranchID); !ok {
			r.errorf(KindUnknownBranch, id, "branch %q is not in the branch catalog", res.BranchID)
		}
		if !used[id] {
			r.warnf(KindUnusedResult, id, "no option leads to this result")
		}
	}
	if fb := g.Fallback; fb != nil {
		if _, ok := g.Branch(fb.BranchID); !ok {
			r.errorf(KindUnknownBranch, domain.FallbackResultID, "branch %q is not in the branch catalog", fb.BranchID)
		}
	}
}

func checkSymptoms(g *domain.Graph, r *Report) {
	terminal := terminalNodes(g)
	reached := make(map[string]bool)

	for _, item := range g.Symptoms() {
		if _, ok := g.Node(item.Key); !ok {
			r.errorf(KindUnknownSymptom, item.Key, "catalog symptom has no entry node")
			continue
		}
		if !terminal[item.Key] {
			r.errorf(KindDeadEnd, item.Key, "no path from this symptom reaches a result")
		}
		walk(g, item.Key, reached)
	}

	for _, key := range g.NodeKeys() {
		if !reached[key] {
			r.warnf(KindUnreachableNode, key, "node is not reachable from any catalog symptom")
		}
	}
}

// terminalNodes returns the nodes from which at least one path reaches a result.
func terminalNodes(g *domain.Graph) map[string]bool {
	ok := make(map[string]bool, len(g.Nodes))
	for changed := true; changed; {
		changed = false
		for key, n := range g.Nodes {
			if ok[key] {
				continue
			}
			for _, opt := range n.Options {
				_, hasResult := g.Result(opt.Result)
				if (opt.Result != "" && hasResult) || (opt.Next != "" && ok[opt.Next]) {
					ok[key] = true
					changed = true
					break
				}
			}
		}
	}
	return ok
}

func walk(g *domain.Graph, key string, seen map[string]bool) {
	stack := []string{key}
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[k] {
			continue
		}
		n, ok := g.Node(k)
		if !ok {
			continue
		}
		seen[k] = true
		for _, opt := range n.Options {
			if opt.Next != "" && !seen[opt.Next] {
				stack = append(stack, opt.Next)
			}
		}
	}
}

func checkParity(g *domain.Graph, r *Report, o options) {
	report := r.errorf
	if o.translationGaps {
		report = r.warnf
	}
	check := func(key, field string, t domain.Text) {
		for _, lang := range o.languages {
			if !t.Has(lang) {
				report(KindMissingTranslation, key, "%s has no %s translation", field, lang)
			}
		}
	}

	for _, key := range g.NodeKeys() {
		n := g.Nodes[key]
		check(key, "question", n.Question)
		for _, opt := range n.Options {
			check(key, fmt.Sprintf("option %q", opt.ID), opt.Text)
		}
	}
	for _, id := range g.ResultIDs() {
		res := g.Results[id]
		check(id, "title", res.Title)
		check(id, "desc", res.Desc)
		if len(res.Department) > 0 {
			check(id, "department", res.Department)
		}
	}
	branchIDs := make([]string, 0, len(g.Branches))
	for id := range g.Branches {
		branchIDs = append(branchIDs, id)
	}
	sort.Strings(branchIDs)
	for _, id := range branchIDs {
		check(id, "branch name", g.Branches[id].Name)
	}
	for _, c := range g.Categories {
		check(c.ID, "category label", c.Label)
		for _, it := range c.Items {
			check(it.Key, "symptom label", it.Label)
		}
	}
}

// checkCycles warns about authored cycles; the engine itself does not guard against them.
func checkCycles(g *domain.Graph, r *Report) {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.Nodes))
	var visit func(key string)
	visit = func(key string) {
		color[key] = grey
		for _, opt := range g.Nodes[key].Options {
			if opt.Next == "" {
				continue
			}
			if _, ok := g.Nodes[opt.Next]; !ok {
				continue
			}
			switch color[opt.Next] {
			case grey:
				r.warnf(KindCycle, key, "option %q loops back to %q", opt.ID, opt.Next)
			case white:
				visit(opt.Next)
			}
		}
		color[key] = black
	}
	for _, key := range g.NodeKeys() {
		if color[key] == white {
			visit(key)
		}
	}
}
