// Package loam loads a decision graph from a directory of Markdown, YAML or
// JSON documents managed by Loam, one document per node, result, branch or category.
package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/loam"
	"github.com/luminex/symptomcheck/internal/dto"
	"github.com/luminex/symptomcheck/pkg/domain"
)

// Pattern selects the documents that make up a graph.
const Pattern = "**/*.{md,json,yaml,yml}"

// Loader adapts a Loam repository to ports.GraphLoader and ports.Watchable.
// The assembled graph is cached until the repository changes.
type Loader struct {
	Repo *loam.TypedRepository[DocumentMetadata]

	mu    sync.Mutex
	graph *domain.Graph
}

// New creates a loader over repo.
func New(repo *loam.TypedRepository[DocumentMetadata]) *Loader {
	return &Loader{Repo: repo}
}

// Open initializes a read-only Loam repository at dir and wraps it.
func Open(dir string) (*Loader, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(abs,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[DocumentMetadata](repo)), nil
}

// Load implements ports.GraphLoader.
func (l *Loader) Load(ctx context.Context) (*domain.Graph, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.graph != nil {
		return l.graph, nil
	}

	g, err := l.assemble(ctx)
	if err != nil {
		return nil, err
	}
	l.graph = g
	return g, nil
}

// Invalidate drops the cached graph so the next Load reads the repository again.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.graph = nil
	l.mu.Unlock()
}

func (l *Loader) assemble(ctx context.Context) (*domain.Graph, error) {
	ids, err := l.documentIDs(ctx)
	if err != nil {
		return nil, err
	}

	out := dto.GraphDocument{
		Messages: make(map[string]dto.LocalizedText),
		Nodes:    make(map[string]dto.NodeDocument),
		Results:  make(map[string]dto.ResultDocument),
	}
	seen := make(map[string]string)

	for _, id := range ids {
		doc, err := l.Repo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
		}
		meta := doc.Data
		kind := kindOf(doc.ID, meta)
		key := keyOf(doc.ID, meta)

		if kind != KindMessages && kind != KindGraph {
			if prev, ok := seen[kind+"/"+key]; ok {
				return nil, fmt.Errorf("collision detected: %s '%s' is defined in both '%s' and '%s'", kind, key, prev, doc.ID)
			}
			seen[kind+"/"+key] = doc.ID
		}

		switch kind {
		case KindNode:
			out.Nodes[key] = dto.NodeDocument{Question: question(meta.Question, doc.Content), Options: meta.Options}
		case KindResult:
			out.Results[key] = meta.result()
		case KindFallback:
			fb := meta.result()
			out.Fallback = &fb
		case KindBranch:
			out.Branches = append(out.Branches, dto.BranchDocument{ID: key, Name: meta.Name})
		case KindCategory:
			out.Categories = append(out.Categories, dto.CategoryDocument{ID: key, Label: meta.Label, Items: meta.Items})
		case KindMessages:
			for k, v := range meta.Messages {
				out.Messages[k] = v
			}
		case KindGraph:
			out.Version = meta.Version
			for k, v := range meta.Messages {
				out.Messages[k] = v
			}
		default:
			return nil, fmt.Errorf("document %s: unknown kind %q", doc.ID, kind)
		}
	}

	g, err := out.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble graph: %w", err)
	}
	return g, nil
}

// documentIDs lists the repository. List only carries indexed metadata, so
// the body is read per document with Get.
func (l *Loader) documentIDs(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// question uses the document body as the default-language text when the
// frontmatter does not carry one.
func question(q dto.LocalizedText, body string) dto.LocalizedText {
	body = strings.TrimSpace(body)
	lang := string(domain.DefaultLanguage)
	if body == "" || q[lang] != "" {
		return q
	}
	out := dto.LocalizedText{lang: body}
	for k, v := range q {
		if k != lang {
			out[k] = v
		}
	}
	return out
}

func kindOf(docID string, meta DocumentMetadata) string {
	if meta.Kind != "" {
		return strings.ToLower(meta.Kind)
	}
	dir := strings.SplitN(filepath.ToSlash(docID), "/", 2)
	if len(dir) == 2 {
		if k, ok := dirKinds[dir[0]]; ok {
			return k
		}
	}
	if trimExtension(path.Base(filepath.ToSlash(docID))) == "graph" {
		return KindGraph
	}
	return KindNode
}

func keyOf(docID string, meta DocumentMetadata) string {
	if meta.ID != "" {
		return trimExtension(meta.ID)
	}
	return trimExtension(path.Base(filepath.ToSlash(docID)))
}

func trimExtension(id string) string {
	return strings.TrimSuffix(id, path.Ext(id))
}

// Watch implements ports.Watchable. Every change invalidates the cached graph
// before it is signalled.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, Pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				l.Invalidate()
				select {
				case ch <- struct{}{}:
				default: // a reload is already pending
				}
			}
		}
	}()
	return ch, nil
}
