package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/luminex/symptomcheck/pkg/catalog"
	"github.com/luminex/symptomcheck/pkg/domain"
)

// Loader reads a single YAML or JSON graph document.
// The parsed graph is cached until the file changes.
type Loader struct {
	Path string

	mu    sync.Mutex
	graph *domain.Graph
	mtime int64
}

// NewLoader creates a loader for the graph document at path.
func NewLoader(path string) *Loader {
	return &Loader{Path: path}
}

// Load implements ports.GraphLoader. The file is parsed again when its
// modification time changes.
func (l *Loader) Load(_ context.Context) (*domain.Graph, error) {
	info, err := os.Stat(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat graph file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.graph != nil && info.ModTime().UnixNano() == l.mtime {
		return l.graph, nil
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	g, err := catalog.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	l.graph = g
	l.mtime = info.ModTime().UnixNano()
	return g, nil
}

// Watch implements ports.Watchable. The parent directory is watched so
// editors that replace the file on save are still observed.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	abs, err := filepath.Abs(l.Path)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.Path, err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				l.mu.Lock()
				l.graph = nil
				l.mu.Unlock()
				select {
				case ch <- struct{}{}:
				default: // a reload is already pending
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return ch, nil
}
