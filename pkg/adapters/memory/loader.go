package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// Loader implements ports.GraphLoader and ports.Watchable over a graph held in memory.
// Replace swaps the graph and notifies watchers, which makes it useful for hot-reload tests.
type Loader struct {
	mu       sync.RWMutex
	graph    *domain.Graph
	watchers []chan struct{}
}

// NewLoader creates a loader serving g.
func NewLoader(g *domain.Graph) *Loader {
	return &Loader{graph: g}
}

// Load returns the current graph.
func (l *Loader) Load(_ context.Context) (*domain.Graph, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.graph == nil {
		return nil, fmt.Errorf("memory loader: no graph")
	}
	return l.graph, nil
}

// Replace swaps the served graph and signals every watcher.
func (l *Loader) Replace(g *domain.Graph) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.graph = g

	for _, ch := range l.watchers {
		select {
		case ch <- struct{}{}:
		default: // a reload is already pending
		}
	}
}

// Watch implements ports.Watchable. The channel is closed when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, w := range l.watchers {
			if w == ch {
				l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
