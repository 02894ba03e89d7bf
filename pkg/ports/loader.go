package ports

import (
	"context"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// GraphLoader defines how the engine retrieves the decision graph.
// This allows the source (embedded catalog, file, Loam, memory) to be decoupled.
type GraphLoader interface {
	// Load returns the complete graph. Implementations may cache the result.
	Load(ctx context.Context) (*domain.Graph, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying graph changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
