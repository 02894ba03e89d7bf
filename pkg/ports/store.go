package ports

import (
	"context"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// StateStore keeps symptom check sessions between requests.
// Implementations live in pkg/adapters (memory, file, redis, postgres) and
// can be wrapped by pkg/persistence/middleware.
type StateStore interface {
	// Save replaces the stored state of sessionID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load returns domain.ErrSessionNotFound for unknown or expired sessions.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
