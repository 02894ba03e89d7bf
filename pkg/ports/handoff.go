package ports

import (
	"context"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// BookingHandoff delivers a recommendation to the appointment booking flow.
// The booking page reads the values under the domain.Key* session keys.
type BookingHandoff interface {
	Deliver(ctx context.Context, sessionID string, h domain.Handoff) error
}

// HandoffReader is implemented by hand-off stores the booking side can query.
type HandoffReader interface {
	Read(ctx context.Context, sessionID string) (domain.Handoff, error)
}

// IdentityProvider resolves the display name of a logged-in user.
// An empty name (with a nil error) means the greeting falls back to the guest string.
type IdentityProvider interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}
