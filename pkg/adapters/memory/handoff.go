package memory

import (
	"context"
	"sync"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// Handoff is a session-scoped key/value store implementing ports.BookingHandoff.
// It mirrors the browser session storage the booking page reads from.
type Handoff struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewHandoff creates an empty hand-off store.
func NewHandoff() *Handoff {
	return &Handoff{data: make(map[string]map[string]string)}
}

// Deliver writes the four booking values for the session.
func (h *Handoff) Deliver(_ context.Context, sessionID string, v domain.Handoff) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data[sessionID] = v.Values()
	return nil
}

// Read returns the hand-off of the session.
func (h *Handoff) Read(_ context.Context, sessionID string) (domain.Handoff, error) {
	values, ok := h.Values(sessionID)
	if !ok {
		return domain.Handoff{}, domain.ErrSessionNotFound
	}
	return domain.HandoffFromValues(values), nil
}

// Values returns a copy of the raw session values.
func (h *Handoff) Values(sessionID string) (map[string]string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.data[sessionID]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out, true
}

// Identity is a static ports.IdentityProvider.
type Identity map[string]string

// DisplayName returns the configured name or "" for unknown users.
func (i Identity) DisplayName(_ context.Context, userID string) (string, error) {
	return i[userID], nil
}
