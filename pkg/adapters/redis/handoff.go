package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/luminex/symptomcheck/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Handoff stores booking hand-offs as one hash per session, keyed by the
// same field names the booking page reads.
type Handoff struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewHandoff creates a hand-off store on an existing client.
func NewHandoff(client backend.UniversalClient, opts ...Option) *Handoff {
	s := apply(opts)
	return &Handoff{client: client, prefix: s.prefix, ttl: s.ttl}
}

func (h *Handoff) key(sessionID string) string {
	return h.prefix + "handoff:" + sessionID
}

// Deliver implements ports.BookingHandoff. A later delivery replaces the earlier one.
func (h *Handoff) Deliver(ctx context.Context, sessionID string, v domain.Handoff) error {
	key := h.key(sessionID)
	values := make(map[string]any, 4)
	for k, val := range v.Values() {
		values[k] = val
	}

	pipe := h.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, values)
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to deliver hand-off for %s: %w", sessionID, err)
	}
	return nil
}

// Read implements ports.HandoffReader.
func (h *Handoff) Read(ctx context.Context, sessionID string) (domain.Handoff, error) {
	values, err := h.client.HGetAll(ctx, h.key(sessionID)).Result()
	if err != nil {
		return domain.Handoff{}, fmt.Errorf("failed to read hand-off for %s: %w", sessionID, err)
	}
	if len(values) == 0 {
		return domain.Handoff{}, domain.ErrSessionNotFound
	}
	return domain.HandoffFromValues(values), nil
}
