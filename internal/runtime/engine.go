package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/ports"
)

// UnknownNodePolicy decides what happens when a node key does not resolve.
type UnknownNodePolicy string

const (
	// PolicyFallbackToGeneric presents the generic recommendation instead of failing.
	// The user is never left without a recommendation.
	PolicyFallbackToGeneric UnknownNodePolicy = "fallback-to-generic"

	// PolicyStrict surfaces domain.ErrNodeNotFound. Intended for tooling and tests.
	PolicyStrict UnknownNodePolicy = "strict"
)

// ParseUnknownNodePolicy validates a policy name. An empty name yields the default.
func ParseUnknownNodePolicy(s string) (UnknownNodePolicy, error) {
	switch UnknownNodePolicy(s) {
	case "", PolicyFallbackToGeneric:
		return PolicyFallbackToGeneric, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown node policy %q", s)
}

// DefaultAppointmentURL is the booking page the hand-off redirects to.
const DefaultAppointmentURL = "/randevu-al.html"

var _ ports.StatelessEngine = (*Engine)(nil)

// Engine is the symptom checker core.
// It is stateless: every operation takes a state and returns a new one.
type Engine struct {
	loader         ports.GraphLoader
	handoff        ports.BookingHandoff
	identity       ports.IdentityProvider
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	policy         UnknownNodePolicy
	appointmentURL string
	now            func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithUnknownNodePolicy sets the policy for unresolvable node keys.
func WithUnknownNodePolicy(p UnknownNodePolicy) EngineOption {
	return func(e *Engine) {
		if p != "" {
			e.policy = p
		}
	}
}

// WithBookingHandoff sets the port the booking hand-off is delivered to.
func WithBookingHandoff(h ports.BookingHandoff) EngineOption {
	return func(e *Engine) {
		e.handoff = h
	}
}

// WithIdentityProvider sets the lookup used for the entry greeting.
func WithIdentityProvider(p ports.IdentityProvider) EngineOption {
	return func(e *Engine) {
		e.identity = p
	}
}

// WithAppointmentURL sets the booking page URL.
func WithAppointmentURL(u string) EngineOption {
	return func(e *Engine) {
		if u != "" {
			e.appointmentURL = u
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine reading its graph from loader.
func NewEngine(loader ports.GraphLoader, opts ...EngineOption) *Engine {
	e := &Engine{
		loader:         loader,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		policy:         PolicyFallbackToGeneric,
		appointmentURL: DefaultAppointmentURL,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the active unknown-node policy.
func (e *Engine) Policy() UnknownNodePolicy {
	return e.policy
}

// Inspect returns the current graph for introspection.
func (e *Engine) Inspect() (*domain.Graph, error) {
	return e.graph(context.Background())
}

func (e *Engine) graph(ctx context.Context) (*domain.Graph, error) {
	g, err := e.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	return g, nil
}

// next returns a copy of state stamped with the current time.
func (e *Engine) next(state *domain.State) *domain.State {
	n := state.Snapshot()
	n.UpdatedAt = e.now()
	return n
}

func (e *Engine) base(t domain.EventType, state *domain.State) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, SessionID: state.SessionID}
}

func (e *Engine) emitNodeEnter(ctx context.Context, state *domain.State) {
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
			EventBase: e.base(domain.EventNodeEnter, state),
			NodeKey:   state.CurrentKey,
			Symptom:   state.Demographics.Symptom,
			Depth:     len(state.History),
		})
	}
}

func (e *Engine) emitResult(ctx context.Context, state *domain.State, r *domain.Result) {
	if e.hooks.OnResult != nil {
		e.hooks.OnResult(ctx, &domain.ResultEvent{
			EventBase: e.base(domain.EventResult, state),
			ResultID:  r.ID,
			BranchID:  r.BranchID,
			Urgent:    r.Urgent,
			Generic:   state.Fallback,
			Symptom:   state.Demographics.Symptom,
		})
	}
}

func (e *Engine) emitFallback(ctx context.Context, state *domain.State, missing string) {
	if e.hooks.OnFallback != nil {
		e.hooks.OnFallback(ctx, &domain.FallbackEvent{
			EventBase:  e.base(domain.EventFallback, state),
			MissingKey: missing,
			Language:   state.Language,
		})
	}
}
