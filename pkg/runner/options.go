package runner

import (
	"log/slog"

	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/i18n"
	"github.com/luminex/symptomcheck/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the StateStore for persistence.
func WithStore(store ports.StateStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSessionID sets the session ID used for persistence and hand-off.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithStartOptions configures how a new session starts (symptom, language, user).
func WithStartOptions(opts domain.StartOptions) Option {
	return func(r *Runner) {
		r.StartOptions = opts
	}
}

// WithBroadcaster routes language changes through b.
func WithBroadcaster(b *i18n.Broadcaster) Option {
	return func(r *Runner) {
		r.Broadcaster = b
	}
}

// WithInitialState resumes from state instead of starting a new session.
func WithInitialState(state *domain.State) Option {
	return func(r *Runner) {
		r.initialState = state
	}
}
