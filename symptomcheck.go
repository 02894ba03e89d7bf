package symptomcheck

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/luminex/symptomcheck/internal/runtime"
	"github.com/luminex/symptomcheck/internal/validator"
	"github.com/luminex/symptomcheck/pkg/adapters/file"
	loamAdapter "github.com/luminex/symptomcheck/pkg/adapters/loam"
	"github.com/luminex/symptomcheck/pkg/catalog"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/ports"
)

// Engine is the high-level entry point of the library.
// It wraps the internal runtime and the graph source it reads from.
type Engine struct {
	runtime     *runtime.Engine
	loader      ports.GraphLoader
	graphFile   string
	graphDir    string
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
	Name        string
}

var _ ports.StatelessEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom GraphLoader.
func WithLoader(l ports.GraphLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithGraphFile reads the graph from a single YAML or JSON document.
func WithGraphFile(path string) Option {
	return func(e *Engine) {
		e.graphFile = path
	}
}

// WithGraphDir reads the graph from a directory holding one document per node or result.
func WithGraphDir(path string) Option {
	return func(e *Engine) {
		e.graphDir = path
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls add to,
// rather than replace, the hooks already registered.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithBookingHandoff sets where recommendations are delivered on Book.
func WithBookingHandoff(h ports.BookingHandoff) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithBookingHandoff(h))
	}
}

// WithIdentityProvider resolves the display name used in the entry greeting.
func WithIdentityProvider(p ports.IdentityProvider) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithIdentityProvider(p))
	}
}

// WithAppointmentURL sets the booking page the hand-off redirects to.
func WithAppointmentURL(u string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithAppointmentURL(u))
	}
}

// WithStrictNodes makes a missing node key an error (ErrNodeNotFound)
// instead of the generic fallback result.
func WithStrictNodes() Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithUnknownNodePolicy(runtime.PolicyStrict))
	}
}

// New initializes an Engine. Without a graph option it serves the embedded catalog.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	switch {
	case eng.loader != nil:
	case eng.graphDir != "":
		abs, err := filepath.Abs(eng.graphDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		l, err := loamAdapter.Open(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to open graph directory: %w", err)
		}
		eng.loader = l
		eng.Name = filepath.Base(abs)
	case eng.graphFile != "":
		eng.loader = file.NewLoader(eng.graphFile)
		eng.Name = filepath.Base(eng.graphFile)
	default:
		eng.loader = catalog.NewLoader()
		eng.Name = "catalog"
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("graph", eng.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)
	eng.runtime = runtime.NewEngine(eng.loader, runtimeOpts...)

	return eng, nil
}

// Start creates the state of a new session.
func (e *Engine) Start(ctx context.Context, sessionID string, opts domain.StartOptions) (*domain.State, error) {
	return e.runtime.Start(ctx, sessionID, opts)
}

// Render generates the actions for the current state without advancing it.
// The boolean reports whether a result has been reached.
func (e *Engine) Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error) {
	return e.runtime.Render(ctx, state)
}

func (e *Engine) SelectSymptom(ctx context.Context, state *domain.State, key string) (*domain.State, error) {
	return e.runtime.SelectSymptom(ctx, state, key)
}

func (e *Engine) SelectGender(ctx context.Context, state *domain.State, gender domain.Gender) (*domain.State, error) {
	return e.runtime.SelectGender(ctx, state, gender)
}

func (e *Engine) SelectAgeRange(ctx context.Context, state *domain.State, age domain.AgeRange) (*domain.State, error) {
	return e.runtime.SelectAgeRange(ctx, state, age)
}

// BeginAnalysis leaves the demographics gate once both selections are made.
func (e *Engine) BeginAnalysis(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.BeginAnalysis(ctx, state)
}

// Answer activates an option of the current question by id, 1-based
// position or label.
func (e *Engine) Answer(ctx context.Context, state *domain.State, input string) (*domain.State, error) {
	return e.runtime.Answer(ctx, state, input)
}

// SwitchLanguage changes the display language. A check in progress restarts
// at the first question of its symptom.
func (e *Engine) SwitchLanguage(ctx context.Context, state *domain.State, lang domain.Language) (*domain.State, error) {
	return e.runtime.SwitchLanguage(ctx, state, lang)
}

// Book hands the result off to the booking flow.
func (e *Engine) Book(ctx context.Context, state *domain.State) (*domain.Booking, error) {
	return e.runtime.Book(ctx, state)
}

func (e *Engine) Reset(ctx context.Context, state *domain.State) (*domain.State, error) {
	return e.runtime.Reset(ctx, state)
}

// Inspect returns the full graph for visualization or introspection tools.
func (e *Engine) Inspect() (*domain.Graph, error) {
	return e.runtime.Inspect()
}

// Validate checks the loaded graph for dangling references, unreachable
// results and translation gaps.
func (e *Engine) Validate() error {
	g, err := e.runtime.Inspect()
	if err != nil {
		return err
	}
	return validator.ValidateGraph(g)
}

// Watch returns a channel that signals when the underlying graph changes.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Loader returns the GraphLoader used by the engine.
func (e *Engine) Loader() ports.GraphLoader {
	return e.loader
}
