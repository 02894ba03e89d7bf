package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/i18n"
	"github.com/luminex/symptomcheck/pkg/ports"
)

// Runner handles the interaction loop of one session.
type Runner struct {
	Handler      IOHandler
	Logger       *slog.Logger
	Store        ports.StateStore
	SessionID    string
	StartOptions domain.StartOptions
	Broadcaster  *i18n.Broadcaster

	engine       ports.StatelessEngine
	initialState *domain.State
}

// NewRunner creates a Runner over engine. Without a handler it reads stdin and writes stdout.
func NewRunner(engine ports.StatelessEngine, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run loops until the user books, exits or the input ends, and returns the last state.
// SIGINT and SIGTERM cancel the pending read.
func (r *Runner) Run(ctx context.Context) (*domain.State, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := r.resolveInitialState(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.save(ctx, state); err != nil {
		return nil, err
	}

	langs := make(chan domain.Language, 4)
	if r.Broadcaster != nil {
		unsubscribe := r.Broadcaster.Subscribe(func(l domain.Language) {
			select {
			case langs <- l:
			default:
				r.Logger.Warn("language change dropped", "language", l)
			}
		})
		defer unsubscribe()
	}

	for {
		if state, err = r.applyLanguages(ctx, state, langs); err != nil {
			return state, err
		}

		actions, terminal, err := r.engine.Render(ctx, state)
		if err != nil {
			return state, fmt.Errorf("render error: %w", err)
		}
		if _, err := r.Handler.Output(ctx, actions); err != nil {
			return state, fmt.Errorf("output error: %w", err)
		}

		line, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return state, nil
			}
			if ctx.Err() != nil {
				r.Logger.Debug("runner interrupted", "session_id", state.SessionID)
				return state, ctx.Err()
			}
			return state, fmt.Errorf("input error: %w", err)
		}

		var next *domain.State
		cmd := ParseCommand(line)
		switch cmd.Kind {
		case CmdExit:
			return state, nil
		case CmdRestart:
			next, err = r.engine.Reset(ctx, state)
		case CmdLanguage:
			next, err = r.switchLanguage(ctx, state, cmd.Arg)
		case CmdBook:
			if err = r.book(ctx, state); err == nil {
				return state, nil
			}
		default:
			if terminal {
				if cmd.Arg == "1" || cmd.Arg == "book" {
					if err = r.book(ctx, state); err == nil {
						return state, nil
					}
					break
				}
				err = fmt.Errorf("%w: %q", domain.ErrInvalidOption, cmd.Arg)
				break
			}
			next, err = Dispatch(ctx, r.engine, state, cmd.Arg, InputOptions(actions))
		}

		if err != nil {
			if Recoverable(err) {
				if outErr := r.Handler.SystemOutput(ctx, err.Error()); outErr != nil {
					return state, outErr
				}
				continue
			}
			return state, err
		}
		if next == nil {
			continue
		}
		state = next
		if err := r.save(ctx, state); err != nil {
			return state, fmt.Errorf("critical persistence error: %w", err)
		}
	}
}

// switchLanguage publishes on the broadcaster when there is one; the change is
// then applied at the top of the loop like any other subscriber would see it.
// A resumed session can disagree with the broadcaster, and Publish skips the
// language it already holds, so that case is switched here directly.
func (r *Runner) switchLanguage(ctx context.Context, state *domain.State, arg string) (*domain.State, error) {
	lang, err := domain.ParseLanguage(arg)
	if err != nil {
		return nil, err
	}
	if r.Broadcaster != nil && r.Broadcaster.Current() != lang {
		return nil, r.Broadcaster.Publish(lang)
	}
	if state.Language == lang {
		return nil, nil
	}
	return r.engine.SwitchLanguage(ctx, state, lang)
}

func (r *Runner) applyLanguages(ctx context.Context, state *domain.State, langs <-chan domain.Language) (*domain.State, error) {
	for {
		select {
		case l := <-langs:
			next, err := r.engine.SwitchLanguage(ctx, state, l)
			if err != nil {
				return state, err
			}
			if err := r.save(ctx, next); err != nil {
				return next, err
			}
			state = next
		default:
			return state, nil
		}
	}
}

func (r *Runner) book(ctx context.Context, state *domain.State) error {
	booking, err := r.engine.Book(ctx, state)
	if err != nil {
		return err
	}
	return r.Handler.Booking(ctx, booking)
}

func (r *Runner) resolveInitialState(ctx context.Context) (*domain.State, error) {
	if r.initialState != nil {
		return r.initialState, nil
	}
	opts := r.StartOptions
	if opts.Language == "" && r.Broadcaster != nil {
		opts.Language = r.Broadcaster.Current()
	}
	state, err := r.engine.Start(ctx, r.SessionID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial state: %w", err)
	}
	return state, nil
}

func (r *Runner) save(ctx context.Context, state *domain.State) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	if err := r.Store.Save(ctx, r.SessionID, state); err != nil {
		return err
	}
	r.Logger.Debug("state saved", "session_id", r.SessionID, "phase", state.Phase, "node_key", state.CurrentKey)
	return nil
}
