package cli

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/luminex/symptomcheck"
	"github.com/luminex/symptomcheck/internal/config"
	"github.com/luminex/symptomcheck/internal/logging"
	"github.com/luminex/symptomcheck/internal/presentation/tui"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/i18n"
	"github.com/luminex/symptomcheck/pkg/observability"
	"github.com/luminex/symptomcheck/pkg/runner"
	"github.com/luminex/symptomcheck/pkg/session"
)

// RunOptions contains the configuration of the run command.
type RunOptions struct {
	Config    *config.Config
	GraphPath string
	SessionID string
	Symptom   string
	UserID    string
	JSON      bool
	Fresh     bool
	Watch     bool
	Debug     bool
	WordWrap  int

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes an interactive session in the terminal, or a JSON-lines
// session when opts.JSON is set.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Watch && opts.JSON {
		return errors.New("--watch and --json cannot be used together")
	}

	logger := logging.NewNop()
	if opts.Debug {
		var err error
		if logger, err = NewLogger(opts.Config.Log, true, opts.Stderr); err != nil {
			return err
		}
	}

	backend, err := OpenBackend(ctx, opts.Config.Store, logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	sessions := backend.Sessions(logger)

	var hooks domain.LifecycleHooks
	if opts.Debug {
		hooks = observability.AuditHooks(logger)
	}
	eng, err := NewEngine(opts.Config, EngineOptions{
		Logger:    logger,
		Handoff:   backend.Handoff,
		Hooks:     hooks,
		GraphPath: opts.GraphPath,
	})
	if err != nil {
		return err
	}

	if opts.Watch && opts.SessionID == "" {
		// Scoped by graph so two projects do not share a watch session.
		hash := md5.Sum([]byte(opts.GraphPath + opts.Config.Graph.Path))
		opts.SessionID = fmt.Sprintf("watch-%x", hash[:4])
	}
	if opts.Fresh && opts.SessionID != "" {
		if err := sessions.Delete(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
	}

	handler := newHandler(opts)
	lang, _ := domain.ParseLanguage(opts.Config.Language)
	broadcaster := i18n.NewBroadcaster(lang)

	if !opts.JSON {
		if f, ok := opts.Stdout.(*os.File); ok && runner.IsTerminal(f) {
			tui.PrintBanner(opts.Stdout, symptomcheck.Version)
		}
	}

	s := &sessionRun{
		opts:        opts,
		engine:      eng,
		sessions:    sessions,
		handler:     handler,
		broadcaster: broadcaster,
		logger:      logger,
	}
	if opts.Watch {
		return s.watch(ctx)
	}
	_, err = s.run(ctx)
	return handleExecutionError(err)
}

func newHandler(opts RunOptions) runner.IOHandler {
	if opts.JSON {
		return runner.NewJSONHandler(opts.Stdin, opts.Stdout)
	}
	var textOpts []runner.TextHandlerOption
	if f, ok := opts.Stdout.(*os.File); ok && runner.IsTerminal(f) {
		if render, err := tui.NewRenderer(opts.WordWrap); err == nil {
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(render))
		}
	}
	return runner.NewTextHandler(opts.Stdin, opts.Stdout, textOpts...)
}

// sessionRun runs one runner over a shared handler; watch mode runs it repeatedly.
type sessionRun struct {
	opts        RunOptions
	engine      *symptomcheck.Engine
	sessions    *session.Manager
	handler     runner.IOHandler
	broadcaster *i18n.Broadcaster
	logger      *slog.Logger
}

func (s *sessionRun) run(ctx context.Context) (*domain.State, error) {
	rOpts := []runner.Option{
		runner.WithLogger(s.logger),
		runner.WithInputHandler(s.handler),
		runner.WithBroadcaster(s.broadcaster),
		runner.WithStartOptions(domain.StartOptions{
			Symptom:  s.opts.Symptom,
			Language: s.broadcaster.Current(),
			UserID:   s.opts.UserID,
		}),
	}

	if id := s.opts.SessionID; id != "" {
		rOpts = append(rOpts, runner.WithSessionID(id), runner.WithStore(s.sessions.Store()))
		state, err := s.sessions.Load(ctx, id)
		switch {
		case err == nil:
			s.logger.Info("Session Resumed", "session_id", id, "phase", state.Phase)
			if !s.opts.JSON {
				s.systemMessage("Resuming session '%s'.", id)
			}
			// No runner is subscribed yet, so this only moves the current language.
			if err := s.broadcaster.Publish(state.Language); err != nil {
				return nil, err
			}
			rOpts = append(rOpts, runner.WithInitialState(state))
		case errors.Is(err, domain.ErrSessionNotFound):
			s.logger.Info("Session Created", "session_id", id)
		default:
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
	}

	return runner.NewRunner(s.engine, rOpts...).Run(ctx)
}

// watch reruns the session whenever the graph changes, resuming from the
// state saved before the reload.
func (s *sessionRun) watch(ctx context.Context) error {
	changes, err := s.engine.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch mode needs a file or directory graph: %w", err)
	}
	s.systemMessage("Watching '%s' session.", s.opts.SessionID)

	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			_, err := s.run(runCtx)
			done <- err
		}()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		case _, ok := <-changes:
			cancel()
			<-done
			if !ok {
				return nil
			}
			s.logger.Info("Change detected, reloading graph")
			s.systemMessage("Graph changed, reloading.")
			time.Sleep(100 * time.Millisecond)
		case err := <-done:
			cancel()
			if err := handleExecutionError(err); err != nil {
				s.logger.Error("Runtime error", "err", err)
			}
			s.systemMessage("Waiting for changes...")
			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-changes:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (s *sessionRun) systemMessage(format string, args ...any) {
	fmt.Fprintf(s.opts.Stdout, ">>> %s\n", fmt.Sprintf(format, args...))
}

// handleExecutionError treats interruption as a clean exit.
func handleExecutionError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
