// Package cli holds the wiring shared by the luminex commands: it turns a
// config.Config into a logger, a session backend and an engine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/luminex/symptomcheck"
	"github.com/luminex/symptomcheck/internal/config"
	"github.com/luminex/symptomcheck/internal/logging"
	"github.com/luminex/symptomcheck/internal/runtime"
	"github.com/luminex/symptomcheck/pkg/adapters/file"
	"github.com/luminex/symptomcheck/pkg/adapters/memory"
	"github.com/luminex/symptomcheck/pkg/adapters/postgres"
	"github.com/luminex/symptomcheck/pkg/adapters/redis"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/persistence/middleware"
	"github.com/luminex/symptomcheck/pkg/ports"
	"github.com/luminex/symptomcheck/pkg/session"
)

// NewLogger builds the application logger. Outside debug mode the level
// comes from the config; debug forces LevelDebug.
func NewLogger(cfg config.LogConfig, debug bool, out io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(logging.Options{Level: level, Format: format, Output: out}), nil
}

// Backend is where sessions and hand-offs live.
type Backend struct {
	Store   ports.StateStore
	Locker  ports.DistributedLocker
	Handoff ports.BookingHandoff
	Driver  string

	closers []func() error
}

// Close releases the connections opened for the backend.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// OpenBackend connects the configured store driver and wraps it with the
// encryption and redaction middleware when enabled.
func OpenBackend(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Backend, error) {
	b := &Backend{Driver: cfg.Driver}

	switch cfg.Driver {
	case config.DriverMemory, "":
		b.Store = memory.NewStore(memory.WithTTL(cfg.TTL))
		b.Handoff = memory.NewHandoff()
	case config.DriverFile:
		b.Store = file.New(cfg.Path)
		b.Handoff = memory.NewHandoff()
	case config.DriverRedis:
		client := redis.Dial(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		store := redis.NewFromClient(client, redis.WithTTL(cfg.TTL))
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.RedisAddr, err)
		}
		b.Store = store
		b.Locker = redis.NewLocker(client, redis.DefaultPrefix)
		b.Handoff = redis.NewHandoff(client, redis.WithTTL(cfg.TTL))
		b.closers = append(b.closers, client.Close)
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		b.Store = postgres.NewStore(db)
		b.Handoff = postgres.NewHandoff(db)
		b.closers = append(b.closers, db.Close)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	// Redaction is outermost so the sealed payload never holds the fields.
	var mws []middleware.Middleware
	if cfg.Redact {
		mws = append(mws, middleware.NewRedactionMiddleware(
			middleware.FieldUserName, middleware.FieldGender, middleware.FieldAgeRange))
	}
	if cfg.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		mws = append(mws, enc)
	}
	if len(mws) > 0 {
		b.Store = middleware.Chain(b.Store, mws...)
	}

	logger.Debug("session backend ready", "driver", cfg.Driver, "encrypted", cfg.EncryptionKey != "", "redacted", cfg.Redact)
	return b, nil
}

// Sessions wraps the backend store in a session manager.
func (b *Backend) Sessions(logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger)}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	return session.NewManager(b.Store, opts...)
}

// EngineOptions lists what NewEngine needs besides the config.
type EngineOptions struct {
	Logger  *slog.Logger
	Handoff ports.BookingHandoff
	Hooks   domain.LifecycleHooks
	// GraphPath overrides the configured graph; a directory selects the
	// document-per-node loader, anything else a single document.
	GraphPath string
}

// NewEngine creates the engine over the configured graph source.
func NewEngine(cfg *config.Config, opts EngineOptions) (*symptomcheck.Engine, error) {
	engineOpts := []symptomcheck.Option{
		symptomcheck.WithLifecycleHooks(opts.Hooks),
		symptomcheck.WithAppointmentURL(cfg.AppointmentURL),
	}
	if opts.Logger != nil {
		engineOpts = append(engineOpts, symptomcheck.WithLogger(opts.Logger))
	}
	if opts.Handoff != nil {
		engineOpts = append(engineOpts, symptomcheck.WithBookingHandoff(opts.Handoff))
	}
	policy, err := runtime.ParseUnknownNodePolicy(cfg.Graph.UnknownNodePolicy)
	if err != nil {
		return nil, err
	}
	if policy == runtime.PolicyStrict {
		engineOpts = append(engineOpts, symptomcheck.WithStrictNodes())
	}

	source, path := cfg.Graph.Source, cfg.Graph.Path
	if opts.GraphPath != "" {
		path = opts.GraphPath
		source = config.SourceFile
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			source = config.SourceDir
		}
	}
	switch source {
	case config.SourceFile:
		engineOpts = append(engineOpts, symptomcheck.WithGraphFile(path))
	case config.SourceDir:
		engineOpts = append(engineOpts, symptomcheck.WithGraphDir(path))
	}

	eng, err := symptomcheck.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}
