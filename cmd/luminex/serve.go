package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/luminex/symptomcheck"
	"github.com/luminex/symptomcheck/internal/cli"
	httpAdapter "github.com/luminex/symptomcheck/pkg/adapters/http"
	"github.com/luminex/symptomcheck/pkg/observability"
	"github.com/luminex/symptomcheck/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve [graph]",
	Short: "Start the HTTP API",
	Long:  `Serves the symptom checker as a JSON API with an SSE state stream, the OpenAPI document and Prometheus metrics.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		debug, _ := cmd.Flags().GetBool("debug")

		logger, err := cli.NewLogger(cfg.Log, debug, os.Stderr)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := cli.OpenBackend(ctx, cfg.Store, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		hooks := observability.AuditHooks(logger)
		handlerOpts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(symptomcheck.Version),
		}
		if cfg.Metrics.Enabled {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := observability.NewMetrics(reg)
			if err != nil {
				return err
			}
			hooks = hooks.Merge(metrics.Hooks())
			handlerOpts = append(handlerOpts, httpAdapter.WithMetricsHandler(observability.Handler(reg)))
		}

		engine, err := cli.NewEngine(cfg, cli.EngineOptions{
			Logger:    logger,
			Handoff:   backend.Handoff,
			Hooks:     hooks,
			GraphPath: graphPath(cmd, args),
		})
		if err != nil {
			return err
		}
		if err := engine.Validate(); err != nil {
			return fmt.Errorf("graph is invalid: %w", err)
		}
		if w, ok := engine.Loader().(ports.Watchable); ok {
			handlerOpts = append(handlerOpts, httpAdapter.WithGraphWatcher(w))
		}

		handler, err := httpAdapter.NewHandler(engine, backend.Sessions(logger), handlerOpts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting LUMINEX server", "addr", srv.Addr, "graph", engine.Name, "store", backend.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			logger.Info("Start shutdown")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
