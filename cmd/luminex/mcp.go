package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luminex/symptomcheck"
	"github.com/luminex/symptomcheck/internal/cli"
	"github.com/luminex/symptomcheck/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [graph]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the symptom checker to AI agents as MCP tools
(list_symptoms, start_check, answer, switch_language, book) and the decision
graph as a resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		debug, _ := cmd.Flags().GetBool("debug")

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		logger, err := cli.NewLogger(cfg.Log, debug, os.Stderr)
		if err != nil {
			return err
		}
		log.SetOutput(os.Stderr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := cli.OpenBackend(ctx, cfg.Store, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		engine, err := cli.NewEngine(cfg, cli.EngineOptions{
			Logger:    logger,
			Handoff:   backend.Handoff,
			GraphPath: graphPath(cmd, args),
		})
		if err != nil {
			return err
		}

		srv := mcp.NewServer(engine, backend.Sessions(logger), symptomcheck.Version, logger)

		switch transport {
		case "stdio":
			logger.Info("Starting LUMINEX MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			baseURL, _ := cmd.Flags().GetString("base-url")
			if err := srv.ServeSSE(ctx, addr, baseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
	mcpCmd.Flags().String("base-url", "http://localhost:8081", "Public base URL (only for SSE)")
}
