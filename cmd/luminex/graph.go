package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luminex/symptomcheck/internal/cli"
	"github.com/luminex/symptomcheck/internal/logging"
	"github.com/luminex/symptomcheck/internal/presentation/graph"
	"github.com/luminex/symptomcheck/pkg/domain"
)

var graphCmd = &cobra.Command{
	Use:   "graph [graph]",
	Short: "Export the decision graph as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart of the symptoms, questions and results. Urgent
results are highlighted. With --session the path of a saved session is overlaid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		engine, err := cli.NewEngine(cfg, cli.EngineOptions{GraphPath: graphPath(cmd, args)})
		if err != nil {
			return err
		}
		g, err := engine.Inspect()
		if err != nil {
			return fmt.Errorf("error inspecting graph: %w", err)
		}

		var overlay *graph.GraphOverlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			backend, err := cli.OpenBackend(cmd.Context(), cfg.Store, logging.NewNop())
			if err != nil {
				return err
			}
			defer backend.Close()
			state, err := backend.Store.Load(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", id, err)
			}
			overlay = graph.OverlayFor(state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, domain.Language(cfg.Language), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Overlay the path of this session")
}
