package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luminex/symptomcheck/internal/cli"
	"github.com/luminex/symptomcheck/pkg/catalog"
	"github.com/luminex/symptomcheck/pkg/domain"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [graph]",
	Short: "List the symptoms by category",
	Long:  `Prints the entry catalog in the selected language. --source and --schema dump the embedded graph document and its JSON schema.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if src, _ := cmd.Flags().GetBool("source"); src {
			_, err := out.Write(catalog.Source())
			return err
		}
		if schema, _ := cmd.Flags().GetBool("schema"); schema {
			_, err := out.Write(catalog.Schema())
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		engine, err := cli.NewEngine(cfg, cli.EngineOptions{GraphPath: graphPath(cmd, args)})
		if err != nil {
			return err
		}

		ctx := context.Background()
		state, err := engine.Start(ctx, "", domain.StartOptions{Language: domain.Language(cfg.Language)})
		if err != nil {
			return err
		}
		actions, _, err := engine.Render(ctx, state)
		if err != nil {
			return err
		}
		view, ok := actions[0].Payload.(domain.EntryView)
		if !ok {
			return fmt.Errorf("unexpected action %s", actions[0].Type)
		}

		n := 1
		for _, c := range view.Categories {
			fmt.Fprintf(out, "%s\n", c.Label)
			for _, s := range c.Symptoms {
				fmt.Fprintf(out, "  [%d] %-16s %s\n", n, s.Value, s.Label)
				n++
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().Bool("source", false, "Print the embedded graph document")
	catalogCmd.Flags().Bool("schema", false, "Print the JSON schema of graph documents")
}
