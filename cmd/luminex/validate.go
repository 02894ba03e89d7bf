package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luminex/symptomcheck/internal/cli"
	"github.com/luminex/symptomcheck/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [graph]",
	Short: "Check the graph for consistency",
	Long: `Reports dangling references, symptoms without a path to a result, unknown
branches, malformed options and missing translations.`,
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
			return err
		}

		var opts []validator.Option
		if gaps, _ := cmd.Flags().GetBool("allow-gaps"); gaps {
			opts = append(opts, validator.AllowTranslationGaps())
		}
		report := validator.Validate(g, opts...)

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			for _, w := range report.Warnings {
				fmt.Fprintln(out, "warning:", w)
			}
			for _, e := range report.Errors {
				fmt.Fprintln(out, "error:", e)
			}
		}
		if !report.OK() {
			return errors.New("validation failed")
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); !asJSON {
			fmt.Fprintln(out, "Graph is valid! ✅")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the report as JSON")
	validateCmd.Flags().Bool("allow-gaps", false, "Report missing translations as warnings")
}
