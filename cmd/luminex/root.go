package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luminex/symptomcheck/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "luminex",
	Short: "LUMINEX symptom checker",
	Long: `luminex walks a patient from a symptom to a recommended hospital department
and hands the recommendation off to appointment booking. The result is
guidance only and is never a medical diagnosis.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "YAML configuration file")
	pf.StringSlice("env-file", []string{".env"}, "Files with LUMINEX_* variables to load")
	pf.String("graph", "", "Graph document or directory (overrides graph.source)")
	pf.String("store", "", "Session store: memory, file, redis or postgres")
	pf.String("lang", "", "Display language: tr or en")
	pf.Bool("debug", false, "Verbose logging to stderr")
}

// loadConfig layers the command-line flags over the configuration file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	envFiles, _ := flags.GetStringSlice("env-file")

	cfg, err := config.Load(config.Options{Path: path, EnvFiles: envFiles})
	if err != nil {
		return nil, err
	}
	if flags.Changed("store") {
		cfg.Store.Driver, _ = flags.GetString("store")
	}
	if flags.Changed("lang") {
		cfg.Language, _ = flags.GetString("lang")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func graphPath(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("graph")
	if !cmd.Flags().Changed("graph") && len(args) > 0 {
		path = args[0]
	}
	return path
}
