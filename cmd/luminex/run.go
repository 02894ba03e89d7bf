package main

import (
	"github.com/spf13/cobra"

	"github.com/luminex/symptomcheck/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run [graph]",
	Short: "Run an interactive symptom check in the terminal",
	Long: `Starts a symptom check in the terminal. Choices are numbered; type the number
or the option text. ":lang en" switches the language, ":restart" returns to the
symptom list and "exit" quits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		opts := cli.RunOptions{Config: cfg, GraphPath: graphPath(cmd, args)}
		opts.SessionID, _ = flags.GetString("session")
		opts.Symptom, _ = flags.GetString("symptom")
		opts.UserID, _ = flags.GetString("user")
		opts.JSON, _ = flags.GetBool("json")
		opts.Fresh, _ = flags.GetBool("fresh")
		opts.Watch, _ = flags.GetBool("watch")
		opts.Debug, _ = flags.GetBool("debug")
		opts.WordWrap, _ = flags.GetInt("word-wrap")

		return cli.Run(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session id; the session is saved and resumed")
	runCmd.Flags().String("symptom", "", "Skip the symptom list and start with this symptom key")
	runCmd.Flags().String("user", "", "User id for the greeting")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("fresh", false, "Discard the saved session before starting")
	runCmd.Flags().BoolP("watch", "w", false, "Reload when the graph changes")
	runCmd.Flags().Int("word-wrap", 80, "Wrap width of rendered markdown")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
