package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luminex/symptomcheck"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of luminex",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "luminex version %s\n", symptomcheck.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
