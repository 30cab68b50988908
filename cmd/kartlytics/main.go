// Package main provides the entry point for the kartlytics CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/kartlytics/cmd/kartlytics/commands"
	"github.com/Sumatoshi-tech/kartlytics/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := newRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	globals := &commands.Globals{}

	rootCmd := &cobra.Command{
		Use:   "kartlytics",
		Short: "Kartlytics - endurance karting race analysis",
		Long: `Kartlytics aligns the lap times of every team and driver on a shared time
axis and reports how the race unfolded.

Commands:
  analyze   Analyse a race result and write a report
  validate  Check a race result document
  serve     Serve analyses over HTTP
  schema    Print the input or report JSON schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress output")
	rootCmd.PersistentFlags().BoolVar(&globals.LogJSON, "log-json", false, "JSON log output")
	rootCmd.PersistentFlags().StringVar(&globals.ConfigPath, "config", "", "config file (default: .kartlytics.yaml in . or $HOME)")

	rootCmd.AddCommand(commands.NewAnalyzeCommand(globals))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewServeCommand(globals))
	rootCmd.AddCommand(commands.NewSchemaCommand())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
