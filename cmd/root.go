// Package cmd holds the lograt command tree.
package cmd

import (
	"github.com/grovetools/lograt/cli"
	"github.com/grovetools/lograt/logging"
	"github.com/grovetools/lograt/pkg/profiling"
	"github.com/grovetools/lograt/version"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the lograt command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"lograt",
		"Watch directories and log every filesystem event",
	)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	cli.SetVersionTemplate(rootCmd, version.GetInfo())
	profiling.NewCobraProfiler(logging.NewLogger("profiling")).AddFlags(rootCmd)

	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewAnalysisCmd())
	rootCmd.AddCommand(NewLogsCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("lograt", version.GetInfo()))

	cli.ApplyStyledHelpRecursive(rootCmd)
	return rootCmd
}

// Execute runs the command tree and reports a failure on stderr.
func Execute() error {
	rootCmd := NewRootCmd()
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		verbose, _ := cmd.Flags().GetBool("verbose")
		return cli.NewErrorHandler(verbose).Handle(err)
	}
	return nil
}
