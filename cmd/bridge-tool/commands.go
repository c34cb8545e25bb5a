package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:           "bridge-tool",
	Short:         "Offline maintenance for rcbridge state directories.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(cmdReset)
}

func Execute() error {
	return rootCmd.Execute()
}
