package main

import (
	"fmt"

	"github.com/njchilds90/termwise"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of termwise",
	// Skip config loading; version must work anywhere.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "termwise version %s\n", termwise.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
