package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/sections"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sections",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sections version %s\n", sections.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
