package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sections/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "sections",
	Short: "Sections is a template-driven structural document engine",
	Long: `Sections keeps HTML documents in the shape their templates declare:
every templated element holds its slots, in order, and foreign content is repaired away.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the templates (and sections.yaml)")
	rootCmd.PersistentFlags().String("config", "", "Configuration file (defaults to sections.yaml in --dir)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log repair events to stderr")
}

// engineOptions reads the persistent flags.
func engineOptions(cmd *cobra.Command) cli.EngineOptions {
	dir, _ := cmd.Flags().GetString("dir")
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.EngineOptions{Dir: dir, ConfigPath: configPath, Debug: debug}
}
