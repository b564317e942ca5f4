package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sections/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [documents...]",
	Short: "Check templates and documents for consistency",
	Long: `Registers every template, reporting parse errors and name collisions.
Documents given as arguments are upcast without repair and checked against the schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cfg, _, err := cli.CreateEngine(cmd.Context(), engineOptions(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d templates, %d template nodes\n", len(engine.Templates()), engine.Registry().Len())
		if cfg != nil && cfg.Widget != nil {
			for _, line := range cfg.Widget.Summary(engine.Templates()) {
				fmt.Fprintln(out, line)
			}
		}

		var failed error
		for _, path := range args {
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			doc := engine.NewDocument()
			if _, err := engine.Pipeline().SetDataContext(cmd.Context(), doc, string(raw)); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := engine.Validate(doc); err != nil {
				fmt.Fprintf(out, "%s: %v\n", path, err)
				failed = errors.Join(failed, fmt.Errorf("%s: %w", path, err))
				continue
			}
			fmt.Fprintf(out, "%s: ok\n", path)
		}
		if failed != nil {
			return fmt.Errorf("validation failed")
		}

		fmt.Fprintln(out, "Templates are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
