package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sections/internal/cli"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [files...]",
	Short: "Repair documents against the templates",
	Long: `Upcasts each document, repairs it and prints the result.
Without files the document is read from stdin. With --watch the files are
repaired again whenever a template changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		write, _ := cmd.Flags().GetBool("write")
		check, _ := cmd.Flags().GetBool("check")
		editing, _ := cmd.Flags().GetBool("editing")
		jsonMode, _ := cmd.Flags().GetBool("json")
		watch, _ := cmd.Flags().GetBool("watch")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		opts := engineOptions(cmd)
		nopts := cli.NormalizeOptions{
			Files:       args,
			Write:       write,
			Check:       check,
			Editing:     editing,
			Concurrency: concurrency,
		}
		out := cmd.OutOrStdout()

		if watch {
			if len(args) == 0 {
				return fmt.Errorf("--watch needs files to normalize")
			}
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()
			return cli.RunWatch(sigCtx, opts, nopts, out)
		}

		engine, _, _, err := cli.CreateEngine(cmd.Context(), opts)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			res, err := cli.NormalizeStream(cmd.Context(), engine, os.Stdin, editing)
			if err != nil {
				return err
			}
			if jsonMode {
				return json.NewEncoder(out).Encode(res)
			}
			fmt.Fprintln(out, res.HTML)
			return nil
		}

		results, err := cli.NormalizeFiles(cmd.Context(), engine, nopts)
		if jsonMode && results != nil {
			if encErr := json.NewEncoder(out).Encode(results); encErr != nil {
				return encErr
			}
		} else if !write && !check {
			for _, r := range results {
				if len(results) > 1 {
					fmt.Fprintf(out, "<!-- %s -->\n", r.Path)
				}
				fmt.Fprintln(out, r.HTML)
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().BoolP("write", "w", false, "Rewrite changed files in place")
	normalizeCmd.Flags().Bool("check", false, "Fail when a file is not normalized")
	normalizeCmd.Flags().Bool("editing", false, "Print the editing markup instead of the data markup")
	normalizeCmd.Flags().Bool("json", false, "Print results as JSON")
	normalizeCmd.Flags().Bool("watch", false, "Normalize again when templates change")
	normalizeCmd.Flags().IntP("concurrency", "j", 0, "Files processed in parallel (default: one per CPU)")
}
