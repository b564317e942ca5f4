package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/sections/internal/cli"
	"github.com/aretw0/sections/internal/presentation/graph"
	"github.com/aretw0/sections/internal/presentation/tui"
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/model"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [document]",
	Short: "Describe the registered templates",
	Long: `Prints a table of templates, their slots and the sections their containers accept.
With --graph it outputs a Mermaid diagram (graph TD) of the template structure instead,
highlighting the template nodes a document uses when one is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cfg, _, err := cli.CreateEngine(cmd.Context(), engineOptions(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		asGraph, _ := cmd.Flags().GetBool("graph")
		if asGraph {
			var overlay *graph.GraphOverlay
			if policy := engine.RootPolicy(); policy != "" || len(args) > 0 {
				overlay = &graph.GraphOverlay{}
				if policy != "" {
					overlay.RootPolicy = domain.QualifiedName(policy)
				}
			}
			if len(args) > 0 {
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				doc, _, err := engine.Load(cmd.Context(), string(raw))
				if err != nil {
					return err
				}
				doc.Walk(doc.Root(domain.MainRoot), func(n *model.Node) bool {
					if strings.HasPrefix(n.Name, domain.QualifiedPrefix) {
						overlay.UsedNodes = append(overlay.UsedNodes, n.Name)
					}
					return true
				})
			}
			fmt.Fprint(out, graph.GenerateMermaid(engine.Registry().Nodes(), overlay))
			return nil
		}

		var summary []string
		if cfg != nil && cfg.Widget != nil {
			summary = cfg.Widget.Summary(engine.Templates())
		}
		rendered, err := tui.NewRenderer(os.Stdout)(tui.TemplatesMarkdown(engine.Registry(), summary))
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("graph", false, "Output a Mermaid diagram")
}
