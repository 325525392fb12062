package main

import (
	"fmt"

	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/internal/presentation/tui"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/spf13/cobra"
)

func newRoutesCmd(a *app) *cobra.Command {
	var format, highlight string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route tree",
		Long: `Prints the route tree as a table (default), a Mermaid diagram (graph TD)
or JSON. With --highlight the branch matching the given path is marked in
the diagram.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := a.runtime(ctx)
			if err != nil {
				return err
			}
			tree := rt.Engine.Routes()
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				return writeJSON(out, graph.Entries(tree))
			case "mermaid":
				var overlay *graph.GraphOverlay
				if highlight != "" {
					state, _, err := rt.Engine.Resolve(ctx, nil, domain.ParseLocation(highlight))
					if err != nil {
						return err
					}
					overlay = graph.OverlayFor(state)
				}
				fmt.Fprint(out, graph.GenerateMermaid(tree, overlay))
				return nil
			case "table":
				rendered, err := tui.Render(out, tui.RouteTable(graph.Entries(tree)))
				if err != nil {
					return err
				}
				fmt.Fprint(out, rendered)
				return nil
			default:
				return fmt.Errorf("unknown format %q: use table, mermaid or json", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, mermaid or json")
	cmd.Flags().StringVar(&highlight, "highlight", "", "Path whose matched branch is highlighted (mermaid only)")
	return cmd
}
