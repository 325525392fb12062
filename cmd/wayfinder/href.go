package main

import (
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/spf13/cobra"
)

func newHrefCmd(a *app) *cobra.Command {
	var from, query string
	cmd := &cobra.Command{
		Use:   "href <to>",
		Short: "Resolve a link target under the basename",
		Long: `Resolves a link target like a router would. Relative targets are walked
from the location given by --from, which must match a route; ".." never
climbs above the basename.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}
			href, err := rt.Engine.Href(args[0], domain.ParseQuery(query), from)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), href)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Location the target is resolved from")
	cmd.Flags().StringVar(&query, "query", "", "Query string to append, e.g. page=2")
	return cmd
}
