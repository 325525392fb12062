package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/wayfinder/internal/validator"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the route tree for consistency",
		Long: `Compiles the route file and reports routes no path can reach, redirects
to paths no route matches and named artifacts the artifact source lacks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := a.runtime(ctx)
			if err != nil {
				return err
			}
			configs, err := rt.RouteConfigs(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			issues := validator.Check(ctx, rt.Engine.Routes(), configs, rt.Artifacts)
			if len(issues) == 0 {
				fmt.Fprintf(out, "Routes are valid! ✅ (%d routes)\n", rt.Engine.Routes().Len())
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintf(out, "- %s\n", issue)
			}
			return errors.New("validation failed")
		},
	}
}
