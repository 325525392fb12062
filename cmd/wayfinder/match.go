package main

import (
	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/internal/dto"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/spf13/cobra"
)

func newMatchCmd(a *app) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Resolve a path and print the resulting state",
		Long: `Resolves the path against the route tree, running the hooks and loading the
artifacts of every matched route. With --session the navigation is made on
behalf of a stored session: only the routes that differ from its previous
state run their hooks, and redirects are followed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := a.runtime(ctx)
			if err != nil {
				return err
			}

			if sessionID != "" {
				sessions, closeFn, err := cli.BuildSessions(a.cfg, a.logger)
				if err != nil {
					return err
				}
				defer closeFn()

				res, err := sessions.Navigate(ctx, rt.Engine, sessionID, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), dto.FromResult(res))
			}

			state, t, err := rt.Engine.Resolve(ctx, nil, domain.ParseLocation(args[0]))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.FromTransition(state, t))
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Navigate this session instead of resolving from scratch")
	return cmd
}
