package main

import (
	"strings"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newBrowseCmd(a *app) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Navigate the route tree interactively",
		Long: `Starts a router over an in-memory history and reads navigation commands
from stdin: a path to navigate, back, forward, go <n>, replace <path>,
href <to>, active <path>, where, and exit. Type help for the list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			rt, err := a.runtime(sigCtx)
			if err != nil {
				return err
			}

			tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(wayfinder.Version))
			opts := []wayfinder.Option{wayfinder.WithArtifactSource(rt.Artifacts)}
			if a.cfg.HookTimeout > 0 {
				opts = append(opts, wayfinder.WithHookTimeout(a.cfg.HookTimeout))
			}
			err = cli.Browse(sigCtx, rt.Engine, cmd.InOrStdin(), cmd.OutOrStdout(), cli.BrowseOptions{
				Start:   start,
				Logger:  a.logger,
				Options: opts,
			})
			return cli.HandleExecutionError(err)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First location (default: the basename root)")
	return cmd
}
