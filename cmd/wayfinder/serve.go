package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/internal/presentation/tui"
	httpAdapter "github.com/aretw0/wayfinder/pkg/adapters/http"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Serves route resolution, link resolution and session navigation as a JSON
API. Sessions persist in the configured store; GET /events streams route
reloads (with --watch) or the route diffs of one session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("port") {
				a.cfg.HTTP.Port, _ = flags.GetInt("port")
			}
			if flags.Changed("watch") {
				a.cfg.HTTP.Watch, _ = flags.GetBool("watch")
			}
			if flags.Changed("metrics") {
				a.cfg.HTTP.Metrics, _ = flags.GetBool("metrics")
			}
			return serve(cmd, a)
		},
	}
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().Bool("watch", false, "Reload the route file when it changes")
	cmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	return cmd
}

func serve(cmd *cobra.Command, a *app) error {
	sigCtx := cli.NewSignalContext(cmd.Context())
	defer sigCtx.Cancel()

	rt, err := a.runtime(sigCtx)
	if err != nil {
		return err
	}
	sessions, closeSessions, err := cli.BuildSessions(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	opts := []httpAdapter.Option{
		httpAdapter.WithSessions(sessions),
		httpAdapter.WithLogger(a.logger),
	}
	if rt.Metrics != nil {
		opts = append(opts, httpAdapter.WithMetrics(rt.Metrics))
	}
	if a.cfg.HTTP.Watch {
		if err := cli.WatchRoutes(sigCtx, rt.Engine, a.logger); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.HTTP.Port),
		Handler: httpAdapter.NewHandler(rt.Engine, opts...),
	}

	tui.PrintBanner(cmd.ErrOrStderr(), strings.TrimSpace(wayfinder.Version))
	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		a.logger.Info("Starting Wayfinder Server", "address", srv.Addr, "routes", a.cfg.Routes, "watch", a.cfg.HTTP.Watch)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		return nil
	})

	err = g.Wait()
	if sig := sigCtx.Signal(); sig != nil {
		a.logger.Info("Wayfinder Server stopped gracefully", "signal", sig.String())
	}
	return err
}
