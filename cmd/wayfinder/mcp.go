package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	var transport string
	var port int
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts the route engine as an MCP Server, exposing the tools match_location,
resolve_href and list_routes and the route tree as resources.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			srv := mcp.NewServer(rt.Engine, mcp.WithSessions(sessions), mcp.WithLogger(a.logger))

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				a.logger.Info("Starting Wayfinder MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				a.logger.Info("Starting Wayfinder MCP Server (SSE)", "port", port)
				if err := srv.ServeSSE(sigCtx, port); err != nil {
					return err
				}
				a.logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (only for SSE)")
	return cmd
}
