package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/dto"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"
)

const (
	routesURI        = "wayfinder://routes"
	routesMermaidURI = "wayfinder://routes.mmd"
)

// HrefResponse is the structured result of resolve_href.
type HrefResponse struct {
	Href string `json:"href" jsonschema_description:"The resolved href, basename and query included"`
}

// Engine defines what the MCP server needs from the route engine.
// *wayfinder.Engine implements it.
type Engine interface {
	session.Navigator
	Routes() *domain.RouteTree
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions lets match_location navigate persisted sessions.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("wayfinder-mcp", strings.TrimSpace(wayfinder.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it
// when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: match_location
	matchTool := mcp.NewTool("match_location",
		mcp.WithDescription("Resolve a location against the route tree and run its hooks. With a session_id the session navigates and only changed routes run their hooks."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to resolve, query and hash included")),
		mcp.WithString("session_id", mcp.Description("Session to navigate (optional)")),
		mcp.WithOutputSchema[dto.Resolution](),
	)
	s.mcpServer.AddTool(matchTool, mcp.NewStructuredToolHandler(s.handleMatch))

	// TOOL: resolve_href
	hrefTool := mcp.NewTool("resolve_href",
		mcp.WithDescription("Resolve a link target relative to a location, under the configured basename."),
		mcp.WithString("to", mcp.Required(), mcp.Description("Link target, absolute or relative")),
		mcp.WithString("from", mcp.Description("Location the link is resolved from (optional)")),
		mcp.WithString("query", mcp.Description("Query string to append, e.g. page=2 (optional)")),
		mcp.WithOutputSchema[HrefResponse](),
	)
	s.mcpServer.AddTool(hrefTool, mcp.NewStructuredToolHandler(s.handleHref))

	// TOOL: list_routes
	s.mcpServer.AddTool(mcp.NewTool("list_routes",
		mcp.WithDescription("List the route tree for introspection."),
		mcp.WithString("format", mcp.Description("json (default) or mermaid")),
	), s.handleListRoutes)
}

func (s *Server) handleMatch(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (dto.Resolution, error) {
	var in dto.MatchArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return dto.Resolution{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if in.Path == "" {
		return dto.Resolution{}, errors.New("path is required")
	}

	if in.SessionID != "" && s.sessions != nil {
		res, err := s.sessions.Navigate(ctx, s.engine, in.SessionID, in.Path)
		if err != nil {
			return dto.Resolution{}, fmt.Errorf("navigate failed: %w", err)
		}
		return *dto.FromResult(res), nil
	}

	state, t, err := s.engine.Resolve(ctx, nil, domain.ParseLocation(in.Path))
	if err != nil {
		s.logger.Warn("MCP Match failed", "path", in.Path, "err", err)
		return dto.Resolution{}, fmt.Errorf("match failed: %w", err)
	}
	return *dto.FromTransition(state, t), nil
}

func (s *Server) handleHref(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (HrefResponse, error) {
	var in dto.HrefArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return HrefResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if in.To == "" {
		return HrefResponse{}, errors.New("to is required")
	}
	href, err := s.engine.Href(in.To, domain.ParseQuery(in.Query), in.From)
	if err != nil {
		return HrefResponse{}, fmt.Errorf("href failed: %w", err)
	}
	return HrefResponse{Href: href}, nil
}

func (s *Server) handleListRoutes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.GetString("format", "json") == "mermaid" {
		return mcp.NewToolResultText(graph.GenerateMermaid(s.engine.Routes(), nil)), nil
	}
	jsonBytes, err := json.Marshal(graph.Entries(s.engine.Routes()))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: wayfinder://routes
	s.mcpServer.AddResource(mcp.NewResource(routesURI, "Current Route Tree",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(graph.Entries(s.engine.Routes()))
		if err != nil {
			return nil, fmt.Errorf("failed to encode routes: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      routesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: wayfinder://routes.mmd
	s.mcpServer.AddResource(mcp.NewResource(routesMermaidURI, "Route Tree Diagram",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      routesMermaidURI,
				MIMEType: "text/vnd.mermaid",
				Text:     graph.GenerateMermaid(s.engine.Routes(), nil),
			},
		}, nil
	})
}
