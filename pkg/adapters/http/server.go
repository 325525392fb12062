package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/dto"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines what the HTTP adapter needs from the route engine.
// *wayfinder.Engine implements it.
type Engine interface {
	session.Navigator
	Routes() *domain.RouteTree
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Server serves route resolution and session navigation over HTTP.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Streams  *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSessions sets the session manager. The default keeps sessions in memory.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithMetrics exposes gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server for engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		Engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Sessions == nil {
		s.Sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Handler()
}

// Handler builds the chi router of the Server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/routes", s.GetRoutes)
	r.Get("/match", s.GetMatch)
	r.Get("/href", s.GetHref)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Get("/{id}", s.GetSession)
		r.Delete("/{id}", s.DeleteSession)
		r.Post("/{id}/navigate", s.Navigate)
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "wayfinder-http",
		"version": strings.TrimSpace(wayfinder.Version),
		"routes":  s.Engine.Routes().Len(),
	})
}

// GetRoutes handles the GET /routes request. With ?format=mermaid the tree
// is returned as a Mermaid flowchart.
func (s *Server) GetRoutes(w http.ResponseWriter, r *http.Request) {
	tree := s.Engine.Routes()
	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, graph.GenerateMermaid(tree, nil))
		return
	}
	s.writeJSON(w, http.StatusOK, graph.Entries(tree))
}

// GetMatch handles the GET /match?path= request. It resolves the path from
// scratch, running every hook of the matched branch.
func (s *Server) GetMatch(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "Missing path parameter", http.StatusBadRequest)
		return
	}

	state, t, err := s.Engine.Resolve(r.Context(), nil, domain.ParseLocation(path))
	if err != nil {
		s.writeError(w, r, "Match", err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.FromTransition(state, t))
}

// GetHref handles the GET /href?to=&from=&query= request.
func (s *Server) GetHref(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	args := dto.HrefArgs{To: q.Get("to"), From: q.Get("from"), Query: q.Get("query")}
	if args.To == "" {
		http.Error(w, "Missing to parameter", http.StatusBadRequest)
		return
	}

	href, err := s.Engine.Href(args.To, domain.ParseQuery(args.Query), args.From)
	if err != nil {
		s.writeError(w, r, "Href", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"href": href})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Navigate handles the POST /sessions/{id}/navigate request.
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var body dto.NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Navigate: Invalid request body", "err", err)
		return
	}

	res, err := s.Sessions.Navigate(r.Context(), s.Engine, sessionID, body.Path)
	if err != nil {
		s.writeError(w, r, "Navigate", err)
		return
	}

	out := dto.FromResult(res)
	if out.Diff != nil {
		if bytes, err := json.Marshal(out.Diff); err == nil {
			s.Streams.Broadcast(sessionID, string(bytes))
		}
	} else {
		s.logger.Debug("Navigate: No diff calculated", "session_id", sessionID)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// SubscribeEvents handles the GET /events request (SSE). Without a
// session_id the stream reports route reloads; with one it carries the
// route diffs of that session.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sessionID := r.URL.Query().Get("session_id")

	// Global Hot Reload
	if sessionID == "" {
		events, err := s.Engine.Watch(r.Context())
		if err != nil {
			s.writeError(w, r, "Watch", err)
			return
		}
		s.logger.Info("SSE: Subscribing to route reloads")
		startStream(w, flusher)

		for {
			select {
			case <-r.Context().Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: reload\ndata: %d\n\n", s.Engine.Routes().Len())
				flusher.Flush()
			}
		}
	}

	s.logger.Info("SSE: Subscribing to session updates", "session_id", sessionID)
	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	startStream(w, flusher)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func startStream(w http.ResponseWriter, flusher http.Flusher) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
}

// statusFor maps engine and session errors to HTTP status codes.
func statusFor(err error) int {
	var hookErr *domain.HookError
	switch {
	case errors.Is(err, domain.ErrNoMatch),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManyRedirects):
		return http.StatusLoopDetected
	case errors.Is(err, wayfinder.ErrNotWatchable):
		return http.StatusNotImplemented
	case errors.As(err, &hookErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err, "request_id", middleware.GetReqID(r.Context()))
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
