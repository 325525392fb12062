package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/dto"
	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/observability"
	"github.com/aretw0/wayfinder/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...wayfinder.Option) *wayfinder.Engine {
	t.Helper()
	reg := registry.NewRegistry()
	reg.RegisterHook("to-login", func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
		return domain.RedirectTo(domain.ParseLocation("/login")), nil
	})
	reg.RegisterArtifact("inbox-page", "inbox")

	routes := []domain.RouteConfig{{
		ID:   "app",
		Path: "/",
		Children: []domain.RouteConfig{
			{ID: "inbox", Path: "inbox", Artifact: "inbox-page"},
			{ID: "message", Path: "inbox/:msg"},
			{ID: "admin", Path: "admin", OnEnter: "to-login"},
			{ID: "login", Path: "login"},
		},
	}}
	opts = append([]wayfinder.Option{
		wayfinder.WithHookResolver(reg),
		wayfinder.WithArtifactSource(reg),
	}, opts...)
	eng, err := wayfinder.NewEngine(context.Background(), memory.NewLoader(routes...), opts...)
	require.NoError(t, err)
	return eng
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
	return w
}

func navigate(t *testing.T, h http.Handler, sessionID, path string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(dto.NavigateRequest{Path: path})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/sessions/"+sessionID+"/navigate", bytes.NewReader(body)))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(newEngine(t))

	w := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	info := decode[map[string]any](t, get(t, h, "/info"))
	assert.Equal(t, "wayfinder-http", info["app"])
	assert.Equal(t, strings.TrimSpace(wayfinder.Version), info["version"])
	assert.EqualValues(t, 5, info["routes"])
}

func TestGetRoutes(t *testing.T) {
	h := NewHandler(newEngine(t))

	entries := decode[[]graph.Entry](t, get(t, h, "/routes"))
	require.Len(t, entries, 5)
	assert.Equal(t, "/inbox/:msg", entries[2].Pattern)

	w := get(t, h, "/routes?format=mermaid")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app --> inbox")
}

func TestGetMatch(t *testing.T) {
	h := NewHandler(newEngine(t))

	res := decode[dto.Resolution](t, get(t, h, "/match?path=/inbox/42"))
	require.NotNil(t, res.State)
	assert.Equal(t, []string{"app", "message"}, res.State.Routes)
	assert.Equal(t, "42", res.State.Params["msg"])

	res = decode[dto.Resolution](t, get(t, h, "/match?path=/admin"))
	assert.Nil(t, res.State)
	require.NotNil(t, res.Redirect)
	assert.Equal(t, "/login", res.Redirect.Pathname)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/match?path=/nowhere/at/all").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/match").Code)
}

func TestGetHref(t *testing.T) {
	h := NewHandler(newEngine(t, wayfinder.WithBasename("/mail")))

	res := decode[map[string]string](t, get(t, h, "/href?to=..%2F7&from=%2Fmail%2Finbox%2F42&query=view%3Dfull"))
	assert.Equal(t, "/mail/inbox/7?view=full", res["href"])

	assert.Equal(t, http.StatusNotFound, get(t, h, "/href?to=x&from=/elsewhere").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/href").Code)
}

func TestSessions(t *testing.T) {
	h := NewHandler(newEngine(t))

	w := navigate(t, h, "s1", "/inbox")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[dto.Resolution](t, w)
	require.NotNil(t, res.State)
	assert.Equal(t, []string{"app", "inbox"}, res.State.Routes)
	require.NotNil(t, res.Diff)
	assert.Equal(t, []string{"app", "inbox"}, res.Diff.Entering)

	res = decode[dto.Resolution](t, navigate(t, h, "s1", "/admin"))
	assert.Equal(t, []string{"/admin"}, res.Redirects)
	assert.Equal(t, []string{"app", "login"}, res.State.Routes)
	assert.Equal(t, []string{"inbox"}, res.Diff.Leaving)
	assert.Equal(t, []string{"login"}, res.Diff.Entering)

	assert.Equal(t, []string{"s1"}, decode[[]string](t, get(t, h, "/sessions")))
	snap := decode[domain.StateSnapshot](t, get(t, h, "/sessions/s1"))
	assert.Equal(t, "/login", snap.Location.Pathname)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("DELETE", "/sessions/s1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/sessions/s1").Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/sessions/s1/navigate", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	h := NewHandler(newEngine(t, wayfinder.WithLifecycleHooks(metrics.Hooks())), WithMetrics(reg))

	get(t, h, "/match?path=/inbox")
	w := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `wayfinder_transitions_total{result="committed"} 1`)

	assert.Equal(t, http.StatusNotFound, get(t, NewHandler(newEngine(t)), "/metrics").Code)
}

// lockedRecorder lets the test read an SSE body while the handler writes it.
type lockedRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *lockedRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *lockedRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestSubscribeEvents_Session(t *testing.T) {
	server := NewServer(newEngine(t))
	h := server.Handler()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := &lockedRecorder{ResponseRecorder: httptest.NewRecorder()}
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(sub, httptest.NewRequest("GET", "/events?session_id=sess-1", nil).WithContext(ctx))
	}()

	require.Eventually(t, func() bool {
		return server.Streams.Subscribers("sess-1") == 1
	}, time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, navigate(t, h, "sess-1", "/inbox/9").Code)
	require.Eventually(t, func() bool {
		return strings.Contains(sub.String(), `"entering":["app","message"]`)
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Contains(t, sub.String(), "event: ping")
	assert.Zero(t, server.Streams.Subscribers("sess-1"))
}

func TestSubscribeEvents_GlobalNotWatchable(t *testing.T) {
	w := get(t, NewHandler(newEngine(t)), "/events")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
