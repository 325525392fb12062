package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proceed(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
	return domain.Proceed(), nil
}

func sampleTree(t *testing.T) *domain.RouteTree {
	t.Helper()
	b := dsl.New()
	b.Route("/").ID("app").Artifact("layout").
		Index().ID("home").End().
		Route("users/:id").ID("user").Ref("profile").Named("sidebar", domain.NamedArtifact("user-nav")).OnEnter(proceed).OnLeave(proceed).End().
		Route("files/*").ID("files.browser").End()
	tree, err := b.Build()
	require.NoError(t, err)
	return tree
}

func TestEntries(t *testing.T) {
	entries := graph.Entries(sampleTree(t))
	require.Len(t, entries, 4)

	assert.Equal(t, graph.Entry{ID: "app", Path: "/", Pattern: "/", Artifacts: []string{"(value)"}}, entries[0])
	assert.Equal(t, graph.Entry{ID: "home", Pattern: "/", Depth: 1, Parent: "app", Index: true}, entries[1])

	user := entries[2]
	assert.Equal(t, "/users/:id", user.Pattern)
	assert.Equal(t, []string{"profile", "sidebar=user-nav"}, user.Artifacts)
	assert.Equal(t, []string{"enter", "leave"}, user.Hooks)

	assert.Equal(t, "/files/*", entries[3].Pattern)
	assert.Nil(t, graph.Entries(nil))
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes",
			contains: []string{
				"graph TD\n",
				`app(("/ <br/> (value)"))`,
				`home[/"/ (index)"/]`,
				`user["/users/:id <br/> profile, sidebar=user-nav"]`,
				`files_browser[["/files/*"]]`,
			},
		},
		{
			name: "Edges",
			contains: []string{
				"app --> home",
				`app -- "enter, leave" --> user`,
				"app --> files_browser",
			},
			excludes: []string{"classDef"},
		},
		{
			name:    "Overlay",
			overlay: &graph.GraphOverlay{Branch: []string{"app", "user"}},
			contains: []string{
				"class app matched;",
				"class user current;",
			},
		},
	}

	tree := sampleTree(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tree, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestOverlayFor(t *testing.T) {
	assert.Nil(t, graph.OverlayFor(nil))

	tree := sampleTree(t)
	user, _ := tree.Find("user")
	app, _ := tree.Find("app")
	overlay := graph.OverlayFor(&domain.RouterState{Branch: domain.Branch{app, user}})
	assert.Equal(t, []string{"app", "user"}, overlay.Branch)
}
