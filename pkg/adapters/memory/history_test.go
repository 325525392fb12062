package memory_test

import (
	"testing"

	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.History   = (*memory.History)(nil)
	_ ports.HrefMaker = (*memory.History)(nil)
)

func TestHistory_PushReplaceGo(t *testing.T) {
	h := memory.NewHistory("/start")
	assert.Equal(t, "/start", h.Location().Pathname)
	assert.Equal(t, domain.ActionPop, h.Location().Action)

	var seen []string
	unlisten := h.Listen(func(loc *domain.Location) {
		seen = append(seen, string(loc.Action)+" "+loc.Path())
	})

	h.Push("/users?page=2", map[string]any{"from": "start"})
	require.Equal(t, "/users", h.Location().Pathname)
	assert.Equal(t, "2", h.Location().Query.Get("page"))
	assert.NotEmpty(t, h.Location().Key)
	assert.Equal(t, map[string]any{"from": "start"}, h.Location().State)

	h.Replace("/users?page=3", nil)
	assert.Len(t, h.Entries(), 2)

	assert.True(t, h.Go(-1))
	assert.Equal(t, "/start", h.Location().Pathname)
	assert.False(t, h.Go(-5))
	assert.False(t, h.Go(0))
	assert.Equal(t, 0, h.Index())

	h.Push("/fresh", nil)
	assert.Len(t, h.Entries(), 2, "push drops forward entries")

	unlisten()
	h.Push("/silent", nil)

	assert.Equal(t, []string{
		"PUSH /users?page=2",
		"REPLACE /users?page=3",
		"POP /start",
		"PUSH /fresh",
	}, seen)
}

func TestHistory_DefaultEntry(t *testing.T) {
	h := memory.NewHistory()
	assert.Equal(t, "/", h.Location().Pathname)
}

func TestHistory_MakeHref(t *testing.T) {
	assert.Equal(t, "/users/7", memory.NewHistory().MakeHref("/users/7"))

	h := memory.NewHashHistory("/inbox")
	assert.Equal(t, "/inbox", h.Location().Pathname)
	assert.Equal(t, "#/users/7?tab=posts", h.MakeHref("/users/7?tab=posts"))
}
