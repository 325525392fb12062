package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/persistence/middleware"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func snapshot(path string, params domain.Params) *domain.StateSnapshot {
	return &domain.StateSnapshot{
		Location: domain.ParseLocation(path),
		Routes:   []string{"app", "user"},
		Params:   params,
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStateStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secure := mw(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "s1", snapshot("/users/42?token=abc", domain.Params{"id": "42"})))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Sealed)
	assert.Nil(t, stored.Location)
	assert.Empty(t, stored.Routes)
	assert.Empty(t, stored.Params)

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "/users/42?token=abc", loaded.Location.Path())
	assert.Equal(t, []string{"app", "user"}, loaded.Routes)
	assert.Equal(t, "42", loaded.Params["id"])
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Save(ctx, "rot", snapshot("/a", nil)))

	newStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := newStore.Load(ctx, "rot")
	require.NoError(t, err)
	assert.Equal(t, "/a", loaded.Location.Pathname)

	// Re-saving seals with the new key only.
	require.NoError(t, newStore.Save(ctx, "rot", snapshot("/b", nil)))
	_, err = oldStore.Load(ctx, "rot")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlainSnapshot(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", snapshot("/a", nil)))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)

	_, err = secure.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_BoundToSession(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "alice", snapshot("/admin", nil)))
	stolen, err := underlying.Load(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, underlying.Save(ctx, "mallory", stolen))

	_, err = secure.Load(ctx, "mallory")
	assert.ErrorContains(t, err, "decrypt")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    generateKey(t),
			FallbackKeys: [][]byte{[]byte("old")},
		})
	})
}
