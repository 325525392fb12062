package ports

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// StateStore defines the interface for persisting router state between requests.
// This allows stateless adapters (HTTP, MCP) to navigate on behalf of a session.
type StateStore interface {
	// Save persists the snapshot for a given session ID.
	Save(ctx context.Context, sessionID string, snap *domain.StateSnapshot) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.StateSnapshot, error)

	// Delete removes the snapshot for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
