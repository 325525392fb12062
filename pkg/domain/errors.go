package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is the abort reason of a transition replaced by a newer one.
	ErrSuperseded = errors.New("transition superseded")

	// ErrNoMatch is returned by adapters when a location matched no routes.
	ErrNoMatch = errors.New("no routes matched")

	// ErrInitialAbort is reported when the very first transition is aborted.
	ErrInitialAbort = errors.New("the initial transition may not be aborted")

	// ErrArtifactNotFound is returned by artifact sources for unknown names.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrHookNotFound is returned by hook resolvers for unknown names.
	ErrHookNotFound = errors.New("hook not found")

	// ErrRouteNotFound is returned when a route ID is missing from a tree.
	ErrRouteNotFound = errors.New("route not found")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")
)

// ConfigError reports an invalid route configuration.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid route %q: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// HookError wraps a failure raised by a lifecycle hook.
type HookError struct {
	RouteID string
	Phase   HookPhase
	Err     error
}

func (e *HookError) Error() string {
	if e.RouteID == "" {
		return fmt.Sprintf("%s hook failed: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s hook of route %q failed: %v", e.Phase, e.RouteID, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// ArtifactError wraps a failure to load a route artifact.
type ArtifactError struct {
	RouteID string
	Key     string
	Err     error
}

func (e *ArtifactError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("load artifact of route %q: %v", e.RouteID, e.Err)
	}
	return fmt.Sprintf("load artifact %q of route %q: %v", e.Key, e.RouteID, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }
