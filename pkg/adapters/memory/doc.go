// Package memory provides in-memory implementations of the wayfinder ports:
// a navigation History for tests and one-shot resolution, a StateStore, and
// a static RouteLoader.
package memory
