/*
Package session implements stateless, session-scoped navigation.

A session is a router state persisted as a domain.StateSnapshot in a
ports.StateStore. Each Navigate call loads the snapshot, hydrates it against
the current route tree, runs one transition (following redirects) and saves
the result. Access to a session is serialized by ref-counted in-process
locks and, across replicas, by an optional ports.DistributedLocker.
*/
package session
