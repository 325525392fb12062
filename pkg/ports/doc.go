/*
Package ports defines the driven ports (interfaces) for the wayfinder engine.

These interfaces decouple the transition core from external implementations, allowing
the engine to work with various history sources, artifact backends and session stores.

# Key Interfaces

  - History: The navigation source the Router listens to (memory, browser bridge, ...).
  - TransitionDelegate: Supplies state, hooks and artifacts to the transition runner.
  - ArtifactSource: Resolves named artifacts (e.g., from Loam or the registry).
  - StateStore: Responsible for persisting and loading session state snapshots.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
