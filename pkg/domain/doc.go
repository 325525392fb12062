/*
Package domain contains the core domain models of the wayfinder navigation engine.

It defines the route tree, locations, router state and the transition record that
hooks use to cooperate. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - RouteNode: A declarative route (pattern, children, artifacts and lifecycle hooks).
  - RouteTree: The immutable, normalized forest of RouteNodes.
  - Location: A navigation target (pathname, search, hash, query, state).
  - RouterState: The committed result of a transition (location, branch, params, artifacts).
  - Transition: The coordination record hooks use to cancel or redirect a navigation.
*/
package domain
