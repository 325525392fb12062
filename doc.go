/*
Package wayfinder is a navigation engine: it resolves a location into the
matched chain of nested routes, loads the artifacts those routes contribute
and runs their enter, change and leave hooks before committing the new state.

# Concept

Routes form a tree. Matching a pathname walks that tree depth first and
yields a branch (root to leaf) plus the params bound along it. Moving from one
branch to another is a transition: routes that disappear are left, routes
whose params changed are changed, and new routes are entered. Any hook may
redirect or abort the transition, and a newer navigation always supersedes
the one in flight, so at most one transition commits at a time.

# Key Features

  - Nested routes with params, splats and index routes.
  - Relative links resolved like filesystem paths, jailed under a basename.
  - Asynchronous hooks with redirect and abort outcomes.
  - Hexagonal design: history, artifact sources and session stores are ports.

# Usage

A client follows a History with a Router:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/wayfinder"
		"github.com/aretw0/wayfinder/pkg/adapters/memory"
		"github.com/aretw0/wayfinder/pkg/domain"
		"github.com/aretw0/wayfinder/pkg/dsl"
	)

	func main() {
		b := dsl.New()
		b.Route("/").Artifact("layout").
			Route("users/:id").Artifact("profile")

		history := memory.NewHistory("/users/42")
		router, err := wayfinder.New(history, b.Configs(),
			wayfinder.OnUpdate(func(state *domain.RouterState) {
				log.Println("now at", state.Location.Path(), state.Params)
			}),
		)
		if err != nil {
			log.Fatal(err)
		}
		if err := router.Listen(context.Background()); err != nil {
			log.Fatal(err)
		}
		router.TransitionTo("/users/7", nil, nil)
		router.Close()
	}

A server resolves one location at a time with Match, or with an Engine when
routes come from files that may change.
*/
package wayfinder
