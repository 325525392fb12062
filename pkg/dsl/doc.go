/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing route trees.

It allows developers to define nested routes using a type-safe, fluent builder pattern
instead of relying on external YAML or JSON files. This is particularly useful for
unit testing and leveraging IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/aretw0/wayfinder/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		app := b.Route("/").Artifact(layout)
		app.Index().Artifact(home)
		app.Route("users/:id").
			OnEnter(requireLogin).
			Named("main", profile).
			Named("sidebar", nav)
		app.Route("*").Artifact(notFound)

		tree, err := b.Build()
		// ... pass tree to wayfinder.New(...)
	}
*/
package dsl
