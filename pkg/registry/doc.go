// Package registry holds the named hooks and artifacts that declarative
// route files refer to.
package registry
