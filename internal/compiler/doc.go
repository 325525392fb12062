/*
Package compiler turns route configuration into a normalized, immutable
domain.RouteTree.

Configuration may come from Go values (domain.RouteConfig, prebuilt nodes)
or from generic maps decoded out of YAML and JSON route files. Normalization
compiles every pattern, assigns default IDs, resolves named hooks and
artifacts, orders splat routes after their siblings, and rejects ambiguous
or malformed trees with a *domain.ConfigError.
*/
package compiler
