// Package loam serves route artifacts from a Loam document repository
// (Markdown with frontmatter, JSON or YAML files).
package loam
