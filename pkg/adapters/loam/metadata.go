package loam

// ArtifactMetadata is the frontmatter of an artifact document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type ArtifactMetadata struct {
	ID    string         `json:"id" mapstructure:"id"`
	Title string         `json:"title" mapstructure:"title"`
	Kind  string         `json:"kind" mapstructure:"kind"`
	Meta  map[string]any `json:"meta" mapstructure:"meta"`
}

// Document is the artifact value resolved from the repository.
type Document struct {
	ID    string         `json:"id"`
	Title string         `json:"title,omitempty"`
	Kind  string         `json:"kind,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Body  string         `json:"body"`
}
