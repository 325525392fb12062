package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	// Branch lists the IDs of a matched branch, root first. The last one is
	// styled as the current route.
	Branch []string
}

// OverlayFor builds an overlay from a committed state.
func OverlayFor(state *domain.RouterState) *GraphOverlay {
	if state == nil {
		return nil
	}
	return &GraphOverlay{Branch: state.Branch.IDs()}
}

// GenerateMermaid produces a Mermaid flowchart of the route tree.
// It applies semantic styling:
// - Root routes: ((Circle))
// - Index routes: [/Parallelogram/]
// - Splat routes: [[Subroutine]]
// - Default: [Rectangle]
// Edges into routes with hooks are labelled with their phases.
// It also applies overlay styles (Matched/Current) if provided.
func GenerateMermaid(tree *domain.RouteTree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, e := range Entries(tree) {
		safeID := sanitizeMermaidID(e.ID)

		opener, closer := "[", "]"
		switch {
		case e.Depth == 0:
			opener, closer = "((", "))"
		case e.Index:
			opener, closer = "[/", "/]"
		case strings.Contains(e.Path, "*"):
			opener, closer = "[[", "]]"
		}

		label := e.Pattern
		if e.Index {
			label += " (index)"
		}
		if len(e.Artifacts) > 0 {
			label += " <br/> " + strings.Join(e.Artifacts, ", ")
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))

		if e.Parent == "" {
			continue
		}
		arrow := "-->"
		if len(e.Hooks) > 0 {
			arrow = fmt.Sprintf("-- \"%s\" -->", strings.Join(e.Hooks, ", "))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.Parent), arrow, safeID))
	}

	if overlay != nil && len(overlay.Branch) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef matched fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		last := len(overlay.Branch) - 1
		for _, id := range overlay.Branch[:last] {
			sb.WriteString(fmt.Sprintf("    class %s matched;\n", sanitizeMermaidID(id)))
		}
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Branch[last])))
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(
		".", "_", "-", "_", "/", "_", "\\", "_",
		":", "_", "*", "_", "#", "_", " ", "_",
	)
	return r.Replace(id)
}
