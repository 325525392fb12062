package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/wayfinder/internal/presentation/graph"
)

// RouteTable renders entries as a markdown table, nesting shown by indent.
func RouteTable(entries []graph.Entry) string {
	var sb strings.Builder
	sb.WriteString("| Route | Pattern | Artifacts | Hooks |\n")
	sb.WriteString("|-------|---------|-----------|-------|\n")
	for _, e := range entries {
		id := strings.Repeat("&nbsp;&nbsp;", e.Depth) + "`" + e.ID + "`"
		pattern := "`" + e.Pattern + "`"
		if e.Index {
			pattern += " *(index)*"
		}
		if e.Terminal {
			pattern += " *(terminal)*"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			id, pattern, cell(e.Artifacts), cell(e.Hooks)))
	}
	return sb.String()
}

func cell(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
