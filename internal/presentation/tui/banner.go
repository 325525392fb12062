package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the wayfinder banner to w. Nothing is written when w
// is not a terminal, so piped output stays machine-readable.
func PrintBanner(w io.Writer, version string) {
	if !IsTerminal(w) {
		return
	}
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Sky)
	lines := []struct{ text, color string }{
		{" __      __              __ _           _", "#2dd4bf"},
		{" \\ \\ /\\ / /_ _ _  _ ___ / _(_)_ _  __| |___ _ _", "#22d3ee"},
		{"  \\ V  V / _` | || |___|  _| | ' \\/ _` / -_) '_|", "#38bdf8"},
		{"   \\_/\\_/\\__,_|\\_, |   |_| |_|_||_\\__,_\\___|_|", "#60a5fa"},
		{"               |__/", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
