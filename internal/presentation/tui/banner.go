package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Sections ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Teal to blue, one shade per line
	lines := []struct{ text, color string }{
		{`  ___          _   _`, "#2dd4bf"},
		{` / __| ___ __ | |_(_)___ _ _  ___`, "#22d3ee"},
		{` \__ \/ -_) _||  _| / _ \ ' \(_-<`, "#38bdf8"},
		{` |___/\___\__| \__|_\___/_||_/__/`, "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
