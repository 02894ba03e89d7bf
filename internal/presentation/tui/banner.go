package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the LUMINEX banner in the profile of w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	colors := []string{"#22d3ee", "#38bdf8", "#60a5fa", "#818cf8"}
	lines := []string{
		" _    _   _ __  __ ___ _  _ _____  __",
		"| |  | | | |  \\/  |_ _| \\| | __\\ \\/ /",
		"| |__| |_| | |\\/| || || .` | _| >  < ",
		"|____|\\___/|_|  |_|___|_|\\_|___/_/\\_\\",
	}
	fmt.Fprintln(w)
	for i, l := range lines {
		fmt.Fprintln(w, out.String(l).Foreground(out.Color(colors[i])))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  symptom checker "+version).Faint())
	}
	fmt.Fprintln(w)
}

// Urgent styles an emergency line in bold red when the terminal supports color.
func Urgent(w io.Writer, msg string) string {
	out := termenv.NewOutput(w)
	return out.String(msg).Bold().Foreground(out.Color("#dc2626")).String()
}
