package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`     _        _                         `, "#f87171"},
	{`    / \   ___| |__   ___ _ __ ___  _ __  `, "#ef4444"},
	{`   / _ \ / __| '_ \ / _ \ '__/ _ \| '_ \ `, "#dc2626"},
	{`  / ___ \ (__| | | |  __/ | | (_) | | | |`, "#b91c1c"},
	{` /_/   \_\___|_| |_|\___|_|  \___/|_| |_|`, "#991b1b"},
}

// PrintBanner writes the ASCII art banner in a red gradient to w.
// Colors degrade with the terminal profile (none when w is not a terminal).
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  red team simulation engine").Faint())
	fmt.Fprintln(w)
}
