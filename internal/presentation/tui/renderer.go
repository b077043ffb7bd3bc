package tui

import (
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// NewRenderer returns a function that renders markdown using glamour,
// wrapped at width columns (80 when width <= 0).
func NewRenderer(width int) func(string) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Plain wrapping still keeps long narrative readable.
		return func(markdown string) (string, error) {
			return Wrap(markdown, width), nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Wrap word-wraps plain text at width columns.
func Wrap(text string, width int) string {
	return wordwrap.String(text, width)
}

// StatusLabel is the banner shown for a session status.
func StatusLabel(s domain.Status) string {
	switch s {
	case domain.StatusWon:
		return "MISSION COMPLETE"
	case domain.StatusFailed:
		return "DETECTED"
	}
	return "IN PROGRESS"
}
