// Package report renders the attack path summary of a session as markdown.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/acheron/pkg/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultTitle = "Red Team Simulation"
	maxSlugLen   = 60
)

var (
	upper    = cases.Upper(language.Und)
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
)

// Input is everything the report shows. It is assembled by the engine from
// the session snapshot and the catalog.
type Input struct {
	Title         string
	PackTitle     string
	Mission       domain.MissionInfo
	State         *domain.SessionState
	CurrentResult domain.Result
	Elapsed       time.Duration
	Achievements  []string
}

// Markdown renders the report. Equal inputs give byte-identical output.
func Markdown(in Input) string {
	title := in.Title
	if title == "" {
		title = defaultTitle
	}
	pack := in.PackTitle
	if pack == "" {
		pack = "N/A"
	}
	status := upper.String(string(in.State.Status))
	if in.CurrentResult != domain.ResultNone {
		status += " (" + string(in.CurrentResult) + ")"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Attack Path Report\n\n", title)
	fmt.Fprintf(&b, "- Mission Pack: %s\n", pack)
	fmt.Fprintf(&b, "- Mission Slot: %s\n", in.Mission.Slot())
	fmt.Fprintf(&b, "- Status: %s\n", status)
	fmt.Fprintf(&b, "- Current Node: %s\n", in.State.CurrentNodeID)
	fmt.Fprintf(&b, "- Attempts: %d\n", in.State.Attempts)
	fmt.Fprintf(&b, "- Time Elapsed: %ds\n", int(in.Elapsed/time.Second))
	fmt.Fprintf(&b, "- Hints Used: %d\n", in.State.HintsUsed)

	b.WriteString("\n## Path Taken\n")
	if len(in.State.PathTaken) == 0 {
		b.WriteString("- No moves recorded\n")
	}
	for i, step := range in.State.PathTaken {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	b.WriteString("\n## Achievements\n")
	if len(in.Achievements) == 0 {
		b.WriteString("- None\n")
	}
	for _, a := range in.Achievements {
		fmt.Fprintf(&b, "- %s\n", a)
	}
	return b.String()
}

// Slug lower-cases title and collapses every run of other characters into one dash.
func Slug(title string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	if s == "" {
		s = "red-team-simulation"
	}
	return s
}

// FileName is the suggested export name: "<slug>-path-<unix millis>.md".
func FileName(title string, at time.Time) string {
	return Slug(title) + "-path-" + strconv.FormatInt(at.UnixMilli(), 10) + ".md"
}
