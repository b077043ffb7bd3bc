package acheron

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/acheron/pkg/domain"
)

// Runner drives an Engine from line-based input.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// Export receives the report on the "export" command. Nil prints it to Output.
	Export func(name, markdown string) error
}

// ContentRenderer transforms node text before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a new Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

const runnerHelp = "commands: <n> choose, h hint, v view, r retry, f fresh start, n new mission, s save, l load, e export, q quit"

// Run plays until the input ends or the player quits.
func (r *Runner) Run(ctx context.Context, engine *Engine) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)
	w := r.Output

	if !r.Headless {
		if info := engine.MissionInfo(); info.IsPack && info.PackDescription != "" {
			fmt.Fprintf(w, "%s: %s\n", info.PackTitle, info.PackDescription)
		}
		fmt.Fprintln(w, engine.Briefing())
		fmt.Fprintln(w, runnerHelp)
	}

	lastRendered := ""
	for {
		snap := engine.Snapshot()
		if snap.Node == nil {
			return domain.ErrNoScenario
		}
		if snap.State.CurrentNodeID != lastRendered {
			r.render(snap)
			lastRendered = snap.State.CurrentNodeID
		}

		if !r.Headless {
			fmt.Fprint(w, "> ")
		}
		text, err := lines.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		if err != nil && strings.TrimSpace(text) == "" {
			return nil
		}

		input, err := SanitizeInput(text)
		if err != nil {
			fmt.Fprintf(w, "! %v\n", err)
			continue
		}
		quit, err := r.dispatch(ctx, engine, strings.TrimSpace(input))
		if err != nil {
			fmt.Fprintf(w, "! %v\n", err)
		}
		if quit {
			fmt.Fprintln(w, "Bye!")
			return nil
		}
		if after := engine.Snapshot(); after.State.BranchDepth < snap.State.BranchDepth || after.Mission.ID != snap.Mission.ID {
			lastRendered = ""
		}
	}
}

func (r *Runner) dispatch(ctx context.Context, engine *Engine, input string) (quit bool, err error) {
	w := r.Output
	switch strings.ToLower(input) {
	case "":
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	case "?", "help":
		fmt.Fprintln(w, runnerHelp)
	case "v", "view":
		if snap := engine.Snapshot(); snap.Node != nil {
			r.render(snap)
		}
	case "h", "hint":
		if !engine.UseHint(ctx) {
			fmt.Fprintln(w, "No hints remaining.")
			return false, nil
		}
		node, _ := engine.CurrentNode()
		for i, p := range engine.HintProbabilities() {
			line := fmt.Sprintf("  %d. %-40s %3d%%", i+1, p.Label, p.Percent)
			if node != nil && i < len(node.Choices) && node.Choices[i].Hint != "" {
				line += "  (" + node.Choices[i].Hint + ")"
			}
			fmt.Fprintln(w, line)
		}
	case "r", "retry":
		return false, engine.Reset(ctx, true)
	case "f", "fresh":
		return false, engine.Reset(ctx, false)
	case "n", "new":
		info, err := engine.SwitchToRandomOther(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(w, "Mission %s: %s\n", info.Slot(), info.Title)
	case "s", "save":
		if err := engine.Save(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(w, "Saved.")
	case "l", "load":
		resumed, err := engine.Restore(ctx)
		if err != nil {
			return false, err
		}
		if resumed {
			fmt.Fprintln(w, "Save loaded.")
		} else {
			fmt.Fprintln(w, "No save found, starting fresh.")
		}
	case "e", "export":
		name, md := engine.ReportFileName(), engine.ExportReport()
		if r.Export != nil {
			if err := r.Export(name, md); err != nil {
				return false, err
			}
			fmt.Fprintf(w, "Report written to %s\n", name)
			return false, nil
		}
		fmt.Fprint(w, md)
	default:
		n, convErr := strconv.Atoi(input)
		if convErr != nil {
			return false, fmt.Errorf("unknown command %q (%s)", input, runnerHelp)
		}
		return false, engine.Choose(ctx, n-1)
	}
	return false, nil
}

func (r *Runner) render(snap Snapshot) {
	w := r.Output
	output := snap.Node.Text
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		}
	}
	fmt.Fprintf(w, "\n[%s] %s\n", snap.Node.ID, strings.TrimSpace(output))
	if snap.Node.Flag != "" {
		fmt.Fprintf(w, "Flag captured: %s\n", snap.Node.Flag)
	}

	if snap.State.Status.IsTerminal() {
		label := "MISSION COMPLETE"
		if snap.State.Status == domain.StatusFailed {
			label = "DETECTED"
		}
		fmt.Fprintf(w, "== %s == (r retry, n new mission, e export, q quit)\n", label)
		return
	}
	for _, c := range snap.Choices {
		if c.Disabled {
			fmt.Fprintf(w, "  %d) %s [used]\n", c.Index+1, c.Label)
			continue
		}
		fmt.Fprintf(w, "  %d) %s\n", c.Index+1, c.Label)
	}
	if snap.Exhausted {
		fmt.Fprintln(w, "  (every path from here explored, all choices open again)")
	}
}
