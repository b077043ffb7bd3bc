package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/acheron"
	"github.com/aretw0/acheron/internal/config"
	"github.com/aretw0/acheron/internal/presentation/tui"
)

// PlayOptions configures an interactive session.
type PlayOptions struct {
	Config    config.Config
	Headless  bool
	Fresh     bool
	Watch     bool
	ExportDir string

	Input  io.Reader
	Output io.Writer
	Logger *slog.Logger
}

// Play runs the terminal game until the player quits, input ends or ctx is cancelled.
func Play(ctx context.Context, opts PlayOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		var err error
		if logger, err = NewLogger(opts.Config.LogLevel); err != nil {
			return err
		}
	}

	engine, backend, err := NewEngine(ctx, opts.Config, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	out := opts.Output
	if opts.Fresh {
		if err := engine.ClearSaved(ctx); err != nil {
			logger.Warn("could not clear saved session", "err", err)
		}
		if err := engine.Reset(ctx, false); err != nil {
			return err
		}
	} else if st := engine.State(); st != nil && st.BranchDepth > 1 && !opts.Headless {
		printSystemMessage(out, "Resuming at '%s' node...", st.CurrentNodeID)
	}

	tty := IsTerminal(out)
	r := acheron.NewRunner()
	r.Input = opts.Input
	r.Output = out
	r.Headless = opts.Headless
	if tty && !opts.Headless {
		tui.PrintBanner(out)
		r.Renderer = tui.NewRenderer(TerminalWidth(out))
	}
	r.Export = func(name, markdown string) error {
		return writeReport(opts.ExportDir, name, markdown)
	}

	if opts.Watch {
		go func() {
			if err := WatchScenario(ctx, opts.Config.Scenario, engine, logger, out); err != nil {
				logger.Error("scenario watcher stopped", "err", err)
			}
		}()
	}

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, engine) }()

	select {
	case err := <-done:
		return handleExecutionError(err)
	case <-ctx.Done():
		// The runner may be blocked reading input; the save is already current.
		if !opts.Headless {
			fmt.Fprintln(out)
			printSystemMessage(out, "Interrupted at '%s' node.", engine.State().CurrentNodeID)
		}
		return nil
	}
}

func writeReport(dir, name, markdown string) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(markdown), 0644)
}

// ExportReport writes the report of the saved session to dir and returns its path.
func ExportReport(ctx context.Context, cfg config.Config, logger *slog.Logger, dir string) (string, error) {
	engine, backend, err := NewEngine(ctx, cfg, logger)
	if err != nil {
		return "", err
	}
	defer backend.Close()

	name := engine.ReportFileName()
	if err := writeReport(dir, name, engine.ExportReport()); err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name), nil
}
