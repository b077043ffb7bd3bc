package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/acheron/internal/config"
	"github.com/aretw0/acheron/internal/persistence"
	"github.com/aretw0/acheron/internal/presentation/tui"
	"github.com/aretw0/acheron/pkg/domain"
)

// ShowSession prints the saved record without loading a scenario.
// With asJSON the raw record is written as indented JSON.
func ShowSession(ctx context.Context, cfg config.Config, logger *slog.Logger, w io.Writer, asJSON bool) error {
	backend, err := OpenBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	rec, err := persistence.NewPersister(backend.Manager, cfg.StateKey).Load(ctx)
	if errors.Is(err, domain.ErrRecordNotFound) {
		fmt.Fprintf(w, "No saved session under %q.\n", cfg.StateKey)
		return nil
	}
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	st := rec.State
	mission := rec.MissionID()
	if mission == "" {
		mission = "(default)"
	}
	fmt.Fprintf(w, "Key:      %s\n", cfg.StateKey)
	fmt.Fprintf(w, "Mission:  %s\n", mission)
	fmt.Fprintf(w, "Node:     %s\n", st.CurrentNodeID)
	fmt.Fprintf(w, "Status:   %s (%s)\n", st.Status, tui.StatusLabel(st.Status))
	fmt.Fprintf(w, "Depth:    %d\n", st.BranchDepth)
	fmt.Fprintf(w, "Attempts: %d\n", st.Attempts)
	fmt.Fprintf(w, "Hints:    %d used, %d left\n", st.HintsUsed, st.HintsRemaining)
	return nil
}

// ClearSession deletes the saved record.
func ClearSession(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	backend, err := OpenBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	return persistence.NewPersister(backend.Manager, cfg.StateKey).Clear(ctx)
}

// ListSessions returns every key held by the configured store.
func ListSessions(ctx context.Context, cfg config.Config, logger *slog.Logger) ([]string, error) {
	backend, err := OpenBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer backend.Close()
	return backend.Manager.List(ctx)
}
