package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/acheron"
	"github.com/aretw0/acheron/internal/loader"
	"github.com/fsnotify/fsnotify"
)

// reloadDelay lets editors finish writing before the file is parsed.
const reloadDelay = 100 * time.Millisecond

// WatchScenario reloads the scenario into engine whenever the file at path
// changes, until ctx is done. The saved session is resumed after every reload,
// so an edit keeps the player where they were when the node still exists.
// A document that fails to load leaves the running scenario in place.
func WatchScenario(ctx context.Context, path string, engine *acheron.Engine, logger *slog.Logger, w io.Writer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watching scenario", "path", abs)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			pending = time.After(reloadDelay)
		case <-pending:
			pending = nil
			reload(ctx, abs, engine, logger, w)
		}
	}
}

func reload(ctx context.Context, path string, engine *acheron.Engine, logger *slog.Logger, w io.Writer) {
	res, err := loader.LoadFile(path)
	if err != nil {
		logger.Error("scenario reload failed", "path", path, "err", err)
		printSystemMessage(w, "Reload failed: %v", err)
		return
	}
	if err := engine.Load(ctx, res); err != nil {
		logger.Error("scenario reload failed", "path", path, "err", err)
		printSystemMessage(w, "Reload failed: %v", err)
		return
	}
	node := ""
	if st := engine.State(); st != nil {
		node = st.CurrentNodeID
	}
	logger.Info("scenario reloaded", "path", path, "node_id", node)
	printSystemMessage(w, "Change detected. Resuming at '%s' node (v to view).", node)
}
