package preset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the preset at path whenever it is written or replaced and
// passes each successfully parsed scene to fn. Parse failures are logged and
// the previous scene stays in place. Watch blocks until ctx is done.
//
// The containing directory is watched rather than the file itself so that
// editors which save by renaming a temporary file are picked up.
func Watch(ctx context.Context, path string, fn func(*Scene)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != abs || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			// A rename reports the old name on some platforms and the new
			// one on others; only reload if something is there now.
			if _, err := os.Stat(abs); err != nil {
				slog.Debug("preset gone", "path", abs, "op", e.Op)
				continue
			}
			sc, err := Load(abs)
			if err != nil {
				slog.Warn("preset reload failed", "path", abs, "error", err)
				continue
			}
			slog.Info("preset reloaded", "path", abs, "name", sc.Name, "objects", len(sc.Objects))
			fn(sc)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("preset watcher", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
