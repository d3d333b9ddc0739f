package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events a single save produces
// (truncate + write, or create + rename) into one reload.
const reloadDelay = 100 * time.Millisecond

// Watch reloads path whenever it changes and hands each valid Config to
// onChange. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that
// rename a temp file over path keep triggering reloads. A reload that fails
// to load or validate is logged and skipped; onChange only sees good configs.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}

	slog.Info("config: watching for changes", "path", path, "dir", dir)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if triggersReload(event, path) {
				pending = time.After(reloadDelay)
			}

		case <-pending:
			pending = nil
			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", path, "err", err)
				continue
			}
			slog.Info("config: reloaded", "path", path)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// triggersReload reports whether event touches the watched config file.
// Kubernetes ConfigMap volumes swap a "..data" symlink instead of writing
// the file, so changes to that entry count too.
func triggersReload(event fsnotify.Event, path string) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == path || filepath.Base(name) == "..data"
}
