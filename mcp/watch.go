package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// debounceDelay batches bursts of filesystem events; a documentation run
// writes a whole set in quick succession.
const debounceDelay = 2 * time.Second

// Watch monitors the output root and drops the library's caches when
// document sets change, so a server started with --watch serves fresh
// content after a new run lands. Blocks until the context is cancelled.
func Watch(ctx context.Context, root string, library *Library, logger *log.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	// Set directories already on disk; new ones are picked up from
	// create events on the root.
	entries, _ := os.ReadDir(root)
	for _, entry := range entries {
		if entry.IsDir() {
			_ = watcher.Add(filepath.Join(root, entry.Name()))
		}
	}

	debounce := time.NewTimer(debounceDelay)
	debounce.Stop()
	dirty := false

	logger.Info("watching output root", "root", root)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}

			dirty = true
			debounce.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-debounce.C:
			if dirty {
				library.Invalidate()
				logger.Debug("served documents refreshed")
				dirty = false
			}
		}
	}
}
