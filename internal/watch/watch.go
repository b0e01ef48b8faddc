// Package watch reloads profile configuration files when they change on disk.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay coalesces the burst of events an editor produces on save.
const DefaultDelay = 200 * time.Millisecond

// Callback receives the base names that changed since the last call.
type Callback func(changed []string)

// Watch observes the profile directory dir for changes to the given base
// names until ctx is cancelled. Events are debounced by delay. A new
// directory received on retarget replaces the watched one; an empty string
// pauses watching.
func Watch(ctx context.Context, dir string, retarget <-chan string, names []string, delay time.Duration, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if delay <= 0 {
		delay = DefaultDelay
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	current := ""
	target := func(next string) {
		if next == current {
			return
		}
		if current != "" {
			_ = w.Remove(current)
		}
		current = ""
		if next == "" {
			return
		}
		if addErr := w.Add(next); addErr != nil {
			logger.Warn("watcher: add dir failed", slog.String("path", next), slog.String("error", addErr.Error()))
			return
		}
		current = next
		logger.Info("watcher: started", slog.String("root", next))
	}
	target(dir)

	changed := make(map[string]struct{})
	var debounce *time.Timer
	var debounceCh <-chan time.Time
	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(delay)
			debounceCh = debounce.C
		} else {
			debounce.Reset(delay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case next := <-retarget:
			target(next)
			clear(changed)

		case <-debounceCh:
			if len(changed) == 0 {
				continue
			}
			list := make([]string, 0, len(changed))
			for n := range changed {
				list = append(list, n)
			}
			sort.Strings(list)
			clear(changed)
			logger.Debug("watcher: files changed", slog.Any("files", list))
			cb(list)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if _, ok := wanted[name]; !ok {
				continue
			}
			changed[name] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
