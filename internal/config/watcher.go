package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce collapses the burst of events editors emit on save
const DefaultWatchDebounce = 250 * time.Millisecond

// Watch reloads the configuration whenever its file changes and hands the
// fresh Config to onChange. The parent directory is watched rather than the
// file so atomic replace-on-save is picked up. Watch returns once the watcher
// is running; it stops when ctx is cancelled.
func (c *Config) Watch(ctx context.Context, logger *slog.Logger, debounce time.Duration, onChange func(*Config)) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	logger.Info("config: watching for changes", "path", c.path, "debounce", debounce)

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		var timerC <-chan time.Time
		target := filepath.Clean(c.path)

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				logger.Debug("config: watcher stopped")
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				timerC = timer.C

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config: watcher error", "error", err)

			case <-timerC:
				timerC = nil
				fresh, err := Load(filepath.Base(c.path), c.path)
				if err != nil {
					logger.Error("config: reload failed, keeping previous configuration", "path", c.path, "error", err)
					continue
				}
				logger.Info("config: reloaded", "path", c.path)
				onChange(fresh)
			}
		}
	}()

	return nil
}
