package config

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// SettingsWatcher serves the current URLSettings snapshot and, when a
// settings file is configured, watches it and swaps the snapshot on change.
// This stands in for the host pushing plugin configuration updates at
// runtime: toggling a kind off takes effect without a restart.
//
// Snapshot is safe for concurrent use with Start/Stop.
type SettingsWatcher struct {
	path     string
	logger   *slog.Logger
	current  atomic.Pointer[URLSettings]
	defaults URLSettings

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewSettingsWatcher creates a watcher serving initial as the first snapshot.
// An empty path disables file watching; the watcher then just serves initial.
func NewSettingsWatcher(path string, initial URLSettings, logger *slog.Logger) *SettingsWatcher {
	w := &SettingsWatcher{
		path:     path,
		logger:   logger,
		defaults: initial,
	}
	w.current.Store(&initial)
	return w
}

// Snapshot returns the current URL settings.
func (w *SettingsWatcher) Snapshot() URLSettings {
	return *w.current.Load()
}

// Start loads the settings file if present and begins watching its directory
// for changes. Watching the directory instead of the file survives the
// rename-and-replace write pattern editors and the host use.
func (w *SettingsWatcher) Start() error {
	if w.path == "" {
		return nil
	}

	// Initial load; a missing file is fine, defaults stay in effect.
	if err := w.reload(); err != nil && !os.IsNotExist(err) {
		w.logger.Warn("settings file unreadable, using defaults", "path", w.path, "error", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watch settings dir: %w", err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.done = make(chan struct{})
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(fw)

	w.logger.Info("watching settings file", "path", w.path)
	return nil
}

// Stop ends the watch loop. Safe to call when Start was never called.
func (w *SettingsWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	close(w.done)
	err := w.watcher.Close()
	w.watcher = nil
	w.wg.Wait()
	return err
}

func (w *SettingsWatcher) loop(fw *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := w.reload(); err != nil {
				// Keep the previous snapshot on a bad reload.
				w.logger.Warn("settings reload failed", "path", w.path, "error", err)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("settings watcher error", "error", err)
		}
	}
}

// reload reads the settings file over a copy of the defaults and swaps the
// snapshot. Fields absent from the file keep their default values.
func (w *SettingsWatcher) reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}

	next := w.defaults
	if err := json.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("parse settings file: %w", err)
	}

	w.current.Store(&next)
	w.logger.Info("settings reloaded",
		"base_path", next.BasePath,
		"auto_generate", next.AutoGenerate,
	)
	return nil
}
