package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/permalinkapp/permalink-server/internal/config"
	"github.com/permalinkapp/permalink-server/internal/logger"
	"github.com/permalinkapp/permalink-server/internal/store"
	"github.com/permalinkapp/permalink-server/internal/store/badger"
	"github.com/permalinkapp/permalink-server/internal/store/sqlite"
)

// StoreHandle wraps the mapping store with shutdown capability.
type StoreHandle struct {
	store.MappingStore
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the mapping store selected by configuration.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	var (
		st  store.MappingStore
		err error
	)
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		st, err = sqlite.Open(filepath.Join(cfg.Storage.DataPath, "mappings.db"), log.Logger)
	case config.DriverBadger:
		st, err = badger.Open(filepath.Join(cfg.Storage.DataPath, "badger"), log.Logger)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Mapping store initialized",
		"driver", cfg.Storage.Driver,
		"path", cfg.Storage.DataPath,
	)

	return &StoreHandle{MappingStore: st}, nil
}

// SettingsWatcherHandle wraps the settings watcher with Shutdownable.
type SettingsWatcherHandle struct {
	*config.SettingsWatcher
}

// Shutdown implements do.Shutdownable.
func (h *SettingsWatcherHandle) Shutdown() error {
	return h.Stop()
}

// ProvideSettingsWatcher provides the live URL settings snapshot source.
func ProvideSettingsWatcher(i do.Injector) (*SettingsWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	watcher := config.NewSettingsWatcher(cfg.Storage.SettingsPath, cfg.URLs, log.Logger)
	if err := watcher.Start(); err != nil {
		return nil, err
	}

	return &SettingsWatcherHandle{SettingsWatcher: watcher}, nil
}
