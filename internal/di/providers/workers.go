package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/permalinkapp/permalink-server/internal/catalog"
	"github.com/permalinkapp/permalink-server/internal/logger"
	"github.com/permalinkapp/permalink-server/internal/service"
	"github.com/permalinkapp/permalink-server/internal/syncer"
)

// SyncWorkerHandle wraps the sync worker with Shutdownable.
type SyncWorkerHandle struct {
	*syncer.Worker
}

// Shutdown implements do.Shutdownable.
func (h *SyncWorkerHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideSyncWorker provides the catalog sync worker, already started.
func ProvideSyncWorker(i do.Injector) (*SyncWorkerHandle, error) {
	mappingService := do.MustInvoke[*service.MappingService](i)
	client := do.MustInvoke[*catalog.Client](i)
	watcherHandle := do.MustInvoke[*SettingsWatcherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	worker := syncer.NewWorker(mappingService, client, watcherHandle.Snapshot, log.Logger)
	worker.Start(context.Background())

	return &SyncWorkerHandle{Worker: worker}, nil
}
