package providers

import (
	"github.com/samber/do/v2"

	"github.com/permalinkapp/permalink-server/internal/catalog"
	"github.com/permalinkapp/permalink-server/internal/config"
	"github.com/permalinkapp/permalink-server/internal/logger"
	"github.com/permalinkapp/permalink-server/internal/service"
)

// ProvideMappingService provides the mapping service.
func ProvideMappingService(i do.Injector) (*service.MappingService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	watcherHandle := do.MustInvoke[*SettingsWatcherHandle](i)
	client := do.MustInvoke[*catalog.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	var source catalog.Source = client

	return service.NewMappingService(
		storeHandle.MappingStore,
		source,
		watcherHandle.Snapshot,
		cfg.Upstream,
		log.Logger,
	), nil
}
