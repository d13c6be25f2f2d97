package providers

import (
	"github.com/samber/do/v2"

	"github.com/permalinkapp/permalink-server/internal/catalog"
	"github.com/permalinkapp/permalink-server/internal/config"
	"github.com/permalinkapp/permalink-server/internal/logger"
)

// ProvideCatalogClient provides the HTTP client for the host's catalog API.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.NewClient(cfg.Upstream, log.Logger), nil
}
