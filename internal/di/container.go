// Package di provides dependency injection configuration for the permalink server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/permalinkapp/permalink-server/internal/catalog"
	"github.com/permalinkapp/permalink-server/internal/config"
	"github.com/permalinkapp/permalink-server/internal/di/providers"
	"github.com/permalinkapp/permalink-server/internal/logger"
	"github.com/permalinkapp/permalink-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSettingsWatcher)

	// Catalog layer
	do.Provide(injector, providers.ProvideCatalogClient)

	// Business services
	do.Provide(injector, providers.ProvideMappingService)

	// Workers
	do.Provide(injector, providers.ProvideSyncWorker)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SettingsWatcherHandle](injector)
	_ = do.MustInvoke[*catalog.Client](injector)
	_ = do.MustInvoke[*service.MappingService](injector)
	_ = do.MustInvoke[*providers.SyncWorkerHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
