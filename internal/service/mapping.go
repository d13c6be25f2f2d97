// Package service implements the mapping business logic on top of the store,
// the catalog source, and the URL generator.
package service

import (
	"context"
	"log/slog"

	"github.com/permalinkapp/permalink-server/internal/catalog"
	"github.com/permalinkapp/permalink-server/internal/config"
	"github.com/permalinkapp/permalink-server/internal/domain"
	"github.com/permalinkapp/permalink-server/internal/errors"
	"github.com/permalinkapp/permalink-server/internal/store"
	"github.com/permalinkapp/permalink-server/internal/urlgen"
)

// SettingsFunc returns the current URL settings snapshot. The watcher swaps
// snapshots at runtime, so every operation reads through this instead of
// holding a copy.
type SettingsFunc func() config.URLSettings

// MappingService manages friendly-URL mappings.
type MappingService struct {
	store    store.MappingStore
	source   catalog.Source
	settings SettingsFunc
	upstream config.UpstreamConfig
	logger   *slog.Logger
}

// NewMappingService creates a mapping service.
func NewMappingService(
	mappingStore store.MappingStore,
	source catalog.Source,
	settings SettingsFunc,
	upstream config.UpstreamConfig,
	log *slog.Logger,
) *MappingService {
	return &MappingService{
		store:    mappingStore,
		source:   source,
		settings: settings,
		upstream: upstream,
		logger:   log.With("service", "mapping"),
	}
}

// Settings returns the current URL settings snapshot.
func (s *MappingService) Settings() config.URLSettings {
	return s.settings()
}

// GenerateForItem creates a mapping for a catalog item. The operation is
// idempotent per item: if an active mapping for the item already exists it is
// returned unchanged, even when the item's name has since drifted and would
// slug differently today. A friendly URL already claimed by a different item
// is a conflict. The bool reports whether a new mapping was created.
func (s *MappingService) GenerateForItem(ctx context.Context, item domain.CatalogItem) (*domain.Mapping, bool, error) {
	if existing, err := s.store.FindByItemID(ctx, item.ID); err == nil {
		if want, ok := urlgen.FriendlyURL(item, s.settings()); ok && want != existing.FriendlyURL {
			s.logger.Debug("keeping established mapping for renamed item",
				"itemId", item.ID,
				"friendlyUrl", existing.FriendlyURL,
				"wouldBe", want)
		}
		return existing, false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, false, errors.Storage("failed to check existing mapping").WithCause(err)
	}

	mapping, ok, err := urlgen.NewMapping(item, s.settings(), s.upstream)
	if err != nil {
		return nil, false, errors.Internal("failed to generate mapping ID").WithCause(err)
	}
	if !ok {
		return nil, false, errors.Unsupportedf("no friendly URL template applies to item %s (%s)", item.ID, item.Kind)
	}

	if err := s.store.Insert(ctx, mapping); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Either a concurrent generate for the same item won, or a
			// different item already claimed the URL.
			if existing, findErr := s.store.FindByItemID(ctx, item.ID); findErr == nil {
				return existing, false, nil
			}
			return nil, false, errors.AlreadyExistsf("friendly URL %s is already mapped", mapping.FriendlyURL)
		}
		return nil, false, errors.Storage("failed to store mapping").WithCause(err)
	}

	s.logger.Info("mapping created",
		"mappingId", mapping.ID,
		"itemId", mapping.ItemID,
		"friendlyUrl", mapping.FriendlyURL)

	return mapping, true, nil
}

// GenerateByItemID fetches the item from the catalog and creates a mapping
// for it.
func (s *MappingService) GenerateByItemID(ctx context.Context, itemID string) (*domain.Mapping, bool, error) {
	item, err := s.source.Item(ctx, itemID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, false, errors.NotFoundf("catalog item %s not found", itemID)
		}
		return nil, false, errors.Internal("failed to fetch catalog item").WithCause(err)
	}

	return s.GenerateForItem(ctx, item)
}

// Resolve looks up the active mapping for a friendly URL path and records the
// access. Stat updates are best effort; a failed counter write never fails
// the lookup.
func (s *MappingService) Resolve(ctx context.Context, path string) (*domain.Mapping, error) {
	mapping, err := s.store.FindByFriendlyURL(ctx, path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("no mapping for %s", path)
		}
		return nil, errors.Storage("failed to resolve mapping").WithCause(err)
	}

	mapping.RecordAccess()
	if err := s.store.Update(ctx, mapping); err != nil {
		s.logger.Warn("failed to record mapping access",
			"mappingId", mapping.ID,
			"error", err)
	}

	return mapping, nil
}

// List returns all mappings, inactive ones included, ordered by creation time.
func (s *MappingService) List(ctx context.Context) ([]*domain.Mapping, error) {
	mappings, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, errors.Storage("failed to list mappings").WithCause(err)
	}
	return mappings, nil
}

// Delete deactivates a mapping. The friendly URL and item become available
// for new mappings; the record stays listable for audit. Unknown IDs are a
// no-op.
func (s *MappingService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return errors.Storage("failed to delete mapping").WithCause(err)
	}

	s.logger.Info("mapping deactivated", "mappingId", id)
	return nil
}
