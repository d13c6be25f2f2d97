// Package store defines the mapping store contract shared by the SQLite and
// Badger backends.
package store

import (
	"context"

	"github.com/permalinkapp/permalink-server/internal/domain"
)

// MappingStore persists friendly-URL mappings. Implementations must be safe
// for concurrent use, and Insert must be atomic with respect to the
// uniqueness invariants: at most one active mapping per friendly URL
// (case-insensitive) and at most one active mapping per item ID.
type MappingStore interface {
	// FindByFriendlyURL returns the active mapping for the given friendly
	// URL, matched case-insensitively. Returns ErrNotFound when absent.
	FindByFriendlyURL(ctx context.Context, url string) (*domain.Mapping, error)

	// FindByItemID returns the active mapping for the given item.
	// Returns ErrNotFound when absent.
	FindByItemID(ctx context.Context, itemID string) (*domain.Mapping, error)

	// ListAll returns every mapping, inactive ones included, ordered by
	// creation time.
	ListAll(ctx context.Context) ([]*domain.Mapping, error)

	// Insert stores a new mapping. Returns ErrAlreadyExists if an active
	// mapping with the same friendly URL or item ID exists. The existence
	// check and the write are a single atomic step.
	Insert(ctx context.Context, m *domain.Mapping) error

	// Update overwrites the mapping with the same ID and refreshes its
	// UpdatedAt. Returns ErrNotFound if the ID is absent.
	Update(ctx context.Context, m *domain.Mapping) error

	// Delete deactivates the mapping with the given ID. Deactivated
	// mappings disappear from lookups but stay listable for audit.
	// Absent IDs are a no-op.
	Delete(ctx context.Context, id string) error

	// Close releases the underlying storage.
	Close() error
}
