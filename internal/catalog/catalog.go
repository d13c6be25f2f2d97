// Package catalog reads the host media server's content catalog and carries
// its change notifications. The catalog itself is owned by the host; this
// package only consumes it.
package catalog

import (
	"context"

	"github.com/permalinkapp/permalink-server/internal/domain"
)

// EventType represents the kind of catalog change notification.
type EventType int

const (
	// EventAdded is emitted when the host reports a new catalog item.
	EventAdded EventType = iota
	// EventUpdated is emitted when an existing item's metadata changes.
	EventUpdated
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// Event is a catalog change notification.
type Event struct {
	Type EventType
	Item domain.CatalogItem
}

// Source supplies catalog items. Implementations must be safe for
// concurrent use; the sync worker reads items from event handlers and from
// the scan loop at the same time.
type Source interface {
	// Item fetches a single catalog item by ID.
	// Returns ErrNotFound if the host doesn't know the item.
	Item(ctx context.Context, itemID string) (domain.CatalogItem, error)

	// Walk visits every item in the catalog's root containers and all
	// their descendants. Items of kinds the walker doesn't recognize are
	// still visited with Kind set to "". A non-nil error from fn aborts
	// the walk and is returned as-is.
	Walk(ctx context.Context, fn func(domain.CatalogItem) error) error
}
