package catalog

import (
	"context"
	"sync"

	"github.com/permalinkapp/permalink-server/internal/domain"
)

// FakeSource is an in-memory Source for tests.
type FakeSource struct {
	mu    sync.Mutex
	items []domain.CatalogItem

	// ItemErr, when set, is returned by every Item call.
	ItemErr error
	// WalkErr, when set, is returned by Walk before visiting anything.
	WalkErr error
}

// NewFakeSource creates a fake source seeded with the given items.
func NewFakeSource(items ...domain.CatalogItem) *FakeSource {
	return &FakeSource{items: items}
}

// Add appends items to the fake catalog.
func (f *FakeSource) Add(items ...domain.CatalogItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, items...)
}

func (f *FakeSource) Item(ctx context.Context, itemID string) (domain.CatalogItem, error) {
	if f.ItemErr != nil {
		return domain.CatalogItem{}, f.ItemErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return domain.CatalogItem{}, ErrNotFound
}

func (f *FakeSource) Walk(ctx context.Context, fn func(domain.CatalogItem) error) error {
	if f.WalkErr != nil {
		return f.WalkErr
	}

	f.mu.Lock()
	items := make([]domain.CatalogItem, len(f.items))
	copy(items, f.items)
	f.mu.Unlock()

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}
