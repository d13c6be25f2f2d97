// Package badger provides the file-backed mapping store: a durable
// key-indexed Badger database with application-level index keys for the
// friendly URL and item ID lookups.
//
// Badger transactions are atomic, but the uniqueness check and the insert
// span multiple keys, so every read-modify-write cycle runs inside a
// single-writer critical section.
package badger

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/permalinkapp/permalink-server/internal/domain"
	"github.com/permalinkapp/permalink-server/internal/store"
)

// Key prefixes. map: holds the full record for every mapping; url: and
// item: are lookup indexes maintained for active mappings only.
const (
	prefixMapping = "map:"
	prefixURL     = "url:"
	prefixItem    = "item:"
)

// Store provides Badger-backed persistence for URL mappings.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// mu serializes all writes so check-then-insert cannot interleave.
	mu sync.Mutex
}

// Open creates a new Badger store in the given directory.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func mappingKey(id string) []byte {
	return []byte(prefixMapping + id)
}

// urlKey lowercases the friendly URL so lookups are case-insensitive.
func urlKey(friendlyURL string) []byte {
	return []byte(prefixURL + strings.ToLower(friendlyURL))
}

func itemKey(itemID string) []byte {
	return []byte(prefixItem + itemID)
}

// getMapping reads and decodes a mapping record inside a transaction.
func getMapping(txn *badger.Txn, key []byte) (*domain.Mapping, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	var m domain.Mapping
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// getByIndex follows an index key (url: or item:) to its mapping record.
func (s *Store) getByIndex(key []byte) (*domain.Mapping, error) {
	var m *domain.Mapping
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}
		m, err = getMapping(txn, mappingKey(id))
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, store.ErrStorage.WithCause(err)
	}
	if !m.IsActive {
		// A stale index entry should never survive a write, but never
		// serve an inactive mapping from a lookup.
		return nil, store.ErrNotFound
	}
	return m, nil
}

// FindByFriendlyURL returns the active mapping for a friendly URL,
// matched case-insensitively.
func (s *Store) FindByFriendlyURL(_ context.Context, url string) (*domain.Mapping, error) {
	return s.getByIndex(urlKey(url))
}

// FindByItemID returns the active mapping for a catalog item.
func (s *Store) FindByItemID(_ context.Context, itemID string) (*domain.Mapping, error) {
	return s.getByIndex(itemKey(itemID))
}

// ListAll returns every mapping, inactive ones included, ordered by
// creation time.
func (s *Store) ListAll(_ context.Context) ([]*domain.Mapping, error) {
	var mappings []*domain.Mapping
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixMapping)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var m domain.Mapping
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				return err
			}
			mappings = append(mappings, &m)
		}
		return nil
	})
	if err != nil {
		return nil, store.ErrStorage.WithCause(err)
	}

	sort.Slice(mappings, func(i, j int) bool {
		if mappings[i].CreatedAt.Equal(mappings[j].CreatedAt) {
			return mappings[i].ID < mappings[j].ID
		}
		return mappings[i].CreatedAt.Before(mappings[j].CreatedAt)
	})
	return mappings, nil
}

// Insert stores a new mapping. The uniqueness check and the three writes
// (record plus both indexes) happen under the writer lock, so concurrent
// generation of the same item or slug cannot produce duplicates.
func (s *Store) Insert(_ context.Context, m *domain.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		if m.IsActive {
			if err := activeIndexExists(txn, urlKey(m.FriendlyURL)); err != nil {
				return err
			}
			if err := activeIndexExists(txn, itemKey(m.ItemID)); err != nil {
				return err
			}
		}

		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := txn.Set(mappingKey(m.ID), data); err != nil {
			return err
		}
		if m.IsActive {
			if err := txn.Set(urlKey(m.FriendlyURL), []byte(m.ID)); err != nil {
				return err
			}
			if err := txn.Set(itemKey(m.ItemID), []byte(m.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return store.ErrAlreadyExists
		}
		return store.ErrStorage.WithCause(err)
	}
	return nil
}

// activeIndexExists returns store.ErrAlreadyExists when the index key is
// present, i.e. an active mapping already claims that URL or item.
func activeIndexExists(txn *badger.Txn, key []byte) error {
	_, err := txn.Get(key)
	switch {
	case err == nil:
		return store.ErrAlreadyExists
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil
	default:
		return err
	}
}

// Update overwrites the mapping with the same ID, refreshes UpdatedAt, and
// keeps the lookup indexes consistent with the record's active flag.
func (s *Store) Update(_ context.Context, m *domain.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.Touch()

	err := s.db.Update(func(txn *badger.Txn) error {
		old, err := getMapping(txn, mappingKey(m.ID))
		if err != nil {
			return err
		}

		// Reactivation must re-claim the indexes like a fresh insert; the
		// URL or item may have been taken since the mapping went inactive.
		if !old.IsActive && m.IsActive {
			if err := activeIndexExists(txn, urlKey(m.FriendlyURL)); err != nil {
				return err
			}
			if err := activeIndexExists(txn, itemKey(m.ItemID)); err != nil {
				return err
			}
		}

		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := txn.Set(mappingKey(m.ID), data); err != nil {
			return err
		}

		// Drop index entries the old record held but the new one doesn't.
		if old.IsActive && !m.IsActive {
			if err := txn.Delete(urlKey(old.FriendlyURL)); err != nil {
				return err
			}
			if err := txn.Delete(itemKey(old.ItemID)); err != nil {
				return err
			}
		}
		if m.IsActive {
			if err := txn.Set(urlKey(m.FriendlyURL), []byte(m.ID)); err != nil {
				return err
			}
			if err := txn.Set(itemKey(m.ItemID), []byte(m.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			return store.ErrAlreadyExists
		}
		return store.ErrStorage.WithCause(err)
	}
	return nil
}

// Delete deactivates a mapping and removes its lookup indexes.
// Absent IDs are a no-op.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		m, err := getMapping(txn, mappingKey(id))
		if err != nil {
			return err
		}
		if !m.IsActive {
			return nil
		}

		m.Deactivate()
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := txn.Set(mappingKey(id), data); err != nil {
			return err
		}
		if err := txn.Delete(urlKey(m.FriendlyURL)); err != nil {
			return err
		}
		return txn.Delete(itemKey(m.ItemID))
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return store.ErrStorage.WithCause(err)
	}
	return nil
}
