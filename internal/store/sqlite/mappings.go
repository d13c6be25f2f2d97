package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/permalinkapp/permalink-server/internal/domain"
	"github.com/permalinkapp/permalink-server/internal/store"
)

// mappingColumns is the ordered list of columns selected in mapping queries.
// Must match the scan order in scanMapping.
const mappingColumns = `id, item_id, item_kind, friendly_url, original_url,
	created_at, updated_at, is_active, access_count, last_accessed`

// scanMapping scans a sql.Row (or sql.Rows via its Scan method) into a domain.Mapping.
func scanMapping(scanner interface{ Scan(dest ...any) error }) (*domain.Mapping, error) {
	var m domain.Mapping

	var (
		kind         string
		createdAt    string
		updatedAt    string
		isActive     int
		lastAccessed sql.NullString
	)

	err := scanner.Scan(
		&m.ID,
		&m.ItemID,
		&kind,
		&m.FriendlyURL,
		&m.OriginalURL,
		&createdAt,
		&updatedAt,
		&isActive,
		&m.AccessCount,
		&lastAccessed,
	)
	if err != nil {
		return nil, err
	}

	m.ItemKind = domain.ItemKind(kind)
	m.IsActive = isActive != 0

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	m.LastAccessed, err = parseNullableTime(lastAccessed)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// FindByFriendlyURL returns the active mapping for a friendly URL. The
// friendly_url column is COLLATE NOCASE, so matching is case-insensitive.
func (s *Store) FindByFriendlyURL(ctx context.Context, url string) (*domain.Mapping, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mappingColumns+`
		FROM mappings
		WHERE friendly_url = ? AND is_active = 1`,
		url,
	)

	m, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.ErrStorage.WithCause(err)
	}
	return m, nil
}

// FindByItemID returns the active mapping for a catalog item.
func (s *Store) FindByItemID(ctx context.Context, itemID string) (*domain.Mapping, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mappingColumns+`
		FROM mappings
		WHERE item_id = ? AND is_active = 1`,
		itemID,
	)

	m, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, store.ErrStorage.WithCause(err)
	}
	return m, nil
}

// ListAll returns every mapping, inactive ones included.
func (s *Store) ListAll(ctx context.Context) ([]*domain.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mappingColumns+`
		FROM mappings
		ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, store.ErrStorage.WithCause(err)
	}
	defer rows.Close()

	var mappings []*domain.Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, store.ErrStorage.WithCause(err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, store.ErrStorage.WithCause(err)
	}
	return mappings, nil
}

// Insert stores a new mapping. The partial unique indexes on active
// friendly_url and item_id make the check-then-insert a single atomic
// statement; a constraint rejection becomes store.ErrAlreadyExists.
func (s *Store) Insert(ctx context.Context, m *domain.Mapping) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mappings (
			id, item_id, item_kind, friendly_url, original_url,
			created_at, updated_at, is_active, access_count, last_accessed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.ItemID,
		string(m.ItemKind),
		m.FriendlyURL,
		m.OriginalURL,
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
		boolToInt(m.IsActive),
		m.AccessCount,
		nullTime(m.LastAccessed),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return store.ErrStorage.WithCause(err)
	}
	return nil
}

// Update overwrites the mapping with the same ID and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, m *domain.Mapping) error {
	m.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE mappings SET
			item_id = ?, item_kind = ?, friendly_url = ?, original_url = ?,
			updated_at = ?, is_active = ?, access_count = ?, last_accessed = ?
		WHERE id = ?`,
		m.ItemID,
		string(m.ItemKind),
		m.FriendlyURL,
		m.OriginalURL,
		formatTime(m.UpdatedAt),
		boolToInt(m.IsActive),
		m.AccessCount,
		nullTime(m.LastAccessed),
		m.ID,
	)
	if err != nil {
		return store.ErrStorage.WithCause(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return store.ErrStorage.WithCause(err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete deactivates a mapping. Absent IDs are a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE mappings SET is_active = 0, updated_at = ?
		WHERE id = ? AND is_active = 1`,
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return store.ErrStorage.WithCause(err)
	}
	return nil
}
