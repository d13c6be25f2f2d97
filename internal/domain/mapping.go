// Package domain defines the core entities of the permalink server.
package domain

import "time"

// Mapping associates a friendly URL with the opaque item-detail URL it
// redirects to, plus tracking metadata. It is the only persisted entity.
type Mapping struct {
	ID           string     `json:"id"`
	ItemID       string     `json:"item_id"`
	ItemKind     ItemKind   `json:"item_kind"`
	FriendlyURL  string     `json:"friendly_url"`
	OriginalURL  string     `json:"original_url"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	IsActive     bool       `json:"is_active"`
	AccessCount  int64      `json:"access_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new mapping.
func (m *Mapping) InitTimestamps() {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the mapping changes.
func (m *Mapping) Touch() {
	m.UpdatedAt = time.Now()
}

// RecordAccess bumps the access counter and stamps LastAccessed.
// AccessCount never decreases; LastAccessed moves only alongside a bump.
func (m *Mapping) RecordAccess() {
	now := time.Now()
	m.AccessCount++
	m.LastAccessed = &now
	m.UpdatedAt = now
}

// Deactivate soft-deletes the mapping. Inactive mappings are excluded from
// lookups but retained for audit.
func (m *Mapping) Deactivate() {
	m.IsActive = false
	m.Touch()
}
