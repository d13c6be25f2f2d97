// Package urlgen builds friendly URLs and mapping records for catalog items.
// Builders are pure; persistence is the caller's responsibility.
package urlgen

import (
	"fmt"
	"strings"

	"github.com/permalinkapp/permalink-server/internal/config"
	"github.com/permalinkapp/permalink-server/internal/domain"
	"github.com/permalinkapp/permalink-server/internal/id"
	"github.com/permalinkapp/permalink-server/internal/slug"
)

// FriendlyURL builds the canonical friendly URL for a catalog item under the
// given settings snapshot. The second return value is false when the item
// cannot get a URL: unsupported kind, kind toggled off, season/episode with
// an unresolved parent show, or a name that slugs to nothing.
func FriendlyURL(item domain.CatalogItem, settings config.URLSettings) (string, bool) {
	if !item.Kind.Supported() || !settings.KindEnabled(item.Kind) {
		return "", false
	}

	base := settings.Base()

	switch item.Kind {
	case domain.KindMovie, domain.KindShow:
		s := slug.Normalize(item.Name)
		if s == "" {
			return "", false
		}
		if item.ProductionYear > 0 {
			s = fmt.Sprintf("%s-%d", s, item.ProductionYear)
		}
		return fmt.Sprintf("%s/%s/%s", base, item.Kind, s), true

	case domain.KindSeason:
		parent := slug.Normalize(item.ParentShow)
		if parent == "" {
			return "", false
		}
		return fmt.Sprintf("%s/show/%s/season-%d", base, parent, item.SeasonIndex), true

	case domain.KindEpisode:
		parent := slug.Normalize(item.ParentShow)
		if parent == "" {
			return "", false
		}
		return fmt.Sprintf("%s/show/%s/season-%d/episode-%d",
			base, parent, item.SeasonIndex, item.EpisodeIndex), true

	case domain.KindPerson, domain.KindCollection, domain.KindGenre, domain.KindStudio:
		s := slug.Normalize(item.Name)
		if s == "" {
			return "", false
		}
		return fmt.Sprintf("%s/%s/%s", base, item.Kind, s), true

	default:
		return "", false
	}
}

// OriginalURL synthesizes the host's item-detail URL the friendly URL will
// redirect to. With ForceHTTPS set, a plain http upstream is rewritten.
func OriginalURL(item domain.CatalogItem, settings config.URLSettings, upstream config.UpstreamConfig) string {
	base := strings.TrimRight(upstream.BaseURL, "/")
	if settings.ForceHTTPS {
		base = strings.Replace(base, "http://", "https://", 1)
	}

	target := fmt.Sprintf("%s/web/index.html#!/details?id=%s", base, item.ID)
	if upstream.ServerID != "" {
		target += "&serverId=" + upstream.ServerID
	}
	return target
}

// NewMapping builds a complete mapping record for a catalog item. The bool
// mirrors FriendlyURL: false means the item has no applicable URL template.
// The error is only non-nil when ID generation fails.
func NewMapping(item domain.CatalogItem, settings config.URLSettings, upstream config.UpstreamConfig) (*domain.Mapping, bool, error) {
	friendly, ok := FriendlyURL(item, settings)
	if !ok {
		return nil, false, nil
	}

	mappingID, err := id.Generate("map")
	if err != nil {
		return nil, false, err
	}

	m := &domain.Mapping{
		ID:          mappingID,
		ItemID:      item.ID,
		ItemKind:    item.Kind,
		FriendlyURL: friendly,
		OriginalURL: OriginalURL(item, settings, upstream),
		IsActive:    true,
		AccessCount: 0,
	}
	m.InitTimestamps()
	return m, true, nil
}
