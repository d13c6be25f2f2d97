package urlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permalinkapp/permalink-server/internal/config"
	"github.com/permalinkapp/permalink-server/internal/domain"
)

func allEnabled() config.URLSettings {
	return config.URLSettings{
		BasePath:     "/web",
		AutoGenerate: true,
		Movies:       true,
		Shows:        true,
		Seasons:      true,
		Episodes:     true,
		People:       true,
		Collections:  true,
		Genres:       true,
		Studios:      true,
	}
}

func TestFriendlyURL(t *testing.T) {
	settings := allEnabled()

	tests := []struct {
		name   string
		item   domain.CatalogItem
		want   string
		wantOK bool
	}{
		{
			name:   "movie with year",
			item:   domain.CatalogItem{ID: "1", Kind: domain.KindMovie, Name: "Inception", ProductionYear: 2010},
			want:   "/web/movie/inception-2010",
			wantOK: true,
		},
		{
			name:   "movie without year",
			item:   domain.CatalogItem{ID: "2", Kind: domain.KindMovie, Name: "Lost Reel"},
			want:   "/web/movie/lost-reel",
			wantOK: true,
		},
		{
			name:   "show",
			item:   domain.CatalogItem{ID: "3", Kind: domain.KindShow, Name: "The Wire", ProductionYear: 2002},
			want:   "/web/show/the-wire-2002",
			wantOK: true,
		},
		{
			name:   "season",
			item:   domain.CatalogItem{ID: "4", Kind: domain.KindSeason, ParentShow: "The Wire", SeasonIndex: 2},
			want:   "/web/show/the-wire/season-2",
			wantOK: true,
		},
		{
			name: "episode",
			item: domain.CatalogItem{
				ID: "5", Kind: domain.KindEpisode,
				ParentShow: "The Wire", SeasonIndex: 2, EpisodeIndex: 7,
			},
			want:   "/web/show/the-wire/season-2/episode-7",
			wantOK: true,
		},
		{
			name:   "person",
			item:   domain.CatalogItem{ID: "6", Kind: domain.KindPerson, Name: "Amélie Poulain"},
			want:   "/web/person/amelie-poulain",
			wantOK: true,
		},
		{
			name:   "collection",
			item:   domain.CatalogItem{ID: "7", Kind: domain.KindCollection, Name: "Marvel Movies"},
			want:   "/web/collection/marvel-movies",
			wantOK: true,
		},
		{
			name:   "genre",
			item:   domain.CatalogItem{ID: "8", Kind: domain.KindGenre, Name: "Science Fiction"},
			want:   "/web/genre/science-fiction",
			wantOK: true,
		},
		{
			name:   "studio",
			item:   domain.CatalogItem{ID: "9", Kind: domain.KindStudio, Name: "A24"},
			want:   "/web/studio/a24",
			wantOK: true,
		},
		{
			name:   "unsupported kind",
			item:   domain.CatalogItem{ID: "10", Kind: "playlist", Name: "My Mix"},
			wantOK: false,
		},
		{
			name:   "season without parent",
			item:   domain.CatalogItem{ID: "11", Kind: domain.KindSeason, SeasonIndex: 1},
			wantOK: false,
		},
		{
			name:   "episode without parent",
			item:   domain.CatalogItem{ID: "12", Kind: domain.KindEpisode, SeasonIndex: 1, EpisodeIndex: 1},
			wantOK: false,
		},
		{
			name:   "name slugs to nothing",
			item:   domain.CatalogItem{ID: "13", Kind: domain.KindMovie, Name: "!!!", ProductionYear: 2020},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FriendlyURL(tt.item, settings)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFriendlyURLKindToggles(t *testing.T) {
	settings := allEnabled()
	settings.People = false

	person := domain.CatalogItem{ID: "1", Kind: domain.KindPerson, Name: "Greta Gerwig"}
	_, ok := FriendlyURL(person, settings)
	assert.False(t, ok, "disabled kind must yield no URL regardless of name")

	// Other kinds stay unaffected.
	movie := domain.CatalogItem{ID: "2", Kind: domain.KindMovie, Name: "Lady Bird", ProductionYear: 2017}
	got, ok := FriendlyURL(movie, settings)
	assert.True(t, ok)
	assert.Equal(t, "/web/movie/lady-bird-2017", got)
}

func TestFriendlyURLBaseTrailingSlash(t *testing.T) {
	settings := allEnabled()
	settings.BasePath = "/web/"

	movie := domain.CatalogItem{ID: "1", Kind: domain.KindMovie, Name: "Heat", ProductionYear: 1995}
	got, ok := FriendlyURL(movie, settings)
	require.True(t, ok)
	assert.Equal(t, "/web/movie/heat-1995", got)
}

func TestOriginalURL(t *testing.T) {
	settings := allEnabled()
	upstream := config.UpstreamConfig{
		BaseURL:  "http://localhost:8096/",
		ServerID: "abc123",
	}
	item := domain.CatalogItem{ID: "item-9"}

	got := OriginalURL(item, settings, upstream)
	assert.Equal(t, "http://localhost:8096/web/index.html#!/details?id=item-9&serverId=abc123", got)

	settings.ForceHTTPS = true
	got = OriginalURL(item, settings, upstream)
	assert.Equal(t, "https://localhost:8096/web/index.html#!/details?id=item-9&serverId=abc123", got)

	upstream.ServerID = ""
	got = OriginalURL(item, settings, upstream)
	assert.Equal(t, "https://localhost:8096/web/index.html#!/details?id=item-9", got)
}

func TestNewMapping(t *testing.T) {
	settings := allEnabled()
	upstream := config.UpstreamConfig{BaseURL: "http://localhost:8096", ServerID: "srv"}
	item := domain.CatalogItem{ID: "item-1", Kind: domain.KindMovie, Name: "Inception", ProductionYear: 2010}

	m, ok, err := NewMapping(item, settings, upstream)
	require.NoError(t, err)
	require.True(t, ok)

	assert.NotEmpty(t, m.ID)
	assert.Contains(t, m.ID, "map-")
	assert.Equal(t, "item-1", m.ItemID)
	assert.Equal(t, domain.KindMovie, m.ItemKind)
	assert.Equal(t, "/web/movie/inception-2010", m.FriendlyURL)
	assert.Equal(t, "http://localhost:8096/web/index.html#!/details?id=item-1&serverId=srv", m.OriginalURL)
	assert.True(t, m.IsActive)
	assert.Zero(t, m.AccessCount)
	assert.Nil(t, m.LastAccessed)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)
}

func TestNewMappingUnsupported(t *testing.T) {
	settings := allEnabled()
	upstream := config.UpstreamConfig{BaseURL: "http://localhost:8096"}

	m, ok, err := NewMapping(domain.CatalogItem{ID: "x", Kind: "folder", Name: "Stuff"}, settings, upstream)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)
}
