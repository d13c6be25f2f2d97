package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permalinkapp/permalink-server/internal/domain"
	"github.com/permalinkapp/permalink-server/internal/store"
)

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

func TestResolveRedirects(t *testing.T) {
	ts := setupTestServer(t)
	mapping := ts.mustGenerate(t, matrixItem())

	w := ts.get("/web/movie/the-matrix-1999")

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, mapping.OriginalURL, w.Header().Get("Location"))
}

func TestResolveCaseInsensitive(t *testing.T) {
	ts := setupTestServer(t)
	ts.mustGenerate(t, matrixItem())

	w := ts.get("/web/Movie/The-Matrix-1999")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
}

func TestResolveIgnoresQueryString(t *testing.T) {
	ts := setupTestServer(t)
	mapping := ts.mustGenerate(t, matrixItem())

	w := ts.get("/web/movie/the-matrix-1999?utm_source=share")

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, mapping.OriginalURL, w.Header().Get("Location"))
}

func TestResolveUnknownMapping(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.get("/web/movie/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveNonFriendlyPath(t *testing.T) {
	ts := setupTestServer(t)
	ts.mustGenerate(t, matrixItem())

	// Outside the base path.
	w := ts.get("/movie/the-matrix-1999")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Under the base but no kind prefix.
	w = ts.get("/web/playlists/road-trip")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// countingStore wraps a mapping store and counts friendly URL lookups.
type countingStore struct {
	store.MappingStore
	urlLookups int
}

func (s *countingStore) FindByFriendlyURL(ctx context.Context, url string) (*domain.Mapping, error) {
	s.urlLookups++
	return s.MappingStore.FindByFriendlyURL(ctx, url)
}

func TestResolveNonFriendlyPathSkipsStore(t *testing.T) {
	spy := &countingStore{MappingStore: openTestStore(t)}
	ts := setupTestServerWith(t, spy)
	ts.mustGenerate(t, matrixItem())

	// Paths that cannot be friendly URLs never reach the store.
	ts.get("/movie/the-matrix-1999")
	ts.get("/web/playlists/road-trip")
	assert.Equal(t, 0, spy.urlLookups)

	ts.get("/web/movie/the-matrix-1999")
	assert.Equal(t, 1, spy.urlLookups)
}

func TestResolveEpisodePath(t *testing.T) {
	ts := setupTestServer(t)
	ts.mustGenerate(t, domain.CatalogItem{
		ID:           "ep-1",
		Kind:         domain.KindEpisode,
		Name:         "Pilot",
		ParentShow:   "Breaking Bad",
		SeasonIndex:  1,
		EpisodeIndex: 1,
	})

	w := ts.get("/web/show/breaking-bad/season-1/episode-1")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
}

func TestResolveDeactivatedMapping(t *testing.T) {
	ts := setupTestServer(t)
	mapping := ts.mustGenerate(t, matrixItem())

	resp := ts.api.Delete("/api/v1/mappings/" + mapping.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	w := ts.get("/web/movie/the-matrix-1999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveRecordsAccessStats(t *testing.T) {
	ts := setupTestServer(t)
	ts.mustGenerate(t, matrixItem())

	ts.get("/web/movie/the-matrix-1999")
	ts.get("/web/movie/the-matrix-1999")

	mappings, err := ts.service.List(t.Context())
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, int64(2), mappings[0].AccessCount)
	assert.NotNil(t, mappings[0].LastAccessed)
}

func TestResolvePostIsNotFound(t *testing.T) {
	ts := setupTestServer(t)
	ts.mustGenerate(t, matrixItem())

	req := httptest.NewRequest(http.MethodPost, "/web/movie/the-matrix-1999", nil)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
