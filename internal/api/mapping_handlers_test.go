package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permalinkapp/permalink-server/internal/domain"
)

func TestGenerateMapping(t *testing.T) {
	ts := setupTestServer(t, matrixItem())

	resp := ts.api.Post("/api/v1/mappings/generate", map[string]any{
		"item_id": "item-1",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var body GenerateMappingResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	assert.True(t, body.Created)
	assert.Equal(t, "item-1", body.Mapping.ItemID)
	assert.Equal(t, "/web/movie/the-matrix-1999", body.Mapping.FriendlyURL)
	assert.True(t, body.Mapping.IsActive)
}

func TestGenerateMappingIdempotent(t *testing.T) {
	ts := setupTestServer(t, matrixItem())

	first := ts.api.Post("/api/v1/mappings/generate", map[string]any{"item_id": "item-1"})
	require.Equal(t, http.StatusOK, first.Code)

	second := ts.api.Post("/api/v1/mappings/generate", map[string]any{"item_id": "item-1"})
	require.Equal(t, http.StatusOK, second.Code)

	var body GenerateMappingResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.False(t, body.Created)
}

func TestGenerateMappingUnknownItem(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/mappings/generate", map[string]any{"item_id": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGenerateMappingMissingItemID(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/mappings/generate", map[string]any{"item_id": ""})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGenerateMappingDisabledKind(t *testing.T) {
	ts := setupTestServer(t, matrixItem())
	ts.settings.Movies = false

	resp := ts.api.Post("/api/v1/mappings/generate", map[string]any{"item_id": "item-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestBulkGenerate(t *testing.T) {
	ts := setupTestServer(t,
		matrixItem(),
		domain.CatalogItem{ID: "item-2", Kind: domain.KindShow, Name: "Breaking Bad", ProductionYear: 2008},
	)

	resp := ts.api.Post("/api/v1/mappings/bulk", map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Processed int `json:"processed"`
		Generated int `json:"generated"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Processed)
	assert.Equal(t, 2, body.Generated)
}

func TestListMappings(t *testing.T) {
	ts := setupTestServer(t)
	ts.mustGenerate(t, matrixItem())

	resp := ts.api.Get("/api/v1/mappings")
	require.Equal(t, http.StatusOK, resp.Code)

	var body ListMappingsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	require.Len(t, body.Mappings, 1)
	assert.Equal(t, "/web/movie/the-matrix-1999", body.Mappings[0].FriendlyURL)
}

func TestDeleteMapping(t *testing.T) {
	ts := setupTestServer(t)
	mapping := ts.mustGenerate(t, matrixItem())

	resp := ts.api.Delete("/api/v1/mappings/" + mapping.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	// The mapping stays listable but inactive.
	list := ts.api.Get("/api/v1/mappings")
	var body ListMappingsResponse
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.False(t, body.Mappings[0].IsActive)
}

func TestGetSettings(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/settings")
	require.Equal(t, http.StatusOK, resp.Code)

	var body SettingsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "/web", body.BasePath)
	assert.True(t, body.AutoGenerate)
	assert.True(t, body.Movies)
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Contains(t, body.Components, "store")
}
