package api

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/permalinkapp/permalink-server/internal/catalog"
	"github.com/permalinkapp/permalink-server/internal/config"
	"github.com/permalinkapp/permalink-server/internal/domain"
	"github.com/permalinkapp/permalink-server/internal/service"
	"github.com/permalinkapp/permalink-server/internal/store"
	"github.com/permalinkapp/permalink-server/internal/store/sqlite"
	"github.com/permalinkapp/permalink-server/internal/syncer"
)

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api      humatest.TestAPI
	service  *service.MappingService
	source   *catalog.FakeSource
	settings *config.URLSettings
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// openTestStore creates a temp SQLite mapping store.
func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// setupTestServer creates a server backed by a temp SQLite store and a fake
// catalog source.
func setupTestServer(t *testing.T, items ...domain.CatalogItem) *testServer {
	t.Helper()
	return setupTestServerWith(t, openTestStore(t), items...)
}

// setupTestServerWith is setupTestServer with a caller-supplied store.
func setupTestServerWith(t *testing.T, st store.MappingStore, items ...domain.CatalogItem) *testServer {
	t.Helper()

	logger := testLogger()

	settings := &config.URLSettings{
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
	settingsFn := func() config.URLSettings { return *settings }

	source := catalog.NewFakeSource(items...)
	upstream := config.UpstreamConfig{BaseURL: "http://localhost:8096", ServerID: "srv1"}

	svc := service.NewMappingService(st, source, settingsFn, upstream, logger)
	worker := syncer.NewWorker(svc, source, settingsFn, logger)

	s := NewServer(svc, worker, logger)

	return &testServer{
		Server:   s,
		api:      humatest.Wrap(t, s.api),
		service:  svc,
		source:   source,
		settings: settings,
	}
}

func matrixItem() domain.CatalogItem {
	return domain.CatalogItem{
		ID:             "item-1",
		Kind:           domain.KindMovie,
		Name:           "The Matrix",
		ProductionYear: 1999,
	}
}

// mustGenerate creates a mapping directly through the service.
func (ts *testServer) mustGenerate(t *testing.T, item domain.CatalogItem) *domain.Mapping {
	t.Helper()

	mapping, _, err := ts.service.GenerateForItem(context.Background(), item)
	require.NoError(t, err)
	return mapping
}
