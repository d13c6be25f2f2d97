package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permalinkapp/permalink-server/internal/config"
	"github.com/permalinkapp/permalink-server/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewClient(config.UpstreamConfig{
		BaseURL:  srv.URL,
		APIToken: "test-token",
		PageSize: 2,
	}, logger)
}

func TestItem(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Items/movie-1", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Emby-Token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"Id":"movie-1","Type":"Movie","Name":"The Matrix","ProductionYear":1999}`)
	}))

	item, err := client.Item(context.Background(), "movie-1")
	require.NoError(t, err)

	assert.Equal(t, "movie-1", item.ID)
	assert.Equal(t, domain.KindMovie, item.Kind)
	assert.Equal(t, "The Matrix", item.Name)
	assert.Equal(t, 1999, item.ProductionYear)
}

func TestItemEpisodeIndexes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Id":"ep-1","Type":"Episode","Name":"Pilot","SeriesName":"Breaking Bad","ParentIndexNumber":1,"IndexNumber":3}`)
	}))

	item, err := client.Item(context.Background(), "ep-1")
	require.NoError(t, err)

	assert.Equal(t, domain.KindEpisode, item.Kind)
	assert.Equal(t, "Breaking Bad", item.ParentShow)
	assert.Equal(t, 1, item.SeasonIndex)
	assert.Equal(t, 3, item.EpisodeIndex)
}

func TestItemNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Item(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemUnauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Item(context.Background(), "movie-1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestWalkPaginates(t *testing.T) {
	// 5 items across 3 pages of size 2.
	total := 5
	var requests int

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/Items", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("Recursive"))

		start, _ := strconv.Atoi(r.URL.Query().Get("StartIndex"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("Limit"))

		fmt.Fprint(w, `{"TotalRecordCount":5,"Items":[`)
		for i := start; i < start+limit && i < total; i++ {
			if i > start {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"Id":"item-%d","Type":"Movie","Name":"Movie %d"}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	}))

	var seen []string
	err := client.Walk(context.Background(), func(item domain.CatalogItem) error {
		seen = append(seen, item.ID)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, seen, total)
	assert.Equal(t, 3, requests)
	assert.Equal(t, "item-0", seen[0])
	assert.Equal(t, "item-4", seen[4])
}

func TestWalkCallbackErrorAborts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"TotalRecordCount":2,"Items":[{"Id":"a","Type":"Movie","Name":"A"},{"Id":"b","Type":"Movie","Name":"B"}]}`)
	}))

	boom := errors.New("boom")
	err := client.Walk(context.Background(), func(item domain.CatalogItem) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWalkServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := client.Walk(context.Background(), func(item domain.CatalogItem) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrServer)
}

func TestKindFromTypeUnknown(t *testing.T) {
	assert.Equal(t, domain.ItemKind(""), kindFromType("Playlist"))
}
