package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/permalinkapp/permalink-server/internal/config"
	"github.com/permalinkapp/permalink-server/internal/domain"
	"github.com/permalinkapp/permalink-server/internal/ratelimit"
)

const (
	// Paged walks can fire many requests back to back; stay polite.
	defaultRPS   = 10.0
	defaultBurst = 5

	defaultTimeout  = 30 * time.Second
	defaultPageSize = 200
)

// itemTypes lists the host item types we ask for during a walk.
const itemTypes = "Movie,Series,Season,Episode,Person,BoxSet,Genre,Studio"

// Client is a rate-limited HTTP client for the host's catalog API.
type Client struct {
	http     *http.Client
	limiter  *ratelimit.Limiter
	logger   *slog.Logger
	baseURL  string
	token    string
	pageSize int
}

// NewClient creates a catalog client for the configured upstream.
func NewClient(upstream config.UpstreamConfig, logger *slog.Logger) *Client {
	pageSize := upstream.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter:  ratelimit.New(defaultRPS, defaultBurst),
		logger:   logger,
		baseURL:  strings.TrimRight(upstream.BaseURL, "/"),
		token:    upstream.APIToken,
		pageSize: pageSize,
	}
}

// itemDTO mirrors the host's item payload; only the fields the URL
// generator needs are decoded.
type itemDTO struct {
	ID                string `json:"Id"`
	Type              string `json:"Type"`
	Name              string `json:"Name"`
	SeriesName        string `json:"SeriesName"`
	ParentIndexNumber int    `json:"ParentIndexNumber"`
	IndexNumber       int    `json:"IndexNumber"`
	ProductionYear    int    `json:"ProductionYear"`
}

type itemsPageDTO struct {
	Items            []itemDTO `json:"Items"`
	TotalRecordCount int       `json:"TotalRecordCount"`
}

// kindFromType maps host item type tags to our kinds. Unrecognized types
// map to "", which the generator treats as unsupported.
func kindFromType(t string) domain.ItemKind {
	switch t {
	case "Movie":
		return domain.KindMovie
	case "Series":
		return domain.KindShow
	case "Season":
		return domain.KindSeason
	case "Episode":
		return domain.KindEpisode
	case "Person":
		return domain.KindPerson
	case "BoxSet":
		return domain.KindCollection
	case "Genre":
		return domain.KindGenre
	case "Studio":
		return domain.KindStudio
	default:
		return ""
	}
}

func (d itemDTO) toDomain() domain.CatalogItem {
	item := domain.CatalogItem{
		ID:             d.ID,
		Kind:           kindFromType(d.Type),
		Name:           d.Name,
		ParentShow:     d.SeriesName,
		ProductionYear: d.ProductionYear,
	}
	switch item.Kind {
	case domain.KindSeason:
		item.SeasonIndex = d.IndexNumber
	case domain.KindEpisode:
		item.SeasonIndex = d.ParentIndexNumber
		item.EpisodeIndex = d.IndexNumber
	}
	return item
}

// Item fetches a single catalog item by ID.
func (c *Client) Item(ctx context.Context, itemID string) (domain.CatalogItem, error) {
	body, err := c.doRequest(ctx, "/Items/"+url.PathEscape(itemID), nil)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	var dto itemDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("decode item: %w", err)
	}
	return dto.toDomain(), nil
}

// Walk pages through the catalog recursively and calls fn for every item.
func (c *Client) Walk(ctx context.Context, fn func(domain.CatalogItem) error) error {
	start := 0
	for {
		query := url.Values{
			"Recursive":        {"true"},
			"IncludeItemTypes": {itemTypes},
			"StartIndex":       {strconv.Itoa(start)},
			"Limit":            {strconv.Itoa(c.pageSize)},
		}

		body, err := c.doRequest(ctx, "/Items", query)
		if err != nil {
			return err
		}

		var page itemsPageDTO
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("decode items page: %w", err)
		}
		if len(page.Items) == 0 {
			return nil
		}

		for _, dto := range page.Items {
			if err := fn(dto.toDomain()); err != nil {
				return err
			}
		}

		start += len(page.Items)
		if start >= page.TotalRecordCount {
			return nil
		}
	}
}

// doRequest executes a GET against the host API with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-Emby-Token", c.token)
	}

	c.logger.Debug("catalog request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
