// Package catalog browses the public Open Library catalog: subject
// listings, full-text search, and single-work lookup. Results go
// through the same normalizer as shelf listings so pages render from
// one Book shape regardless of origin.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nmhoang/libshelf/internal/books"
	"github.com/nmhoang/libshelf/internal/entities"
)

const (
	defaultBaseURL  = "https://openlibrary.org"
	defaultPageSize = 20
	userAgent       = "libshelf/1.0 (https://github.com/nmhoang/libshelf)"
)

// ErrNotFound is returned when the catalog has no such resource.
var ErrNotFound = errors.New("catalog resource not found")

// Client fetches from the public catalog. Requests are rate limited
// to one per second to stay inside the catalog's usage policy.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewClient creates a catalog client. An empty baseURL selects the
// public Open Library API.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: newRateLimiter(time.Second),
	}
}

// BrowseSubject lists the works filed under a subject, one page at a
// time.
func (c *Client) BrowseSubject(ctx context.Context, subject string, page int) ([]entities.Book, books.Pagination, error) {
	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		return nil, books.Pagination{}, fmt.Errorf("subject is required")
	}
	if page < 0 {
		page = 0
	}

	query := url.Values{
		"limit":  {fmt.Sprintf("%d", defaultPageSize)},
		"offset": {fmt.Sprintf("%d", page*defaultPageSize)},
	}
	path := fmt.Sprintf("/subjects/%s.json", url.PathEscape(subject))

	works, pagination, err := c.fetchPage(ctx, path, query)
	if err != nil {
		return nil, books.Pagination{}, err
	}
	pagination.Page = page
	pagination.Size = defaultPageSize
	return works, pagination, nil
}

// Search runs a full-text query against the catalog.
func (c *Client) Search(ctx context.Context, q string, page int) ([]entities.Book, books.Pagination, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, books.Pagination{}, fmt.Errorf("search query is required")
	}
	if page < 0 {
		page = 0
	}

	query := url.Values{
		"q":     {q},
		"limit": {fmt.Sprintf("%d", defaultPageSize)},
		"page":  {fmt.Sprintf("%d", page+1)}, // the search API pages from 1
	}

	results, pagination, err := c.fetchPage(ctx, "/search.json", query)
	if err != nil {
		return nil, books.Pagination{}, err
	}
	pagination.Page = page
	pagination.Size = defaultPageSize
	return results, pagination, nil
}

// GetWork fetches one work by its catalog key, e.g. "OL45883W".
func (c *Client) GetWork(ctx context.Context, key string) (entities.Book, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/works/")
	if key == "" {
		return entities.Book{}, fmt.Errorf("work key is required")
	}

	items, _, err := c.fetchPage(ctx, fmt.Sprintf("/works/%s.json", url.PathEscape(key)), nil)
	if err != nil {
		return entities.Book{}, err
	}
	if len(items) == 0 {
		return entities.Book{}, fmt.Errorf("%w: work %s", ErrNotFound, key)
	}
	book := items[0]
	if book.ID == "" {
		book.ID = key
	}
	return book, nil
}

func (c *Client) fetchPage(ctx context.Context, path string, query url.Values) ([]entities.Book, books.Pagination, error) {
	raw, err := c.get(ctx, path, query)
	if err != nil {
		return nil, books.Pagination{}, err
	}

	items, pagination, err := books.DecodeEnvelope(raw)
	if err != nil {
		return nil, books.Pagination{}, fmt.Errorf("decode catalog response: %w", err)
	}

	page := make([]entities.Book, 0, len(items))
	for _, item := range items {
		page = append(page, books.Normalize(item))
	}
	return page, pagination, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	c.rateLimiter.wait()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return raw, nil
}
