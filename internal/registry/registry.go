// Package registry fetches the public directory of delegate names and
// descriptions, keyed by hotkey address.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/jungoai/jungo-cli/internal/log"
	"github.com/jungoai/jungo-cli/internal/storage"
)

// DefaultTimeout bounds one directory fetch.
const DefaultTimeout = 10 * time.Second

// maxBody caps the directory size.
const maxBody = 8 << 20

// Details describes one delegate.
type Details struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Signature   string `json:"signature"`
}

// Directory maps hotkey addresses to delegate details.
type Directory map[string]Details

// Name returns the delegate name of hotkey, or "".
func (d Directory) Name(hotkey string) string {
	return d[hotkey].Name
}

// StatusError is returned when the directory server answers with a
// non-2xx status.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

// Client fetches the directory over HTTP, optionally through a cache.
type Client struct {
	url   string
	http  *http.Client
	cache storage.DB
	ttl   time.Duration
	log   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache caches fetched directories in db for ttl.
func WithCache(db storage.DB, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = db
		c.ttl = ttl
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the directory at url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:  url,
		http: &http.Client{Timeout: DefaultTimeout},
		log:  log.Registry,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// cacheKey is the blake3 digest of the directory URL, so that switching
// delegates_url never serves another directory's entries.
func (c *Client) cacheKey() []byte {
	sum := blake3.Sum256([]byte(c.url))
	return sum[:]
}

// Fetch returns the directory, from the cache when fresh.
func (c *Client) Fetch(ctx context.Context) (Directory, error) {
	if c.cache != nil {
		data, err := c.cache.Get(c.cacheKey())
		switch {
		case err == nil:
			var dir Directory
			if jerr := json.Unmarshal(data, &dir); jerr == nil {
				log.Cache.Debug().Str("url", c.url).Int("entries", len(dir)).Msg("delegate directory from cache")
				return dir, nil
			}
			c.log.Warn().Str("url", c.url).Msg("discarding corrupt cache entry")
		case !errors.Is(err, storage.ErrNotFound):
			c.log.Warn().Err(err).Msg("read cache")
		}
	}

	data, err := c.get(ctx)
	if err != nil {
		return nil, err
	}
	var dir Directory
	if err := json.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("decode delegate directory: %w", err)
	}
	if c.cache != nil {
		if err := c.cache.PutTTL(c.cacheKey(), data, c.ttl); err != nil {
			c.log.Warn().Err(err).Msg("write cache")
		}
	}
	c.log.Debug().Str("url", c.url).Int("entries", len(dir)).Msg("fetched delegate directory")
	return dir, nil
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, URL: c.url}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// Lookup is the best-effort form of Fetch: on any failure it logs a
// warning and returns an empty directory.
func (c *Client) Lookup(ctx context.Context) Directory {
	dir, err := c.Fetch(ctx)
	if err != nil {
		c.log.Warn().Err(err).Str("url", c.url).Msg("delegate directory unavailable")
		return Directory{}
	}
	return dir
}

// Source is anything that can produce a directory.
type Source interface {
	Lookup(ctx context.Context) Directory
}

// Static is a fixed directory.
type Static Directory

// Lookup returns the fixed directory.
func (s Static) Lookup(context.Context) Directory {
	return Directory(s)
}
