// Package content wraps the headless content service that hosts the
// editorial blog.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 5 * time.Minute
	defaultLimit    = 20
)

// Config describes how the content client should be initialised.
type Config struct {
	BaseURL    string
	Key        string
	CacheTTL   time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Post is one editorial blog entry as served by the content API.
type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	HTML        string    `json:"html"`
	FeatureImg  string    `json:"feature_image"`
	Tags        []string  `json:"tags"`
	PublishedAt time.Time `json:"published_at"`
}

// Client fetches blog posts from the content service, caching results
// briefly so the public pages do not hammer the CMS.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	cache      *gocache.Cache
}

// NewClient builds a content service client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("content: base URL must not be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        strings.TrimSpace(cfg.Key),
		httpClient: httpClient,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
	}, nil
}

type postsEnvelope struct {
	Posts []Post `json:"posts"`
}

// ListPosts returns up to limit published posts, newest first.
func (c *Client) ListPosts(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	cacheKey := fmt.Sprintf("posts:%d", limit)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]Post), nil
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	envelope, err := c.fetch(ctx, "/api/content/posts/", query)
	if err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, envelope.Posts, gocache.DefaultExpiration)
	return envelope.Posts, nil
}

// GetPost returns a single published post by slug. A missing post
// yields (nil, nil) so the caller can map it to not-found.
func (c *Client) GetPost(ctx context.Context, slug string) (*Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.New("content: post slug must not be empty")
	}

	cacheKey := "post:" + slug
	if cached, ok := c.cache.Get(cacheKey); ok {
		post := cached.(Post)
		return &post, nil
	}

	envelope, err := c.fetch(ctx, "/api/content/posts/slug/"+url.PathEscape(slug)+"/", nil)
	if err != nil {
		return nil, err
	}
	if len(envelope.Posts) == 0 {
		return nil, nil
	}

	post := envelope.Posts[0]
	c.cache.Set(cacheKey, post, gocache.DefaultExpiration)
	return &post, nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) (*postsEnvelope, error) {
	if query == nil {
		query = url.Values{}
	}
	if c.key != "" {
		query.Set("key", c.key)
	}

	endpoint := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("content: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content: call service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &postsEnvelope{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content: service returned status %s", resp.Status)
	}

	var envelope postsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("content: decode response: %w", err)
	}

	return &envelope, nil
}
