// Package nutrition wraps the external nutrition facts API used to
// fill ingredient rows at creation time.
package nutrition

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

	"bakesub/models"
)

const (
	defaultBaseURL  = "https://api.calorieninjas.com"
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 24 * time.Hour
)

// Config describes how the nutrition client should be initialised.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration
	HTTPClient *http.Client
}

// Client queries the nutrition API and caches results per ingredient
// name, since facts for a given ingredient change essentially never.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *gocache.Cache
}

// NewClient builds a Client that can look up nutrition facts.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("nutrition: api key must not be empty")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
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
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
	}, nil
}

type nutritionItem struct {
	Calories      *float64 `json:"calories"`
	FatTotal      *float64 `json:"fat_total_g"`
	Carbohydrates *float64 `json:"carbohydrates_total_g"`
	Protein       *float64 `json:"protein_g"`
	Sodium        *float64 `json:"sodium_mg"`
	Fiber         *float64 `json:"fiber_g"`
	Sugar         *float64 `json:"sugar_g"`
}

type nutritionResponse struct {
	Items []nutritionItem `json:"items"`
}

// Lookup fetches nutrition facts for the named ingredient. An unknown
// ingredient yields empty facts and no error; transport and decode
// failures are returned for the caller to degrade on.
func (c *Client) Lookup(ctx context.Context, name string) (models.Nutrition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Nutrition{}, errors.New("nutrition: ingredient name must not be empty")
	}

	cacheKey := strings.ToLower(name)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(models.Nutrition), nil
	}

	endpoint := fmt.Sprintf("%s/v1/nutrition?query=%s", c.baseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Nutrition{}, fmt.Errorf("nutrition: build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Nutrition{}, fmt.Errorf("nutrition: call api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Nutrition{}, fmt.Errorf("nutrition: api returned status %s", resp.Status)
	}

	var parsed nutritionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.Nutrition{}, fmt.Errorf("nutrition: decode response: %w", err)
	}

	facts := models.Nutrition{}
	if len(parsed.Items) > 0 {
		item := parsed.Items[0]
		facts = models.Nutrition{
			Calories:      item.Calories,
			Fat:           item.FatTotal,
			Carbohydrates: item.Carbohydrates,
			Protein:       item.Protein,
			Sodium:        item.Sodium,
			Fiber:         item.Fiber,
			Sugar:         item.Sugar,
		}
	}

	c.cache.Set(cacheKey, facts, gocache.DefaultExpiration)
	return facts, nil
}
