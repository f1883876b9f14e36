package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"postergeist/internal/geo"
	"postergeist/internal/services"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// The geocoding service rejects anonymous default agents, so requests carry
// a browser-style identity the way the upstream tool did.
const userAgent = "Mozilla/5.0 (iPad; CPU OS 12_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148"

// Config captures the runtime settings for the geocoding API.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Client resolves place names to coordinates via a Nominatim-style search
// endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New constructs a geocoding client.
func New(cfg Config, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	timeout := 15 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Lookup returns the coordinates of the first search result for place.
// No results is services.ErrNotFound.
func (c *Client) Lookup(ctx context.Context, place string) (geo.Coordinate, error) {
	var empty geo.Coordinate

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", c.cfg.BaseURL, url.QueryEscape(place))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return empty, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalService, "geocode", "search", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return empty, services.Wrap(services.ErrExternalService, "geocode", "search",
			fmt.Sprintf("http %d: %s", resp.StatusCode, resp.Status), nil)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return empty, fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 {
		return empty, services.Wrap(services.ErrNotFound, "geocode", "search", fmt.Sprintf("no results for %q", place), nil)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return empty, fmt.Errorf("parse lat %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return empty, fmt.Errorf("parse lon %q: %w", results[0].Lon, err)
	}
	return geo.Coordinate{Lat: lat, Lng: lng}, nil
}
