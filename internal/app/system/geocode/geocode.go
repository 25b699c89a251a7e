// Package geocode resolves postal addresses to coordinates through a
// Nominatim-compatible search API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/glrs/lighthouse/internal/domain/models"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// ErrNotFound is returned when the service has no match for the query.
var ErrNotFound = errors.New("geocode: no match")

// Result is the best match for a query.
type Result struct {
	Point       models.GeoPoint
	DisplayName string
}

// Client calls the search endpoint, pacing requests with a token bucket.
// It is safe for concurrent use.
type Client struct {
	base    *url.URL
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	agent   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header. Public Nominatim rejects
// requests without one.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.agent = ua }
}

// New creates a Client. rps <= 0 disables pacing. apiKey is sent as the
// "key" query parameter when non-empty.
func New(baseURL, apiKey string, rps float64, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("geocode: base url must be http or https, got %q", baseURL)
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	c := &Client{
		base:    u,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(limit, 1),
		agent:   "lighthouse-geocoder/1.0",
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode looks up query and returns the first match.
func (c *Client) Geocode(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrNotFound
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/search"
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.agent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("geocode: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return Result{}, fmt.Errorf("geocode: decode: %w", err)
	}
	if len(places) == 0 {
		return Result{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: bad lat %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("geocode: bad lon %q: %w", places[0].Lon, err)
	}
	return Result{
		Point:       models.GeoPoint{Lat: lat, Lng: lng},
		DisplayName: places[0].DisplayName,
	}, nil
}
