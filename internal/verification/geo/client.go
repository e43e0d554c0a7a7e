package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/watheeq/watheeq-backend/pkg/config"
	"github.com/watheeq/watheeq-backend/pkg/logger"
)

// userAgent identifies us to LocationIQ.
const userAgent = "WatheeqCCTV/1.0"

// reverseFieldOrder lists address fields from most to least specific.
// The first one present wins.
var reverseFieldOrder = []string{
	"road", "suburb", "neighbourhood", "city_district", "city", "town", "state",
}

// Client talks to the LocationIQ geocoding API. Every call is a single
// attempt bounded by the configured timeout; there are no retries.
//
// Methods return explicit errors so callers (and tests) can tell failure
// causes apart. The verification comparators collapse those errors to the
// zero-point / empty-string sentinel per their contract.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a geocoding client from configuration
func NewClient(cfg *config.GeocodingConfig, log *logger.Logger) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log,
	}
}

type forwardResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Forward resolves a free-text address to coordinates. The query is
// scoped to Saudi Arabia. Returns an error on any network, decode, or
// empty-result condition.
func (c *Client) Forward(ctx context.Context, address string) (Point, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", fmt.Sprintf("%s, Saudi Arabia, السعودية", address))
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("countrycodes", "sa")

	var results []forwardResult
	if err := c.get(ctx, c.baseURL+"/search?"+q.Encode(), &results); err != nil {
		return Point{}, err
	}
	if len(results) == 0 {
		return Point{}, fmt.Errorf("no results for %q", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("malformed lat %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("malformed lon %q: %w", results[0].Lon, err)
	}

	displayName := results[0].DisplayName
	if i := strings.Index(displayName, ","); i >= 0 {
		displayName = displayName[:i]
	}

	c.logger.Info().
		Str("address", address).
		Float64("lat", lat).
		Float64("lng", lng).
		Str("display_name", displayName).
		Msg("forward geocode resolved")

	return Point{Lat: lat, Lng: lng, DisplayName: displayName}, nil
}

type reverseResult struct {
	Address     map[string]string `json:"address"`
	DisplayName string            `json:"display_name"`
}

// Reverse resolves coordinates to the most specific available place name,
// preferring road over suburb over district over city and so on. Falls
// back to the first segment of the display name.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("accept-language", "ar")

	var result reverseResult
	if err := c.get(ctx, c.baseURL+"/reverse?"+q.Encode(), &result); err != nil {
		return "", err
	}

	for _, field := range reverseFieldOrder {
		if name, ok := result.Address[field]; ok && name != "" {
			return name, nil
		}
	}
	if result.DisplayName != "" {
		name := result.DisplayName
		if i := strings.Index(name, ","); i >= 0 {
			name = name[:i]
		}
		return name, nil
	}

	return "", fmt.Errorf("no place name for (%f, %f)", lat, lng)
}

func (c *Client) get(ctx context.Context, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocoding call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoding call returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	return nil
}
