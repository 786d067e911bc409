// Package geo turns device coordinates into a human-readable location.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Unknown is reported when no position is available.
const Unknown = "Không xác định"

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinates formats p with five decimals, e.g. "10.77689,106.70081".
func (p Point) Coordinates() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lon)
}

// Valid reports whether p lies inside WGS84 bounds and is not the zero value.
func (p Point) Valid() bool {
	if p.Lat == 0 && p.Lon == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Resolver reverse-geocodes through a Nominatim compatible endpoint.
type Resolver struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewResolver builds a Resolver. An empty baseURL uses DefaultBaseURL.
func NewResolver(baseURL, userAgent string, timeout time.Duration, logger *zap.Logger) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Describe returns the address of p, falling back to its coordinates when the
// lookup fails and to Unknown when p is nil or invalid. It never errors.
func (r *Resolver) Describe(ctx context.Context, p *Point) string {
	if p == nil || !p.Valid() {
		return Unknown
	}
	name, err := r.Reverse(ctx, *p)
	if err != nil {
		r.logger.Debug("reverse geocoding failed", zap.String("coordinates", p.Coordinates()), zap.Error(err))
		return p.Coordinates()
	}
	return name
}

// Reverse looks up the display name of p.
func (r *Resolver) Reverse(ctx context.Context, p Point) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprint(p.Lat))
	q.Set("lon", fmt.Sprint(p.Lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geo: reverse returned %d", resp.StatusCode)
	}

	var out reverseResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("geo: decode reverse: %w", err)
	}
	name := strings.TrimSpace(out.DisplayName)
	if name == "" {
		return "", fmt.Errorf("geo: empty display name")
	}
	return name, nil
}
