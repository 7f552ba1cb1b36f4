// Package geocode resolves street addresses to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"whatsfresh/pkg/logger"
)

// ErrBadAddress is returned when an address is incomplete or the provider
// cannot place it.
var ErrBadAddress = errors.New("address could not be resolved")

// Address is the postal address of a location
type Address struct {
	Street string
	City   string
	State  string
	Zip    string
}

// Complete reports whether every address field has a value
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.Zip) != ""
}

func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.State, a.Zip)
}

// Point is a latitude/longitude pair
type Point struct {
	Lat float64
	Lon float64
}

// Geocoder maps an address to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, addr Address) (Point, error)
}

// Client talks to a Google Geocoding API compatible endpoint
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type response struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewClient creates a geocoding client
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

// Geocode resolves addr. Incomplete addresses and addresses the provider
// cannot match return ErrBadAddress; transport failures are returned wrapped.
func (c *Client) Geocode(ctx context.Context, addr Address) (Point, error) {
	if !addr.Complete() {
		return Point{}, ErrBadAddress
	}

	log := logger.FromContextOr(ctx, c.Logger)

	query := url.Values{}
	query.Set("address", addr.String())
	if c.APIKey != "" {
		query.Set("key", c.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return Point{}, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Error("Geocode request failed", zap.Error(err))
		return Point{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Point{}, fmt.Errorf("read geocode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("Geocode provider returned an error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(body)))
		return Point{}, fmt.Errorf("geocode provider status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Point{}, fmt.Errorf("decode geocode response: %w", err)
	}

	switch parsed.Status {
	case "OK":
	case "ZERO_RESULTS", "INVALID_REQUEST":
		return Point{}, ErrBadAddress
	default:
		log.Error("Geocode provider rejected request",
			zap.String("status", parsed.Status),
			zap.String("error_message", parsed.ErrorMessage))
		return Point{}, fmt.Errorf("geocode provider status %s: %s", parsed.Status, parsed.ErrorMessage)
	}
	if len(parsed.Results) == 0 {
		return Point{}, ErrBadAddress
	}

	loc := parsed.Results[0].Geometry.Location
	log.Debug("Address geocoded",
		zap.String("formatted_address", parsed.Results[0].FormattedAddress),
		zap.Float64("lat", loc.Lat),
		zap.Float64("lng", loc.Lng))
	return Point{Lat: loc.Lat, Lon: loc.Lng}, nil
}
