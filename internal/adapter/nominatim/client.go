// Package nominatim implements domain.Geocoder against the OSM Nominatim
// reverse-geocoding API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anten-puzl/CityPin/internal/domain"
	"github.com/anten-puzl/CityPin/internal/observability"
)

// DefaultBaseURL is the public Nominatim instance. Its usage policy requires
// an identifying User-Agent and at most one request per second; the rate
// limit is enforced by the caller, not this client.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// zoom 10 resolves to city granularity.
const reverseZoom = 10

// Client issues reverse-geocode requests. One request per call, no retries.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Nominatim client. baseURL has no trailing slash;
// userAgent must identify the application per the Nominatim usage policy.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// ReverseGeocode converts a coordinate to place details.
func (c *Client) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (domain.Location, error) {
	params := url.Values{
		"format":         {"json"},
		"lat":            {strconv.FormatFloat(coord.Lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(coord.Lon, 'f', -1, 64)},
		"zoom":           {strconv.Itoa(reverseZoom)},
		"addressdetails": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return domain.Location{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.Location{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.Location{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var nr response
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.Location{}, fmt.Errorf("decode response: %w", err)
	}

	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	loc := domain.Location{
		City:        firstNonEmpty(nr.Address.City, nr.Address.Town, nr.Address.Village, nr.Address.Hamlet, nr.Address.Municipality),
		State:       firstNonEmpty(nr.Address.State, nr.Address.Region, nr.Address.Province, nr.Address.County),
		Country:     nr.Address.Country,
		DisplayName: nr.DisplayName,
	}
	if loc.City == "" {
		c.logger.Debug("no settlement in nominatim response", "lat", coord.Lat, "lon", coord.Lon, "display_name", nr.DisplayName)
	}
	return loc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Nominatim API response types. OSM tagging decides which of the settlement
// and region fields the address object carries.

type response struct {
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
}

type address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Hamlet       string `json:"hamlet"`
	Municipality string `json:"municipality"`
	State        string `json:"state"`
	Region       string `json:"region"`
	Province     string `json:"province"`
	County       string `json:"county"`
	Country      string `json:"country"`
}
