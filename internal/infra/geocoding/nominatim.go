// Package geocoding resolves street addresses to coordinates through a Nominatim-compatible API.
package geocoding

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"greencycle/config"
	"greencycle/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://nominatim.openstreetmap.org/search"

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// nominatimGeocoder implements service.Geocoder.
// Calls are throttled to the configured rate, one per second by default.
type nominatimGeocoder struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewNominatimGeocoder builds a geocoder from the geocoding section.
func NewNominatimGeocoder(cfg *config.Config, logger *slog.Logger) service.Geocoder {
	gc := cfg.Geocoding
	endpoint := gc.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	rps := gc.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &nominatimGeocoder{
		endpoint:   endpoint,
		userAgent:  gc.UserAgent,
		httpClient: &http.Client{Timeout: gc.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// Geocode returns the first match for address.
func (g *nominatimGeocoder) Geocode(ctx context.Context, address string) (orb.Point, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return orb.Point{}, errors.Wrap(err, "geocoding rate limit wait aborted")
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("countrycodes", "br")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return orb.Point{}, errors.WithStack(err)
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return orb.Point{}, errors.Wrap(err, "geocoding request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return orb.Point{}, errors.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return orb.Point{}, errors.Wrap(err, "failed to decode geocoding response")
	}
	if len(results) == 0 {
		return orb.Point{}, service.ErrLocationNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return orb.Point{}, errors.Wrap(err, "invalid latitude in geocoding response")
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return orb.Point{}, errors.Wrap(err, "invalid longitude in geocoding response")
	}

	g.logger.Debug("Address geocoded",
		slog.Float64("latitude", lat),
		slog.Float64("longitude", lon),
	)

	return orb.Point{lon, lat}, nil
}
