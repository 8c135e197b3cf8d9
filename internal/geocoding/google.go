package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ritogk/roadscan/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleResolver resolves coordinates to addresses through the Google Maps
// Geocoding API.
type GoogleResolver struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleResolver wraps an existing Google Maps API client.
func NewGoogleResolver(client GoogleAPIClient, log *slog.Logger) *GoogleResolver {
	return &GoogleResolver{client: client, log: log}
}

// NewGoogleResolverFromKey builds the Maps client from an API key, with
// optional rate limiting, and returns a resolver around it.
func NewGoogleResolverFromKey(apiKey string, rateLimit int, log *slog.Logger) (*GoogleResolver, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required for Google resolver")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
	}
	if rateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(rateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleResolver(client, log), nil
}

// Resolve reverse-geocodes the coordinate and returns the formatted address
// of the first match. Results come back in Japanese to match the report's
// locale.
func (gr *GoogleResolver) Resolve(ctx context.Context, coord models.Coordinate) (string, error) {
	gr.log.DebugContext(ctx, "Reverse geocoding using Google Maps", "location", coord.String())

	req := maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: coord.Latitude, Lng: coord.Longitude},
		Language: "ja",
	}
	results, err := gr.client.ReverseGeocode(ctx, &req)
	if err != nil {
		return "", fmt.Errorf("failed to reverse geocode coordinate: %w", err)
	}

	if len(results) == 0 {
		return "", ErrEmptyResponse
	}

	return results[0].FormattedAddress, nil
}
