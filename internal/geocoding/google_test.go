package geocoding_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/ritogk/roadscan/internal/geocoding"
	"github.com/ritogk/roadscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

// mockGoogleAPI is a mock implementation of GoogleAPIClient for testing.
type mockGoogleAPI struct {
	reverseGeocodeFunc func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

func (m *mockGoogleAPI) ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	return m.reverseGeocodeFunc(ctx, r)
}

func TestGoogleResolver_Resolve(t *testing.T) {
	ctx := t.Context()
	logger := slog.Default()
	coord := models.Coordinate{Latitude: 35.658, Longitude: 139.745}

	t.Run("successful resolution", func(t *testing.T) {
		mockClient := &mockGoogleAPI{
			reverseGeocodeFunc: func(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
				require.NotNil(t, r.LatLng)
				assert.InEpsilon(t, 35.658, r.LatLng.Lat, 0.0001)
				assert.InEpsilon(t, 139.745, r.LatLng.Lng, 0.0001)
				assert.Equal(t, "ja", r.Language)

				return []maps.GeocodingResult{
					{FormattedAddress: "日本、〒105-0011 東京都港区芝公園４丁目２−８"},
				}, nil
			},
		}

		resolver := geocoding.NewGoogleResolver(mockClient, logger)
		address, err := resolver.Resolve(ctx, coord)

		require.NoError(t, err)
		assert.Equal(t, "日本、〒105-0011 東京都港区芝公園４丁目２−８", address)
	})

	t.Run("api returns error", func(t *testing.T) {
		mockClient := &mockGoogleAPI{
			reverseGeocodeFunc: func(_ context.Context, _ *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
				return nil, assert.AnError
			},
		}

		resolver := geocoding.NewGoogleResolver(mockClient, logger)
		address, err := resolver.Resolve(ctx, coord)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, address)
	})

	t.Run("api returns empty response", func(t *testing.T) {
		mockClient := &mockGoogleAPI{
			reverseGeocodeFunc: func(_ context.Context, _ *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
				return nil, nil
			},
		}

		resolver := geocoding.NewGoogleResolver(mockClient, logger)
		_, err := resolver.Resolve(ctx, coord)

		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
	})
}
