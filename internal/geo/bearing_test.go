package geo_test

import (
	"testing"

	"github.com/ritogk/roadscan/internal/geo"
	"github.com/ritogk/roadscan/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBearing(t *testing.T) {
	t.Parallel()

	t.Run("due north along a meridian", func(t *testing.T) {
		t.Parallel()
		from := models.Coordinate{Latitude: 0, Longitude: 0}
		to := models.Coordinate{Latitude: 1, Longitude: 0}

		assert.InDelta(t, 0.0, geo.Bearing(from, to), 0.001)
	})

	t.Run("due east along the equator", func(t *testing.T) {
		t.Parallel()
		from := models.Coordinate{Latitude: 0, Longitude: 0}
		to := models.Coordinate{Latitude: 0, Longitude: 1}

		assert.InDelta(t, 90.0, geo.Bearing(from, to), 0.001)
	})

	t.Run("due south", func(t *testing.T) {
		t.Parallel()
		from := models.Coordinate{Latitude: 1, Longitude: 0}
		to := models.Coordinate{Latitude: 0, Longitude: 0}

		assert.InDelta(t, 180.0, geo.Bearing(from, to), 0.001)
	})

	t.Run("due west", func(t *testing.T) {
		t.Parallel()
		from := models.Coordinate{Latitude: 0, Longitude: 1}
		to := models.Coordinate{Latitude: 0, Longitude: 0}

		assert.InDelta(t, 270.0, geo.Bearing(from, to), 0.001)
	})

	t.Run("coincident points are deterministic", func(t *testing.T) {
		t.Parallel()
		point := models.Coordinate{Latitude: 35.6, Longitude: 139.7}

		assert.InDelta(t, 0.0, geo.Bearing(point, point), 0.0)
	})

	t.Run("result is always within [0, 360)", func(t *testing.T) {
		t.Parallel()
		coords := []models.Coordinate{
			{Latitude: 35.0, Longitude: 139.0},
			{Latitude: -33.8, Longitude: 151.2},
			{Latitude: 51.5, Longitude: -0.1},
			{Latitude: -54.8, Longitude: -68.3},
			{Latitude: 64.1, Longitude: -21.9},
		}

		for _, from := range coords {
			for _, to := range coords {
				bearing := geo.Bearing(from, to)
				assert.GreaterOrEqual(t, bearing, 0.0)
				assert.Less(t, bearing, 360.0)
			}
		}
	})

	t.Run("northeast between nearby points", func(t *testing.T) {
		t.Parallel()
		from := models.Coordinate{Latitude: 35.0, Longitude: 139.0}
		to := models.Coordinate{Latitude: 35.001, Longitude: 139.001}

		bearing := geo.Bearing(from, to)
		assert.Greater(t, bearing, 0.0)
		assert.Less(t, bearing, 90.0)
	})
}
