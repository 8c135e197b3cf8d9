package geo

import (
	"math"

	"github.com/ritogk/roadscan/internal/models"
)

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
	fullTurn = 360
)

// Bearing returns the initial compass bearing in degrees, normalized to
// [0, 360), of the great-circle path from one coordinate to another.
// Coincident points yield 0 (atan2 of two zeros), which is deterministic.
func Bearing(from, to models.Coordinate) float64 {
	lat1 := from.Latitude * degToRad
	lat2 := to.Latitude * degToRad
	deltaLng := (to.Longitude - from.Longitude) * degToRad

	x := math.Sin(deltaLng) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLng)

	bearing := math.Atan2(x, y) * radToDeg

	return math.Mod(bearing+fullTurn, fullTurn)
}
