package models

import "fmt"

// Coordinate represents a geographical point defined by its latitude and longitude.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
}

// String formats the coordinate as "(lat, lng)" for logs and the console summary.
func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g)", c.Latitude, c.Longitude)
}
