package geocoding

import (
	"context"

	"github.com/ritogk/roadscan/internal/models"
)

// Resolver turns a coordinate into a human-readable address for the report.
// Enrichment is optional: callers treat a failed resolution as an empty
// address, never as a pipeline failure.
type Resolver interface {
	Resolve(ctx context.Context, coord models.Coordinate) (string, error)
}
