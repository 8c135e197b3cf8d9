package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ritogk/roadscan/internal/models"
)

// SelectionMode determines which part of the coordinate source file is used.
type SelectionMode string

const (
	// SelectAll keeps the full list in source order.
	SelectAll SelectionMode = "all"
	// SelectTail keeps only the last N entries.
	SelectTail SelectionMode = "tail"
	// SelectDedupHead removes exact duplicates, then keeps the first N entries.
	SelectDedupHead SelectionMode = "dedup-head"
)

// Selection is the explicitly configured policy for narrowing the source
// list. Count is ignored by SelectAll.
type Selection struct {
	Mode  SelectionMode
	Count int
}

// Common errors for the coordinate loader.
var (
	ErrInvalidPair    = errors.New("coordinate entry is not a [latitude, longitude] pair")
	ErrUnknownMode    = errors.New("unknown selection mode")
	ErrNonPositiveCnt = errors.New("selection count must be positive")
)

// Load reads an ordered JSON list of [latitude, longitude] pairs from path
// and applies the selection policy. A missing or malformed file is an error;
// the caller treats it as fatal at startup.
func Load(path string, sel Selection) ([]models.Coordinate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coordinate file: %w", err)
	}

	var pairs [][]float64
	if err = json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to decode coordinate file: %w", err)
	}

	const pairLength = 2
	coords := make([]models.Coordinate, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != pairLength {
			return nil, fmt.Errorf("%w: entry %d has %d elements", ErrInvalidPair, i, len(pair))
		}
		coords = append(coords, models.Coordinate{Latitude: pair[0], Longitude: pair[1]})
	}

	return Select(coords, sel)
}

// Select applies the selection policy to an already loaded list.
func Select(coords []models.Coordinate, sel Selection) ([]models.Coordinate, error) {
	switch sel.Mode {
	case SelectAll, "":
		return coords, nil
	case SelectTail:
		if sel.Count <= 0 {
			return nil, ErrNonPositiveCnt
		}
		if sel.Count >= len(coords) {
			return coords, nil
		}
		return coords[len(coords)-sel.Count:], nil
	case SelectDedupHead:
		if sel.Count <= 0 {
			return nil, ErrNonPositiveCnt
		}
		deduped := dedup(coords)
		if sel.Count < len(deduped) {
			deduped = deduped[:sel.Count]
		}
		return deduped, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, sel.Mode)
	}
}

// dedup removes exact latitude/longitude duplicates, preserving the first
// occurrence and source order.
func dedup(coords []models.Coordinate) []models.Coordinate {
	seen := make(map[models.Coordinate]bool, len(coords))
	out := make([]models.Coordinate, 0, len(coords))
	for _, c := range coords {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
