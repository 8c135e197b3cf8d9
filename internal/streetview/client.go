package streetview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ritogk/roadscan/internal/models"
	"golang.org/x/time/rate"
)

// Street View Static API endpoints.
const (
	MetadataBaseURL = "https://maps.googleapis.com/maps/api/streetview/metadata"
	ImageBaseURL    = "https://maps.googleapis.com/maps/api/streetview"
)

// Fixed camera parameters for every fetched image.
const (
	imageSize  = "640x480"
	imageFOV   = "90"
	imagePitch = "0"
)

// Common errors for the Street View client.
var (
	ErrImageryUnavailable = errors.New("street view imagery is not available")
	ErrEmptyImage         = errors.New("street view API returned an empty image")
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Metadata is the coverage information returned by the metadata endpoint.
type Metadata struct {
	Status   string `json:"status"`  // "OK" when imagery exists at the location.
	PanoID   string `json:"pano_id"` // Panorama identifier.
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"` // Location the panorama was actually captured at.
	Date      string `json:"date"`      // Capture date, YYYY-MM.
	Copyright string `json:"copyright"` // Attribution string.
}

// Client fetches street-level imagery for coordinates. A coverage check via
// the metadata endpoint precedes every image request; both calls go through
// the shared rate limiter.
type Client struct {
	client      HTTPClient    // HTTP client for making requests
	metadataURL string        // Base URL for the metadata endpoint
	imageURL    string        // Base URL for the static image endpoint
	apiKey      string        // API key with Street View Static API access
	snapshotDir string        // Optional directory for debug copies of fetched images
	log         *slog.Logger  // Logger for logging operations
	limiter     *rate.Limiter // Rate limiter
}

// NewClient creates a Street View client with the default HTTP client.
// snapshotDir may be empty to disable local image copies.
func NewClient(apiKey, snapshotDir string, rateLimit int, log *slog.Logger) *Client {
	const timeout = 10

	return &Client{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		metadataURL: MetadataBaseURL,
		imageURL:    ImageBaseURL,
		apiKey:      apiKey,
		snapshotDir: snapshotDir,
		log:         log,
		limiter:     rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// NewClientWithHTTP allows injecting a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewClientWithHTTP(client HTTPClient, apiKey, snapshotDir string, limiter *rate.Limiter, log *slog.Logger) *Client {
	return &Client{
		client:      client,
		metadataURL: MetadataBaseURL,
		imageURL:    ImageBaseURL,
		apiKey:      apiKey,
		snapshotDir: snapshotDir,
		log:         log,
		limiter:     limiter,
	}
}

// Metadata queries the coverage metadata for a coordinate. A non-"OK" status
// is returned as ErrImageryUnavailable wrapping the provider's status string.
func (c *Client) Metadata(ctx context.Context, coord models.Coordinate) (*Metadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(c.metadataURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("location", fmt.Sprintf("%f,%f", coord.Latitude, coord.Longitude))
	query.Set("key", c.apiKey)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute metadata request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.ErrorContext(ctx, "Street View metadata API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("street view metadata API returned status %d: %s", resp.StatusCode, string(body))
	}

	var metadata Metadata
	if err = json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata response: %w", err)
	}

	if metadata.Status != "OK" {
		return nil, fmt.Errorf("%w: %s", ErrImageryUnavailable, metadata.Status)
	}

	c.log.DebugContext(ctx, "Street View coverage confirmed",
		"location", coord.String(), "pano_id", metadata.PanoID, "date", metadata.Date)

	return &metadata, nil
}

// Fetch confirms coverage at the coordinate and downloads a 640x480 image
// aimed at the given heading. The raw JPEG bytes are returned; when a
// snapshot directory is configured a best-effort local copy is written too.
func (c *Client) Fetch(ctx context.Context, coord models.Coordinate, heading float64) ([]byte, error) {
	if _, err := c.Metadata(ctx, coord); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(c.imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse image URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("size", imageSize)
	query.Set("location", fmt.Sprintf("%f,%f", coord.Latitude, coord.Longitude))
	query.Set("fov", imageFOV)
	query.Set("pitch", imagePitch)
	query.Set("heading", fmt.Sprintf("%.1f", heading))
	query.Set("key", c.apiKey)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute image request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.ErrorContext(ctx, "Street View image API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("street view image API returned status %d: %s", resp.StatusCode, string(body))
	}

	if len(body) == 0 {
		return nil, ErrEmptyImage
	}

	c.log.DebugContext(ctx, "Street View image fetched",
		"location", coord.String(), "heading", heading, "bytes", len(body))

	c.saveSnapshot(ctx, coord, body)

	return body, nil
}

// saveSnapshot writes a debug copy of the image under the snapshot directory.
// Collisions across runs are expected; failures are logged, never propagated.
func (c *Client) saveSnapshot(ctx context.Context, coord models.Coordinate, image []byte) {
	if c.snapshotDir == "" {
		return
	}

	const dirPerm = 0o755
	if err := os.MkdirAll(c.snapshotDir, dirPerm); err != nil {
		c.log.WarnContext(ctx, "Failed to create snapshot directory", "dir", c.snapshotDir, "error", err)
		return
	}

	const filePerm = 0o644
	name := fmt.Sprintf("streetview_%f_%f.jpg", coord.Latitude, coord.Longitude)
	path := filepath.Join(c.snapshotDir, name)
	if err := os.WriteFile(path, image, filePerm); err != nil {
		c.log.WarnContext(ctx, "Failed to save snapshot", "path", path, "error", err)
		return
	}

	c.log.DebugContext(ctx, "Saved snapshot", "path", path)
}
