package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ritogk/roadscan/internal/geo"
	"github.com/ritogk/roadscan/internal/geocoding"
	"github.com/ritogk/roadscan/internal/metrics"
	"github.com/ritogk/roadscan/internal/models"
	"github.com/ritogk/roadscan/internal/report"
	"github.com/ritogk/roadscan/internal/repository"
	"github.com/ritogk/roadscan/internal/vision"
)

// DefaultHeading is used for the last coordinate, which has no successor to
// derive a direction of travel from.
const DefaultHeading = 0.0

// ImageFetcher retrieves a street-level image for a coordinate and heading.
type ImageFetcher interface {
	Fetch(ctx context.Context, coord models.Coordinate, heading float64) ([]byte, error)
}

// Analyzer submits an image to the inference endpoint and returns the raw
// answer with its token cost.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, coord models.Coordinate) (*vision.Analysis, error)
}

// ReportWriter persists a finished report.
type ReportWriter interface {
	Write(report *models.AnalysisReport) (string, error)
}

// AnalysisService drives the full batch: one coordinate at a time through
// image retrieval, inference, parsing and accumulation. Coordinates are
// processed strictly sequentially; a failure at any step drops that
// coordinate, records a failure entry and moves on.
type AnalysisService struct {
	log      *slog.Logger         // Logger for logging service activities
	fetcher  ImageFetcher         // Street-level imagery source
	analyzer Analyzer             // Vision inference endpoint
	resolver geocoding.Resolver   // Optional address enrichment; may be nil
	store    ReportWriter         // Report persistence
	repo     repository.Interface // Optional Postgres sink; may be nil
	metrics  *metrics.Metrics     // Metrics for tracking service performance
	out      io.Writer            // Destination of the console summary
	now      func() time.Time     // Clock, replaceable in tests
}

// NewAnalysisService creates a new instance of AnalysisService. resolver and
// repo may be nil to disable address enrichment and database persistence.
func NewAnalysisService(
	log *slog.Logger,
	fetcher ImageFetcher,
	analyzer Analyzer,
	resolver geocoding.Resolver,
	store ReportWriter,
	repo repository.Interface,
	appMetrics *metrics.Metrics,
	out io.Writer,
) *AnalysisService {
	return &AnalysisService{
		log:      log,
		fetcher:  fetcher,
		analyzer: analyzer,
		resolver: resolver,
		store:    store,
		repo:     repo,
		metrics:  appMetrics,
		out:      out,
		now:      time.Now,
	}
}

// Run processes the coordinate list in order and returns the assembled
// report. Per-coordinate failures never abort the batch; only report
// persistence can fail the run as a whole.
func (as *AnalysisService) Run(ctx context.Context, coords []models.Coordinate) (*models.AnalysisReport, error) {
	as.log.InfoContext(ctx, "Analysis batch started", "locations", len(coords))

	results := make([]models.AnalysisResult, 0, len(coords))
	var failures []models.Failure
	var total models.TokenUsage

	for idx, coord := range coords {
		as.log.InfoContext(ctx, "Processing location",
			"index", idx+1, "of", len(coords), "location", coord.String())

		heading := DefaultHeading
		if idx+1 < len(coords) {
			heading = geo.Bearing(coord, coords[idx+1])
		}

		result, err := as.processLocation(ctx, coord, heading)
		if err != nil {
			as.log.ErrorContext(ctx, "Failed to analyze location",
				"location", coord.String(), "error", err)
			as.metrics.LocationsProcessed.WithLabelValues("failure").Inc()
			as.metrics.APIErrors.Inc()
			failures = append(failures, models.Failure{
				Coordinate: coord,
				Reason:     err.Error(),
				OccurredAt: as.now(),
			})
			continue
		}

		as.metrics.LocationsProcessed.WithLabelValues("success").Inc()
		as.metrics.TokensUsed.WithLabelValues("input").Add(float64(result.TokenUsage.InputTokens))
		as.metrics.TokensUsed.WithLabelValues("output").Add(float64(result.TokenUsage.OutputTokens))

		total = total.Add(result.TokenUsage)
		results = append(results, *result)
	}

	rep := &models.AnalysisReport{
		GeneratedAt:     as.now(),
		TotalLocations:  len(results),
		TotalTokenUsage: total.Rounded(),
		Results:         results,
		Failures:        failures,
	}

	report.RenderSummary(as.out, rep)

	if len(results) == 0 {
		as.log.WarnContext(ctx, "No location produced a result; skipping report persistence")
		return rep, nil
	}

	path, err := as.store.Write(rep)
	if err != nil {
		return rep, err
	}
	as.log.InfoContext(ctx, "Analysis batch finished", "report", path,
		"results", len(results), "failures", len(failures))

	as.persistToDatabase(ctx, rep)

	return rep, nil
}

// processLocation runs the linear per-coordinate pipeline: fetch the image
// aimed at the heading, submit it for inference, parse the answer, and
// optionally resolve the address. Any fetch or inference error aborts this
// coordinate only.
func (as *AnalysisService) processLocation(
	ctx context.Context,
	coord models.Coordinate,
	heading float64,
) (*models.AnalysisResult, error) {
	fetchStart := time.Now()
	image, err := as.fetcher.Fetch(ctx, coord, heading)
	as.metrics.RequestSeconds.WithLabelValues("streetview").Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		return nil, err
	}

	inferStart := time.Now()
	analysis, err := as.analyzer.Analyze(ctx, image, coord)
	as.metrics.RequestSeconds.WithLabelValues("anthropic").Observe(time.Since(inferStart).Seconds())
	if err != nil {
		return nil, err
	}

	measurement := vision.ParseMeasurement(analysis.Answer)
	if !measurement.Complete() {
		as.log.WarnContext(ctx, "Answer was only partially parseable", "location", coord.String())
	}

	var address string
	if as.resolver != nil {
		address, err = as.resolver.Resolve(ctx, coord)
		if err != nil {
			// Enrichment only; the result stands without an address.
			as.log.WarnContext(ctx, "Failed to resolve address", "location", coord.String(), "error", err)
			address = ""
		}
	}

	return &models.AnalysisResult{
		Coordinate:       coord,
		Address:          address,
		Heading:          heading,
		Measurement:      measurement,
		RawAnswer:        analysis.Answer,
		TokenUsage:       analysis.Usage,
		ProcessingTimeMs: analysis.ProcessingTimeMs,
	}, nil
}

// persistToDatabase mirrors the report into Postgres when a repository is
// configured. Row-level errors are logged and skipped; the JSON report on
// disk remains the source of truth.
func (as *AnalysisService) persistToDatabase(ctx context.Context, rep *models.AnalysisReport) {
	if as.repo == nil {
		return
	}

	runID, err := as.repo.CreateRun(ctx, rep)
	if err != nil {
		as.log.ErrorContext(ctx, "Failed to create analysis run", "error", err)
		return
	}

	for _, result := range rep.Results {
		if err = as.repo.SaveResult(ctx, runID, result); err != nil {
			as.log.ErrorContext(ctx, "Failed to save result",
				"location", result.Coordinate.String(), "error", err)
		}
	}

	for _, failure := range rep.Failures {
		if err = as.repo.SaveFailure(ctx, runID, failure); err != nil {
			as.log.ErrorContext(ctx, "Failed to save failure",
				"location", failure.Coordinate.String(), "error", err)
		}
	}

	if err = as.repo.FinishRun(ctx, runID, rep); err != nil {
		as.log.ErrorContext(ctx, "Failed to finish analysis run", "run_id", runID, "error", err)
	}
}
