package repository

import (
	"context"
	"fmt"

	"github.com/ritogk/roadscan/internal/models"
)

// CreateRun inserts a new analysis run and returns its identifier.
// Totals stay NULL until FinishRun fills them in.
func (r *Repository) CreateRun(ctx context.Context, report *models.AnalysisReport) (int64, error) {
	query := `
		INSERT INTO analysis_runs (generated_at, total_locations)
		VALUES ($1, $2)
		RETURNING run_id;
	`

	var runID int64
	err := r.db.QueryRow(ctx, query, report.GeneratedAt, report.TotalLocations).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}

	r.log.DebugContext(ctx, "Created analysis run", "run_id", runID)

	return runID, nil
}

// SaveResult appends one successful coordinate result to the run. Unknown
// measurement fields are stored as NULL, never coerced to zero.
func (r *Repository) SaveResult(ctx context.Context, runID int64, result models.AnalysisResult) error {
	query := `
		INSERT INTO analysis_results (
			run_id, latitude, longitude, address, heading,
			lanes, lane_width, center_line,
			shoulder_left, shoulder_right, guardrail_left, guardrail_right,
			raw_answer, input_tokens, output_tokens, cost_usd, cost_jpy, processing_time_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`

	measurement := result.Measurement
	_, err := r.db.Exec(ctx, query,
		runID, result.Coordinate.Latitude, result.Coordinate.Longitude, result.Address, result.Heading,
		measurement.Lanes, measurement.LaneWidth, measurement.CenterLine,
		measurement.ShoulderLeft, measurement.ShoulderRight, measurement.GuardrailLeft, measurement.GuardrailRight,
		result.RawAnswer, result.TokenUsage.InputTokens, result.TokenUsage.OutputTokens,
		result.TokenUsage.CostUSD, result.TokenUsage.CostJPY, result.ProcessingTimeMs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis result: %w", err)
	}

	return nil
}

// SaveFailure appends a typed failure entry for a coordinate that produced
// no result.
func (r *Repository) SaveFailure(ctx context.Context, runID int64, failure models.Failure) error {
	query := `
		INSERT INTO analysis_failures (run_id, latitude, longitude, reason, occurred_at)
		VALUES ($1, $2, $3, $4, $5);
	`

	_, err := r.db.Exec(ctx, query,
		runID, failure.Coordinate.Latitude, failure.Coordinate.Longitude, failure.Reason, failure.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis failure: %w", err)
	}

	return nil
}

// FinishRun records the aggregated token usage for the run.
func (r *Repository) FinishRun(ctx context.Context, runID int64, report *models.AnalysisReport) error {
	query := `
		UPDATE analysis_runs
		SET
			input_tokens = $1,
			output_tokens = $2,
			cost_usd = $3,
			cost_jpy = $4
		WHERE run_id = $5;
	`

	total := report.TotalTokenUsage
	_, err := r.db.Exec(ctx, query,
		total.InputTokens, total.OutputTokens, total.CostUSD, total.CostJPY, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish analysis run: %w", err)
	}

	return nil
}
