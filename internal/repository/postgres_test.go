package repository_test

import (
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/ritogk/roadscan/internal/models"
	"github.com/ritogk/roadscan/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const createRunQuery = `
	INSERT INTO analysis_runs (generated_at, total_locations)
	VALUES ($1, $2)
	RETURNING run_id;
`

const saveFailureQuery = `
	INSERT INTO analysis_failures (run_id, latitude, longitude, reason, occurred_at)
	VALUES ($1, $2, $3, $4, $5);
`

const finishRunQuery = `
	UPDATE analysis_runs
	SET
		input_tokens = $1,
		output_tokens = $2,
		cost_usd = $3,
		cost_jpy = $4
	WHERE run_id = $5;
`

func testReport() *models.AnalysisReport {
	return &models.AnalysisReport{
		GeneratedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		TotalLocations: 3,
		TotalTokenUsage: models.TokenUsage{
			InputTokens:  4500,
			OutputTokens: 240,
			CostUSD:      0.0171,
			CostJPY:      2.57,
		},
	}
}

func TestCreateRun(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		rep := testReport()

		mock.ExpectQuery(regexp.QuoteMeta(createRunQuery)).
			WithArgs(rep.GeneratedAt, rep.TotalLocations).
			WillReturnRows(pgxmock.NewRows([]string{"run_id"}).AddRow(int64(7)))

		runID, err := repo.CreateRun(ctx, rep)

		require.NoError(t, err)
		assert.Equal(t, int64(7), runID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - insert fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		rep := testReport()

		mock.ExpectQuery(regexp.QuoteMeta(createRunQuery)).
			WithArgs(rep.GeneratedAt, rep.TotalLocations).
			WillReturnError(assert.AnError)

		runID, err := repo.CreateRun(ctx, rep)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to insert analysis run")
		require.ErrorIs(t, err, assert.AnError)
		assert.Zero(t, runID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveResult(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	lanes := 2
	laneWidth := 3.2
	centerLine := true

	result := models.AnalysisResult{
		Coordinate: models.Coordinate{Latitude: 35.0, Longitude: 139.0},
		Address:    "東京都港区",
		Heading:    44.8,
		Measurement: models.Measurement{
			Lanes:      &lanes,
			LaneWidth:  &laneWidth,
			CenterLine: &centerLine,
		},
		RawAnswer:        `{"lanes": 2}`,
		TokenUsage:       models.TokenUsage{InputTokens: 1500, OutputTokens: 80, CostUSD: 0.0057, CostJPY: 0.855},
		ProcessingTimeMs: 2310,
	}

	t.Run("success - unknown fields stored as NULL", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analysis_results")).
			WithArgs(
				int64(7), 35.0, 139.0, "東京都港区", 44.8,
				&lanes, &laneWidth, &centerLine,
				(*float64)(nil), (*float64)(nil), (*bool)(nil), (*bool)(nil),
				`{"lanes": 2}`, int64(1500), int64(80), 0.0057, 0.855, int64(2310),
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.SaveResult(ctx, 7, result)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - exec fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analysis_results")).
			WillReturnError(assert.AnError)

		err = repo.SaveResult(ctx, 7, result)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to insert analysis result")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveFailure(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	failure := models.Failure{
		Coordinate: models.Coordinate{Latitude: 35.002, Longitude: 139.002},
		Reason:     "street view imagery is not available: ZERO_RESULTS",
		OccurredAt: time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC),
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(saveFailureQuery)).
			WithArgs(int64(7), 35.002, 139.002, failure.Reason, failure.OccurredAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.SaveFailure(ctx, 7, failure)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - exec fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(saveFailureQuery)).
			WillReturnError(assert.AnError)

		err = repo.SaveFailure(ctx, 7, failure)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to insert analysis failure")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFinishRun(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		rep := testReport()

		mock.ExpectExec(regexp.QuoteMeta(finishRunQuery)).
			WithArgs(int64(4500), int64(240), 0.0171, 2.57, int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.FinishRun(ctx, 7, rep)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - exec fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(finishRunQuery)).
			WillReturnError(assert.AnError)

		err = repo.FinishRun(ctx, 7, testReport())

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to finish analysis run")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
