package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ritogk/roadscan/internal/models"
)

// Database is the subset of pgxpool.Pool the repository needs. It keeps the
// repository mockable in tests.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository persists analysis runs, results and failures in Postgres.
// The store is append-only: rows are never updated after a run finishes.
type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface lists the persistence operations the orchestrator uses.
type Interface interface {
	CreateRun(ctx context.Context, report *models.AnalysisReport) (int64, error)
	SaveResult(ctx context.Context, runID int64, result models.AnalysisResult) error
	SaveFailure(ctx context.Context, runID int64, failure models.Failure) error
	FinishRun(ctx context.Context, runID int64, report *models.AnalysisReport) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// NewDatabase opens a pgx connection pool and verifies it with a ping.
func NewDatabase(ctx context.Context, host, port, user, password, name string) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
