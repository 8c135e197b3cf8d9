package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ritogk/roadscan/internal/models"
)

// filenameSanitizer replaces the characters of an RFC3339 timestamp that are
// awkward in filenames.
var filenameSanitizer = strings.NewReplacer(":", "-", ".", "-")

// Store persists analysis reports as JSON documents under a fixed directory.
type Store struct {
	dir string
	log *slog.Logger
}

// NewStore creates a report store writing into dir.
func NewStore(dir string, log *slog.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Write serializes the report to analysis_<timestamp>.json under the store
// directory and returns the written path. Each report is written exactly once.
func (s *Store) Write(report *models.AnalysisReport) (string, error) {
	const dirPerm = 0o755
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("analysis_%s.json", filenameSanitizer.Replace(report.GeneratedAt.Format(time.RFC3339)))
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	const filePerm = 0o644
	if err = os.WriteFile(path, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	s.log.Info("Report written", "path", path, "results", len(report.Results), "failures", len(report.Failures))

	return path, nil
}
