// Package store persists import runs and the commerce table.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bce-import/internal/bce"
)

// RunStatus is the lifecycle state of an import run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// ErrRunNotFound is returned when no import run has the requested id.
var ErrRunNotFound = eris.New("store: import run not found")

// CommerceTable is the table holding the current commerce list.
const CommerceTable = "commerces"

// ImportRun is one execution of the importer.
type ImportRun struct {
	ID           string     `json:"id"`
	Status       RunStatus  `json:"status"`
	DataDir      string     `json:"data_dir"`
	NaceVersion  string     `json:"nace_version"`
	NaceCodes    []string   `json:"nace_codes"`
	SnapshotDate *time.Time `json:"snapshot_date,omitempty"`
	ExtractedAt  *time.Time `json:"extracted_at,omitempty"`
	RowsScanned  int64      `json:"rows_scanned"`
	RowsSelected int        `json:"rows_selected"`
	RowsInserted int64      `json:"rows_inserted"`
	RowsSkipped  int        `json:"rows_skipped"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// RunStart describes a run about to begin.
type RunStart struct {
	DataDir     string
	NaceVersion string
	NaceCodes   []string
}

// RunStats are the counters recorded when a run succeeds.
type RunStats struct {
	SnapshotDate *time.Time
	ExtractedAt  *time.Time
	RowsScanned  int64
	RowsSelected int
	RowsInserted int64
	RowsSkipped  int
}

// StatsFromResult copies the build counters of res into RunStats.
func StatsFromResult(res *bce.Result, inserted int64) RunStats {
	return RunStats{
		SnapshotDate: res.SnapshotDate,
		ExtractedAt:  res.ExtractedAt,
		RowsScanned:  res.RowsScanned,
		RowsSelected: res.RowsSelected,
		RowsInserted: inserted,
		RowsSkipped:  res.RowsSkipped,
	}
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status RunStatus `json:"status,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for the importer.
type Store interface {
	// Runs
	StartRun(ctx context.Context, start RunStart) (*ImportRun, error)
	CompleteRun(ctx context.Context, runID string, stats RunStats) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*ImportRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]ImportRun, error)

	// Commerces
	ReplaceCommerces(ctx context.Context, runID string, records []bce.CommerceRecord, batchSize int) (int64, error)
	ListCommerces(ctx context.Context) ([]bce.CommerceRecord, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// commerceColumns is the insert column order shared by both backends.
var commerceColumns = []string{
	"establishment_number",
	"enterprise_number",
	"import_run_id",
	"name",
	"slug",
	"category",
	"nace_version",
	"nace_code",
	"matched_nace_codes",
	"address_line",
	"postal_code",
	"city",
	"country",
	"phone",
	"email",
	"website",
	"source",
	"source_snapshot_date",
	"source_extracted_at",
}

const defaultListLimit = 100

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
