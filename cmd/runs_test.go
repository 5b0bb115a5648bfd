package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/bce-import/internal/bce"
	"github.com/sells-group/bce-import/internal/importer"
	"github.com/sells-group/bce-import/internal/store"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 1, 19, 10, 30, 0, 0, time.UTC)
	finished := now.Add(2 * time.Minute)
	snapshot := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)
	runs := []store.ImportRun{
		{
			ID:           "abc12345-6789-0000-0000-000000000000",
			Status:       store.RunStatusSuccess,
			SnapshotDate: &snapshot,
			RowsSelected: 412,
			RowsInserted: 398,
			RowsSkipped:  14,
			StartedAt:    now,
			FinishedAt:   &finished,
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Status:    store.RunStatusRunning,
			StartedAt: now.Add(-1 * time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "SUCCESS")
	assert.Contains(t, output, "RUNNING")
	assert.Contains(t, output, "2026-01-18")
	assert.Contains(t, output, "398")
	assert.Contains(t, output, "2026-01-19 10:30")
	assert.Contains(t, output, "2m0s")
}

func TestFormatRunsList_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatRunsList(&buf, nil)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "--")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "", truncateID(""))
}

func TestFormatImportSummary(t *testing.T) {
	var buf bytes.Buffer
	formatImportSummary(&buf, &importer.Summary{
		RunID:        "run-1",
		Result:       &bce.Result{RowsScanned: 1200, RowsSelected: 20, RowsEmitted: 18, RowsSkipped: 2},
		RowsInserted: 18,
		Elapsed:      1500 * time.Millisecond,
	})

	output := buf.String()
	assert.Contains(t, output, "run-1")
	assert.Contains(t, output, "1200")
	assert.Contains(t, output, "Rows inserted:")
	assert.Contains(t, output, "1.5s")
}

func TestFormatBuildResult(t *testing.T) {
	snapshot := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	formatBuildResult(&buf, &bce.Result{RowsScanned: 17, RowsSelected: 6, RowsEmitted: 1, RowsSkipped: 5, SnapshotDate: &snapshot})

	output := buf.String()
	assert.Contains(t, output, "Snapshot date:")
	assert.Contains(t, output, "2026-01-18")
	assert.NotContains(t, output, "Extracted at:")
	assert.Contains(t, output, "Rows emitted:")
}
