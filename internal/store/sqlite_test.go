package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bce-import/internal/bce"
	"github.com/sells-group/bce-import/internal/bce/transform"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testRecord(est, slug string) bce.CommerceRecord {
	snapshot := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)
	return bce.CommerceRecord{
		EstablishmentNumber: est,
		EnterpriseNumber:    "0123.456.789",
		Name:                "Boucherie Centrale",
		Slug:                slug,
		Category:            transform.CategoryBoucherie,
		NaceVersion:         "2025",
		NaceCode:            "47221",
		MatchedNaceCodes:    []string{"4722", "47221"},
		AddressLine:         "Rue de Test 12",
		PostalCode:          "1000",
		City:                "Bruxelles",
		Country:             "BE",
		Phone:               "02 000 00 00",
		Source:              "bce-kbo",
		SourceSnapshotDate:  &snapshot,
	}
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Ping(context.Background()))
}

func TestSQLite_RunLifecycle_Success(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.StartRun(ctx, RunStart{DataDir: "/data/bce", NaceVersion: "2025", NaceCodes: []string{"47.22"}})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusRunning, got.Status)
	assert.Equal(t, "/data/bce", got.DataDir)
	assert.Equal(t, []string{"47.22"}, got.NaceCodes)
	assert.Nil(t, got.FinishedAt)

	snapshot := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.CompleteRun(ctx, run.ID, RunStats{
		SnapshotDate: &snapshot,
		RowsScanned:  120,
		RowsSelected: 10,
		RowsInserted: 8,
		RowsSkipped:  2,
	}))

	got, err = st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusSuccess, got.Status)
	assert.Equal(t, int64(120), got.RowsScanned)
	assert.Equal(t, 10, got.RowsSelected)
	assert.Equal(t, int64(8), got.RowsInserted)
	assert.Equal(t, 2, got.RowsSkipped)
	require.NotNil(t, got.SnapshotDate)
	assert.True(t, snapshot.Equal(*got.SnapshotDate))
	assert.Nil(t, got.ExtractedAt)
	assert.NotNil(t, got.FinishedAt)
	assert.Empty(t, got.ErrorMessage)
}

func TestSQLite_RunLifecycle_Failed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.StartRun(ctx, RunStart{DataDir: "/data/bce", NaceVersion: "2025"})
	require.NoError(t, err)
	require.NoError(t, st.FailRun(ctx, run.ID, "bce: missing required files"))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, "bce: missing required files", got.ErrorMessage)
	assert.Empty(t, got.NaceCodes)
	assert.NotNil(t, got.FinishedAt)
}

func TestSQLite_RunNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	assert.ErrorIs(t, st.CompleteRun(ctx, "missing", RunStats{}), ErrRunNotFound)
	assert.ErrorIs(t, st.FailRun(ctx, "missing", "boom"), ErrRunNotFound)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	var ids []string
	for range 3 {
		run, err := st.StartRun(ctx, RunStart{DataDir: "/data", NaceVersion: "2025"})
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}
	require.NoError(t, st.FailRun(ctx, ids[1], "boom"))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)

	failed, err := st.ListRuns(ctx, RunFilter{Status: RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, ids[1], failed[0].ID)

	page, err := st.ListRuns(ctx, RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)
}

func TestSQLite_ReplaceCommerces(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.StartRun(ctx, RunStart{DataDir: "/data", NaceVersion: "2025"})
	require.NoError(t, err)

	first := []bce.CommerceRecord{
		testRecord("2.000.000.111", "boucherie-centrale-1000-2000000111"),
		testRecord("2.000.000.222", "boucherie-centrale-1000-2000000222"),
		testRecord("2.000.000.333", "boucherie-centrale-1000-2000000333"),
	}
	n, err := st.ReplaceCommerces(ctx, run.ID, first, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	got, err := st.ListCommerces(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, first[0].EstablishmentNumber, got[0].EstablishmentNumber)
	assert.Equal(t, []string{"4722", "47221"}, got[0].MatchedNaceCodes)
	assert.Equal(t, transform.CategoryBoucherie, got[0].Category)
	assert.Equal(t, "02 000 00 00", got[0].Phone)
	assert.Empty(t, got[0].Email)
	require.NotNil(t, got[0].SourceSnapshotDate)
	assert.True(t, first[0].SourceSnapshotDate.Equal(*got[0].SourceSnapshotDate))
	assert.Nil(t, got[0].SourceExtractedAt)

	second := []bce.CommerceRecord{testRecord("2.000.000.444", "boucherie-centrale-1000-2000000444")}
	n, err = st.ReplaceCommerces(ctx, run.ID, second, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err = st.ListCommerces(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2.000.000.444", got[0].EstablishmentNumber)
}

func TestSQLite_ReplaceCommerces_RollsBackOnError(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.StartRun(ctx, RunStart{DataDir: "/data", NaceVersion: "2025"})
	require.NoError(t, err)

	_, err = st.ReplaceCommerces(ctx, run.ID, []bce.CommerceRecord{
		testRecord("2.000.000.111", "slug-a"),
	}, 10)
	require.NoError(t, err)

	// Duplicate slugs violate the unique constraint on the second insert.
	_, err = st.ReplaceCommerces(ctx, run.ID, []bce.CommerceRecord{
		testRecord("2.000.000.222", "slug-b"),
		testRecord("2.000.000.333", "slug-b"),
	}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2.000.000.333")

	got, err := st.ListCommerces(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2.000.000.111", got[0].EstablishmentNumber)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn", nil)
	assert.ErrorContains(t, err, "unknown driver")

	_, err = Open(context.Background(), DriverSQLite, "", nil)
	assert.ErrorContains(t, err, "database url is required")
}

func TestOpen_SQLite(t *testing.T) {
	st, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "open.db"), nil)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	assert.IsType(t, &SQLiteStore{}, st)
}

func TestInsertCommerceSQL_MultiRow(t *testing.T) {
	q := insertCommerceSQL(3)
	assert.True(t, strings.HasPrefix(q, "INSERT INTO commerces (establishment_number"))
	assert.Equal(t, 3*len(commerceColumns), strings.Count(q, "?"))
	assert.Equal(t, 3, strings.Count(q, "(?"))
}

func TestSQLite_ReplaceCommerces_BatchLargerThanRows(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.StartRun(ctx, RunStart{DataDir: "/data", NaceVersion: "2025"})
	require.NoError(t, err)

	records := []bce.CommerceRecord{
		testRecord("2.000.000.111", "slug-a"),
		testRecord("2.000.000.222", "slug-b"),
		testRecord("2.000.000.333", "slug-c"),
		testRecord("2.000.000.444", "slug-d"),
		testRecord("2.000.000.555", "slug-e"),
	}
	for _, batch := range []int{1, 2, 5, 100000} {
		n, err := st.ReplaceCommerces(ctx, run.ID, records, batch)
		require.NoError(t, err, "batch %d", batch)
		assert.Equal(t, int64(5), n, "batch %d", batch)

		got, err := st.ListCommerces(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 5, "batch %d", batch)
	}
}
