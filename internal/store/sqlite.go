package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/bce-import/internal/bce"
	"github.com/sells-group/bce-import/internal/bce/transform"
	"github.com/sells-group/bce-import/internal/db"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: conn}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS import_runs (
	id                TEXT PRIMARY KEY,
	status            TEXT NOT NULL DEFAULT 'RUNNING',
	data_dir          TEXT NOT NULL,
	nace_version      TEXT NOT NULL,
	nace_codes        TEXT NOT NULL DEFAULT '[]',
	snapshot_date     DATETIME,
	extract_timestamp DATETIME,
	rows_scanned      INTEGER NOT NULL DEFAULT 0,
	rows_selected     INTEGER NOT NULL DEFAULT 0,
	rows_inserted     INTEGER NOT NULL DEFAULT 0,
	rows_skipped      INTEGER NOT NULL DEFAULT 0,
	error_message     TEXT,
	started_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at       DATETIME
);

CREATE INDEX IF NOT EXISTS idx_import_runs_status ON import_runs(status);
CREATE INDEX IF NOT EXISTS idx_import_runs_started_at ON import_runs(started_at);

CREATE TABLE IF NOT EXISTS commerces (
	establishment_number TEXT PRIMARY KEY,
	enterprise_number    TEXT NOT NULL,
	import_run_id        TEXT REFERENCES import_runs(id),
	name                 TEXT NOT NULL,
	slug                 TEXT NOT NULL UNIQUE,
	category             TEXT NOT NULL,
	nace_version         TEXT NOT NULL,
	nace_code            TEXT NOT NULL,
	matched_nace_codes   TEXT NOT NULL DEFAULT '[]',
	address_line         TEXT NOT NULL,
	postal_code          TEXT NOT NULL,
	city                 TEXT NOT NULL,
	country              TEXT NOT NULL,
	phone                TEXT,
	email                TEXT,
	website              TEXT,
	source               TEXT NOT NULL,
	source_snapshot_date DATETIME,
	source_extracted_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_commerces_city ON commerces(city);
CREATE INDEX IF NOT EXISTS idx_commerces_postal_code ON commerces(postal_code);
`

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

// Migrate creates the import run and commerce tables if they do not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// StartRun records a new RUNNING import run.
func (s *SQLiteStore) StartRun(ctx context.Context, start RunStart) (*ImportRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	codes := start.NaceCodes
	if codes == nil {
		codes = []string{}
	}

	codesJSON, err := json.Marshal(codes)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal nace codes")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, status, data_dir, nace_version, nace_codes, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(RunStatusRunning), start.DataDir, start.NaceVersion, string(codesJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert import run")
	}

	return &ImportRun{
		ID:          id,
		Status:      RunStatusRunning,
		DataDir:     start.DataDir,
		NaceVersion: start.NaceVersion,
		NaceCodes:   codes,
		StartedAt:   now,
	}, nil
}

// CompleteRun marks the run SUCCESS and stores its counters.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, stats RunStats) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE import_runs SET status = ?, finished_at = ?, snapshot_date = ?, extract_timestamp = ?,
		 rows_scanned = ?, rows_selected = ?, rows_inserted = ?, rows_skipped = ?
		 WHERE id = ?`,
		string(RunStatusSuccess), time.Now().UTC(), stats.SnapshotDate, stats.ExtractedAt,
		stats.RowsScanned, stats.RowsSelected, stats.RowsInserted, stats.RowsSkipped, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete import run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

// FailRun marks the run FAILED with message.
func (s *SQLiteStore) FailRun(ctx context.Context, runID string, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE import_runs SET status = ?, finished_at = ?, error_message = ? WHERE id = ?`,
		string(RunStatusFailed), time.Now().UTC(), message, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail import run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

// GetRun returns one import run or ErrRunNotFound.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*ImportRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM import_runs WHERE id = ?`,
		runID,
	)
	r, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get import run %s", runID)
	}
	return r, nil
}

// ListRuns returns import runs matching filter, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]ImportRun, error) {
	query := `SELECT ` + runColumns + ` FROM import_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC, rowid DESC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list import runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []ImportRun
	for rows.Next() {
		r, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan import run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list import runs iterate")
}

// ReplaceCommerces swaps the whole commerce table for records in one transaction,
// inserting batchSize rows per INSERT statement.
func (s *SQLiteStore) ReplaceCommerces(ctx context.Context, runID string, records []bce.CommerceRecord, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = db.DefaultBatchSize
	}
	batchSize = min(batchSize, sqliteMaxVariables/len(commerceColumns))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: replace commerces: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+CommerceTable); err != nil {
		return 0, eris.Wrap(err, "sqlite: replace commerces: delete")
	}

	var total int64
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		batch := records[start:end]

		args := make([]any, 0, len(batch)*len(commerceColumns))
		for i := range batch {
			rec := &batch[i]
			matched, err := json.Marshal(rec.MatchedNaceCodes)
			if err != nil {
				return 0, eris.Wrapf(err, "sqlite: marshal matched codes for %s", rec.EstablishmentNumber)
			}
			args = append(args, commerceValues(runID, rec, string(matched))...)
		}

		res, err := tx.ExecContext(ctx, insertCommerceSQL(len(batch)), args...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: replace commerces: insert %s..%s",
				batch[0].EstablishmentNumber, batch[len(batch)-1].EstablishmentNumber)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: replace commerces: rows affected")
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: replace commerces: commit")
	}
	return total, nil
}

// ListCommerces returns the commerce table ordered by establishment number.
func (s *SQLiteStore) ListCommerces(ctx context.Context) ([]bce.CommerceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT establishment_number, enterprise_number, name, slug, category, nace_version, nace_code,
		 matched_nace_codes, address_line, postal_code, city, country, phone, email, website,
		 source, source_snapshot_date, source_extracted_at
		 FROM commerces ORDER BY establishment_number`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list commerces")
	}
	defer rows.Close() //nolint:errcheck

	var out []bce.CommerceRecord
	for rows.Next() {
		var (
			rec                   bce.CommerceRecord
			category, matched     string
			phone, email, website sql.NullString
			snapshot, extracted   sql.NullTime
		)
		if err := rows.Scan(
			&rec.EstablishmentNumber, &rec.EnterpriseNumber, &rec.Name, &rec.Slug, &category,
			&rec.NaceVersion, &rec.NaceCode, &matched, &rec.AddressLine,
			&rec.PostalCode, &rec.City, &rec.Country, &phone, &email, &website,
			&rec.Source, &snapshot, &extracted,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan commerce")
		}
		if err := json.Unmarshal([]byte(matched), &rec.MatchedNaceCodes); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal matched codes for %s", rec.EstablishmentNumber)
		}
		rec.Category = transform.Category(category)
		rec.Phone = phone.String
		rec.Email = email.String
		rec.Website = website.String
		rec.SourceSnapshotDate = nullTime(snapshot)
		rec.SourceExtractedAt = nullTime(extracted)
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list commerces iterate")
}

// sqliteMaxVariables is SQLite's default bound-parameter limit per statement.
const sqliteMaxVariables = 32766

// insertCommerceSQL builds a multi-row INSERT for n commerces.
func insertCommerceSQL(n int) string {
	row := "(?" + strings.Repeat(", ?", len(commerceColumns)-1) + ")"
	var b strings.Builder
	b.WriteString(`INSERT INTO ` + CommerceTable + ` (` + strings.Join(commerceColumns, ", ") + `) VALUES `)
	for i := range n {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(row)
	}
	return b.String()
}

// helpers

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row scannable) (*ImportRun, error) {
	var (
		r                   ImportRun
		status, codes       string
		errMsg              sql.NullString
		snapshot, extracted sql.NullTime
		finished            sql.NullTime
	)
	err := row.Scan(&r.ID, &status, &r.DataDir, &r.NaceVersion, &codes, &snapshot, &extracted,
		&r.RowsScanned, &r.RowsSelected, &r.RowsInserted, &r.RowsSkipped, &errMsg, &r.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(codes), &r.NaceCodes); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal nace codes")
	}
	r.Status = RunStatus(status)
	r.ErrorMessage = errMsg.String
	r.SnapshotDate = nullTime(snapshot)
	r.ExtractedAt = nullTime(extracted)
	r.FinishedAt = nullTime(finished)
	return &r, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
