package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/bce-import/internal/bce"
	"github.com/sells-group/bce-import/internal/bce/transform"
	"github.com/sells-group/bce-import/internal/db"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Close does not close it.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS import_runs (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	status            TEXT NOT NULL DEFAULT 'RUNNING',
	data_dir          TEXT NOT NULL,
	nace_version      TEXT NOT NULL,
	nace_codes        TEXT[] NOT NULL DEFAULT '{}',
	snapshot_date     TIMESTAMPTZ,
	extract_timestamp TIMESTAMPTZ,
	rows_scanned      BIGINT NOT NULL DEFAULT 0,
	rows_selected     INTEGER NOT NULL DEFAULT 0,
	rows_inserted     BIGINT NOT NULL DEFAULT 0,
	rows_skipped      INTEGER NOT NULL DEFAULT 0,
	error_message     TEXT,
	started_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at       TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_import_runs_status ON import_runs(status);
CREATE INDEX IF NOT EXISTS idx_import_runs_started_at ON import_runs(started_at DESC);

CREATE TABLE IF NOT EXISTS commerces (
	establishment_number TEXT PRIMARY KEY,
	enterprise_number    TEXT NOT NULL,
	import_run_id        TEXT REFERENCES import_runs(id),
	name                 TEXT NOT NULL,
	slug                 TEXT NOT NULL UNIQUE,
	category             TEXT NOT NULL,
	nace_version         TEXT NOT NULL,
	nace_code            TEXT NOT NULL,
	matched_nace_codes   TEXT[] NOT NULL DEFAULT '{}',
	address_line         TEXT NOT NULL,
	postal_code          TEXT NOT NULL,
	city                 TEXT NOT NULL,
	country              TEXT NOT NULL,
	phone                TEXT,
	email                TEXT,
	website              TEXT,
	source               TEXT NOT NULL,
	source_snapshot_date TIMESTAMPTZ,
	source_extracted_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_commerces_city ON commerces(city);
CREATE INDEX IF NOT EXISTS idx_commerces_postal_code ON commerces(postal_code);
CREATE INDEX IF NOT EXISTS idx_commerces_category ON commerces(category);
`

const runColumns = `id, status, data_dir, nace_version, nace_codes, snapshot_date, extract_timestamp,
	rows_scanned, rows_selected, rows_inserted, rows_skipped, error_message, started_at, finished_at`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) StartRun(ctx context.Context, start RunStart) (*ImportRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	codes := start.NaceCodes
	if codes == nil {
		codes = []string{}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO import_runs (id, status, data_dir, nace_version, nace_codes, started_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, string(RunStatusRunning), start.DataDir, start.NaceVersion, codes, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert import run")
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

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, stats RunStats) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE import_runs SET status = $1, finished_at = $2, snapshot_date = $3, extract_timestamp = $4,
		 rows_scanned = $5, rows_selected = $6, rows_inserted = $7, rows_skipped = $8
		 WHERE id = $9`,
		string(RunStatusSuccess), time.Now().UTC(), stats.SnapshotDate, stats.ExtractedAt,
		stats.RowsScanned, stats.RowsSelected, stats.RowsInserted, stats.RowsSkipped, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete import run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE import_runs SET status = $1, finished_at = $2, error_message = $3 WHERE id = $4`,
		string(RunStatusFailed), time.Now().UTC(), message, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail import run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*ImportRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM import_runs WHERE id = $1`,
		runID,
	)
	r, err := scanPostgresRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrRunNotFound, "%s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get import run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]ImportRun, error) {
	query := `SELECT ` + runColumns + ` FROM import_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list import runs")
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		r, err := scanPostgresRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan import run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list import runs iterate")
}

// ReplaceCommerces swaps the whole commerce table for records in one transaction.
func (s *PostgresStore) ReplaceCommerces(ctx context.Context, runID string, records []bce.CommerceRecord, batchSize int) (int64, error) {
	rows := make([][]any, 0, len(records))
	for i := range records {
		rows = append(rows, commerceValues(runID, &records[i], records[i].MatchedNaceCodes))
	}

	n, err := db.ReplaceAll(ctx, s.pool, db.ReplaceConfig{
		Table:     CommerceTable,
		Columns:   commerceColumns,
		BatchSize: batchSize,
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: replace commerces")
	}
	return n, nil
}

func (s *PostgresStore) ListCommerces(ctx context.Context) ([]bce.CommerceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT establishment_number, enterprise_number, name, slug, category, nace_version, nace_code,
		 matched_nace_codes, address_line, postal_code, city, country, phone, email, website,
		 source, source_snapshot_date, source_extracted_at
		 FROM commerces ORDER BY establishment_number`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list commerces")
	}
	defer rows.Close()

	var out []bce.CommerceRecord
	for rows.Next() {
		var (
			rec                   bce.CommerceRecord
			category              string
			phone, email, website *string
		)
		if err := rows.Scan(
			&rec.EstablishmentNumber, &rec.EnterpriseNumber, &rec.Name, &rec.Slug, &category,
			&rec.NaceVersion, &rec.NaceCode, &rec.MatchedNaceCodes, &rec.AddressLine,
			&rec.PostalCode, &rec.City, &rec.Country, &phone, &email, &website,
			&rec.Source, &rec.SourceSnapshotDate, &rec.SourceExtractedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan commerce")
		}
		rec.Category = transform.Category(category)
		rec.Phone = derefString(phone)
		rec.Email = derefString(email)
		rec.Website = derefString(website)
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list commerces iterate")
}

// commerceValues orders one record's fields as commerceColumns. The matched codes
// are passed in backend form (a text array for Postgres, JSON for SQLite).
func commerceValues(runID string, rec *bce.CommerceRecord, matched any) []any {
	return []any{
		rec.EstablishmentNumber,
		rec.EnterpriseNumber,
		runID,
		rec.Name,
		rec.Slug,
		string(rec.Category),
		rec.NaceVersion,
		rec.NaceCode,
		matched,
		rec.AddressLine,
		rec.PostalCode,
		rec.City,
		rec.Country,
		nullString(rec.Phone),
		nullString(rec.Email),
		nullString(rec.Website),
		rec.Source,
		rec.SourceSnapshotDate,
		rec.SourceExtractedAt,
	}
}

func scanPostgresRun(row pgx.Row) (*ImportRun, error) {
	var (
		r       ImportRun
		status  string
		errMsg  *string
		codes   []string
		started time.Time
	)
	err := row.Scan(&r.ID, &status, &r.DataDir, &r.NaceVersion, &codes, &r.SnapshotDate, &r.ExtractedAt,
		&r.RowsScanned, &r.RowsSelected, &r.RowsInserted, &r.RowsSkipped, &errMsg, &started, &r.FinishedAt)
	if err != nil {
		return nil, err
	}
	r.Status = RunStatus(status)
	r.NaceCodes = codes
	r.ErrorMessage = derefString(errMsg)
	r.StartedAt = started
	return &r, nil
}
