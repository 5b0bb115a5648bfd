package db

import (
	"context"

	"github.com/rotisserie/eris"
)

// DefaultBatchSize is the number of rows sent per COPY when none is configured.
const DefaultBatchSize = 1000

// ReplaceConfig defines the parameters for a full table replacement.
type ReplaceConfig struct {
	Table     string   // target table (e.g., "commerces")
	Columns   []string // columns being inserted, in row order
	BatchSize int      // rows per COPY; <= 0 means DefaultBatchSize
}

// ReplaceAll deletes every row of the table and inserts rows in its place,
// inside one transaction. Rows are copied in batches of cfg.BatchSize; any
// failure rolls the table back to its previous content.
func ReplaceAll(ctx context.Context, pool Pool, cfg ReplaceConfig, rows [][]any) (int64, error) {
	if cfg.Table == "" {
		return 0, eris.New("db: replace: no table specified")
	}
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: replace: no columns specified")
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM "+Identifier(cfg.Table).Sanitize()); err != nil {
		return 0, eris.Wrapf(err, "db: replace: delete from %s", cfg.Table)
	}

	var total int64
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		n, err := CopyFrom(ctx, tx, cfg.Table, cfg.Columns, rows[start:end])
		if err != nil {
			return 0, eris.Wrapf(err, "db: replace: batch at row %d", start)
		}
		total += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit")
	}
	return total, nil
}
