// Package importer loads a BCE/KBO extract into the store, recording each
// attempt as an import run.
package importer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bce-import/internal/bce"
	"github.com/sells-group/bce-import/internal/db"
	"github.com/sells-group/bce-import/internal/store"
)

// BuildFunc produces the record list for one import. bce.Build in production.
type BuildFunc func(ctx context.Context, opts bce.Options) (*bce.Result, error)

// Runner builds the commerce list and swaps it into the store.
type Runner struct {
	store     store.Store
	build     BuildFunc
	batchSize int
}

// NewRunner creates a Runner writing batchSize rows per insert batch.
func NewRunner(st store.Store, batchSize int) *Runner {
	if batchSize <= 0 {
		batchSize = db.DefaultBatchSize
	}
	return &Runner{store: st, build: bce.Build, batchSize: batchSize}
}

// WithBuild replaces the build step.
func (r *Runner) WithBuild(fn BuildFunc) *Runner {
	r.build = fn
	return r
}

// Summary is the outcome of a successful import.
type Summary struct {
	RunID        string
	Result       *bce.Result
	RowsInserted int64
	Elapsed      time.Duration
}

// Run records a RUNNING import run, builds the dataset, replaces the commerce
// table and marks the run SUCCESS with its counters. Any failure marks the run
// FAILED with the error message and is returned.
func (r *Runner) Run(ctx context.Context, opts bce.Options) (*Summary, error) {
	log := zap.L().With(zap.String("component", "importer"))

	start := store.RunStart{
		DataDir:     opts.DataDir,
		NaceVersion: opts.NaceVersion,
		NaceCodes:   opts.NaceCodes,
	}
	if start.DataDir != "" {
		if abs, err := filepath.Abs(start.DataDir); err == nil {
			start.DataDir = abs
		}
	}
	if start.NaceVersion == "" {
		start.NaceVersion = bce.DefaultNaceVersion
	}
	if len(start.NaceCodes) == 0 {
		start.NaceCodes = bce.DefaultNaceCodes
	}

	run, err := r.store.StartRun(ctx, start)
	if err != nil {
		return nil, eris.Wrap(err, "importer: start run")
	}
	log = log.With(zap.String("run_id", run.ID))
	log.Info("import started", zap.String("data_dir", start.DataDir), zap.Strings("nace_codes", start.NaceCodes))

	began := time.Now()
	res, err := r.build(ctx, opts)
	if err != nil {
		return nil, r.fail(ctx, log, run.ID, eris.Wrap(err, "importer: build dataset"))
	}

	inserted, err := r.store.ReplaceCommerces(ctx, run.ID, res.Records, r.batchSize)
	if err != nil {
		return nil, r.fail(ctx, log, run.ID, eris.Wrap(err, "importer: replace commerces"))
	}

	if err := r.store.CompleteRun(ctx, run.ID, store.StatsFromResult(res, inserted)); err != nil {
		return nil, r.fail(ctx, log, run.ID, eris.Wrapf(err, "importer: complete run %s", run.ID))
	}

	summary := &Summary{
		RunID:        run.ID,
		Result:       res,
		RowsInserted: inserted,
		Elapsed:      time.Since(began),
	}
	log.Info("import succeeded",
		zap.Int("rows_selected", res.RowsSelected),
		zap.Int64("rows_inserted", inserted),
		zap.Int("rows_skipped", res.RowsSkipped),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// fail records cause on the run and returns it. The run is updated even when
// ctx is already cancelled.
func (r *Runner) fail(ctx context.Context, log *zap.Logger, runID string, cause error) error {
	log.Error("import failed", zap.Error(cause))
	if err := r.store.FailRun(context.WithoutCancel(ctx), runID, cause.Error()); err != nil {
		log.Error("failed to record import failure", zap.Error(err))
	}
	return cause
}
