// Package bce turns a BCE/KBO open-data extract into commerce records.
//
// The six extract files are streamed one after the other, row by row, each
// folding into in-memory lookups that later files are filtered against:
// activities select candidate establishments, establishments link them to
// enterprises, then addresses, denominations and contacts are resolved for both.
// Records are assembled only once every file has been read.
package bce

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bce-import/internal/fetcher"
)

var csvOptions = fetcher.CSVOptions{
	LazyQuotes: true,
	TrimSpace:  true,
}

// Build reads the extract in opts.DataDir and assembles the commerce records.
// Configuration problems and missing files fail before any row is read; rows
// that cannot produce a record are counted in Result.RowsSkipped.
func Build(ctx context.Context, opts Options) (*Result, error) {
	log := zap.L().With(zap.String("component", "bce.build"))

	s, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	if err := CheckFiles(s.dataDir); err != nil {
		return nil, err
	}

	log.Info("building commerce dataset",
		zap.String("data_dir", s.dataDir),
		zap.String("nace_version", s.naceVersion),
		zap.Int("nace_codes", len(s.allow)),
	)

	l := newLookups(s.naceVersion, s.allow)
	stages := []struct {
		file string
		fold func(fetcher.Record)
	}{
		{FileMeta, func(r fetcher.Record) { l.foldMeta(parseMetaRow(r)) }},
		{FileActivity, func(r fetcher.Record) { l.foldActivity(parseActivityRow(r)) }},
		{FileEstablishment, func(r fetcher.Record) { l.foldEstablishment(parseEstablishmentRow(r)) }},
		{FileAddress, func(r fetcher.Record) { l.foldAddress(parseAddressRow(r)) }},
		{FileDenomination, func(r fetcher.Record) { l.foldDenomination(parseDenominationRow(r)) }},
		{FileContact, func(r fetcher.Record) { l.foldContact(parseContactRow(r)) }},
	}

	var scanned int64
	for _, st := range stages {
		start := time.Now()
		n, err := readFile(ctx, filepath.Join(s.dataDir, st.file), st.fold)
		if err != nil {
			return nil, eris.Wrapf(err, "bce: read %s", st.file)
		}
		scanned += n
		log.Debug("file scanned",
			zap.String("file", st.file),
			zap.Int64("rows", n),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	records, skipped := l.assemble(s)
	result := &Result{
		RowsScanned:  scanned,
		RowsSelected: l.candidates.Len(),
		RowsEmitted:  len(records),
		RowsSkipped:  skipped,
		SnapshotDate: l.snapshotDate,
		ExtractedAt:  l.extractedAt,
		Records:      records,
	}

	log.Info("commerce dataset built",
		zap.Int64("rows_scanned", result.RowsScanned),
		zap.Int("rows_selected", result.RowsSelected),
		zap.Int("rows_emitted", result.RowsEmitted),
		zap.Int("rows_skipped", result.RowsSkipped),
	)
	return result, nil
}

func readFile(ctx context.Context, path string, fold func(fetcher.Record)) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrap(err, "open")
	}
	defer f.Close() //nolint:errcheck

	return fetcher.ReadCSV(ctx, f, csvOptions, func(r fetcher.Record) error {
		fold(r)
		return nil
	})
}
