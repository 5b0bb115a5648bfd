package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/bce-import/internal/bce"
	"github.com/sells-group/bce-import/internal/config"
	"github.com/sells-group/bce-import/internal/store"
)

var errNacePrefix = eris.New("Argument --nace-prefix is no longer supported. Use --nace-codes with exact values.")

// datasetFlags are the dataset selection flags shared by import, build and export.
type datasetFlags struct {
	dataDir        string
	naceVersion    string
	naceCodes      []string
	source         string
	normalizeNames bool
	nacePrefix     string
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.dataDir, "data-dir", "", "directory holding the extracted CSV files (default from config)")
	fs.StringVar(&f.naceVersion, "nace-version", "", "NACE nomenclature version to match (default from config)")
	fs.StringSliceVar(&f.naceCodes, "nace-codes", nil, "exact NACE codes to select, e.g. 47.22,47.221 (default from config)")
	fs.StringVar(&f.source, "source", "", "source label stored on every record (default from config)")
	fs.BoolVar(&f.normalizeNames, "normalize-names", false, "title-case commerce and city names")
	fs.StringVar(&f.nacePrefix, "nace-prefix", "", "removed, use --nace-codes")
	_ = fs.MarkHidden("nace-prefix")
}

// apply overlays the flags the user set onto c.
func (f *datasetFlags) apply(cmd *cobra.Command, c *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("nace-prefix") {
		return errNacePrefix
	}
	if fs.Changed("data-dir") {
		c.BCE.DataDir = f.dataDir
	}
	if fs.Changed("nace-version") {
		c.BCE.NaceVersion = f.naceVersion
	}
	if fs.Changed("nace-codes") {
		c.BCE.NaceCodes = f.naceCodes
	}
	if fs.Changed("source") {
		c.BCE.Source = f.source
	}
	if fs.Changed("normalize-names") {
		c.BCE.NormalizeNames = f.normalizeNames
	}
	return nil
}

// datasetOptions maps the BCE configuration onto build options.
func datasetOptions(c config.BCEConfig) bce.Options {
	return bce.Options{
		DataDir:        c.DataDir,
		NaceVersion:    c.NaceVersion,
		NaceCodes:      c.NaceCodes,
		Source:         c.Source,
		NormalizeNames: c.NormalizeNames,
		ExcludeNames:   c.ExcludeNames,
	}
}

// initStore opens the configured store and brings its schema up to date.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
