package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bce-import/internal/bce"
	"github.com/sells-group/bce-import/internal/config"
	"github.com/sells-group/bce-import/internal/fetcher"
)

var (
	fetchURL     string
	fetchDataDir string
	fetchForce   bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the extract archive and unpack it into the data dir",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if fetchURL != "" {
			cfg.BCE.DownloadURL = fetchURL
		}
		if fetchDataDir != "" {
			cfg.BCE.DataDir = fetchDataDir
		}
		if err := cfg.Validate(config.ModeFetch); err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Username: cfg.BCE.DownloadUser,
			Password: cfg.BCE.DownloadPassword,
		})

		res, err := fetcher.FetchExtract(ctx, f, cfg.BCE.DownloadURL, cfg.BCE.DataDir, cfg.BCE.TempDir, fetchForce)
		if err != nil {
			return eris.Wrap(err, "fetch")
		}

		log := zap.L().With(zap.String("data_dir", cfg.BCE.DataDir))
		if !res.Changed {
			log.Info("extract unchanged, nothing to do", zap.String("etag", res.ETag))
			return nil
		}
		if err := bce.CheckFiles(cfg.BCE.DataDir); err != nil {
			return eris.Wrap(err, "fetch: incomplete extract")
		}
		log.Info("extract fetched",
			zap.String("etag", res.ETag),
			zap.Int64("bytes", res.Bytes),
			zap.Int("files", len(res.Files)),
		)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "extract ZIP URL (default from config)")
	fetchCmd.Flags().StringVar(&fetchDataDir, "data-dir", "", "directory to unpack into (default from config)")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "download even when the stored ETag matches")
	rootCmd.AddCommand(fetchCmd)
}
