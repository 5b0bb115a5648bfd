package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bce-import/internal/bce"
	"github.com/sells-group/bce-import/internal/config"
	"github.com/sells-group/bce-import/internal/export"
)

var (
	exportFlags     datasetFlags
	exportOut       string
	exportFormat    string
	exportFromStore bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the commerce list to CSV, JSON, YAML or XLSX",
	Long:  "Exports the records built from the extract, or with --from-store the records currently in the commerce table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		format, err := resolveFormat(exportFormat, exportOut)
		if err != nil {
			return err
		}
		if err := exportFlags.apply(cmd, cfg); err != nil {
			return err
		}

		var records []bce.CommerceRecord
		if exportFromStore {
			if err := cfg.Validate(config.ModeStore); err != nil {
				return err
			}
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			records, err = st.ListCommerces(ctx)
			if err != nil {
				return eris.Wrap(err, "export")
			}
		} else {
			if err := cfg.Validate(config.ModeBuild); err != nil {
				return err
			}
			res, err := bce.Build(ctx, datasetOptions(cfg.BCE))
			if err != nil {
				return eris.Wrap(err, "export")
			}
			records = res.Records
		}

		if err := export.WriteFile(exportOut, format, records); err != nil {
			return eris.Wrap(err, "export")
		}
		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.String("format", string(format)),
			zap.Int("records", len(records)),
			zap.Bool("from_store", exportFromStore),
		)
		return nil
	},
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format: csv, json, yaml or xlsx (default from --out extension)")
	exportCmd.Flags().BoolVar(&exportFromStore, "from-store", false, "export the commerce table instead of building from the extract")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
