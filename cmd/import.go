package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/bce-import/internal/config"
	"github.com/sells-group/bce-import/internal/importer"
)

var (
	importFlags     datasetFlags
	importBatchSize int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Build the commerce list and replace the commerce table",
	Long:  "Reads the extract, rebuilds the butcher shop list and swaps it into the commerce table in one transaction. Every run is recorded with its row counters.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := importFlags.apply(cmd, cfg); err != nil {
			return err
		}
		if cmd.Flags().Changed("batch-size") {
			cfg.BCE.BatchSize = importBatchSize
		}
		if err := cfg.Validate(config.ModeImport); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		summary, err := importer.NewRunner(st, cfg.BCE.BatchSize).Run(ctx, datasetOptions(cfg.BCE))
		if err != nil {
			return eris.Wrap(err, "import")
		}

		formatImportSummary(os.Stdout, summary)
		return nil
	},
}

func init() {
	importFlags.register(importCmd)
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "rows per insert batch (default from config)")
	rootCmd.AddCommand(importCmd)
}

// formatImportSummary writes the counters of a finished import to w.
func formatImportSummary(out io.Writer, s *importer.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", s.RunID)
	_, _ = fmt.Fprintf(w, "Rows scanned:\t%d\n", s.Result.RowsScanned)
	_, _ = fmt.Fprintf(w, "Rows selected:\t%d\n", s.Result.RowsSelected)
	_, _ = fmt.Fprintf(w, "Rows inserted:\t%d\n", s.RowsInserted)
	_, _ = fmt.Fprintf(w, "Rows skipped:\t%d\n", s.Result.RowsSkipped)
	_, _ = fmt.Fprintf(w, "Elapsed:\t%s\n", s.Elapsed.Round(time.Millisecond))
	_ = w.Flush()
}
