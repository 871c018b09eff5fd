package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkbound/numberbook/internal/corpus"
	"github.com/inkbound/numberbook/internal/pipeline"
	"github.com/inkbound/numberbook/internal/store"
)

// extractCmd locates number images in the downloaded corpus and crops
// them into the fragment directory.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract number images from downloaded book scans",
	Long: `Scan every downloaded book's OCR layout data for numbers in the target
range, crop the matching regions out of the page images, and store one
fragment image per (value, source).

Pages are processed in parallel; results are recorded in a stable
book/page order so the canonical image for each value is reproducible.

Examples:
  numberbook extract
  numberbook extract --raw-dir data/raw --workers 8 --progress`,
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	extractCmd.Flags().Int("workers", 0, "parallel page workers (0 = number of CPUs)")
	extractCmd.Flags().Bool("progress", false, "show extraction progress")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := GetConfig(cmd)
	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = cfg.Pipeline.Workers
	}

	books, err := corpus.DiscoverBooks(cfg.Data.RawDir)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return fmt.Errorf("no books found under %s; run 'numberbook fetch' first", cfg.Data.RawDir)
	}
	slog.Info("corpus discovered", "books", len(books))

	// Resume from existing fragments so re-runs only add new sources.
	st, err := store.Load(cfg.Data.NumbersDir)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		MaxNumber:           cfg.Pipeline.MaxNumber,
		MinConfidence:       cfg.Pipeline.MinConfidence,
		TokenGapThreshold:   cfg.Pipeline.TokenGapThreshold,
		ExtractionMargin:    cfg.Pipeline.ExtractionMargin,
		BackgroundThreshold: cfg.Pipeline.BackgroundThreshold,
		Workers:             workers,
	}
	if show, _ := cmd.Flags().GetBool("progress"); show {
		opts.Progress = pipeline.NewConsoleProgress(os.Stderr, "extracting")
	}

	timer := pipeline.NewTimer("extract")
	stats, err := pipeline.ExtractCorpus(cmd.Context(), books, st, opts)
	if err != nil {
		return err
	}
	if err := st.Save(cfg.Data.NumbersDir); err != nil {
		return err
	}

	slog.Info("extraction complete",
		"pages", stats.Pages,
		"candidates", stats.Candidates,
		"extracted", stats.Extracted,
		"rejected", stats.Rejected,
		"duplicates", stats.Duplicates,
		"failed_pages", stats.FailedPages,
		"values", st.Len(),
		"duration", timer.Stop().String(),
	)
	return nil
}
