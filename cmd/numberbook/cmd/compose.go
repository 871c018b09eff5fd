package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/inkbound/numberbook/internal/composer"
	"github.com/inkbound/numberbook/internal/pipeline"
	"github.com/inkbound/numberbook/internal/store"
)

// composeCmd fills values without an extracted image by compositing
// fragments of their parts.
var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose missing number images from extracted fragments",
	Long: `For every value in the target range with no extracted image, compose
one by concatenating images of its decomposition tokens (digits, tens
words, "hundred", "thousand"). Runs repeated ascending passes until no
further value can be composed, then writes the coverage manifest
including any unrecoverable gaps.

Aborts if any base digit 0-9 was never extracted: nothing above 9 can
be composed without them.

Examples:
  numberbook compose
  numberbook compose --workers 8`,
	SilenceUsage: true,
	RunE:         runCompose,
}

func init() {
	composeCmd.Flags().Int("workers", 0, "parallel composition workers (0 = number of CPUs)")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	cfg := GetConfig(cmd)
	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = cfg.Pipeline.Workers
	}

	st, err := store.Load(cfg.Data.NumbersDir)
	if err != nil {
		return err
	}
	if st.Len() == 0 {
		return errors.New("fragment store is empty; run 'numberbook extract' first")
	}

	timer := pipeline.NewTimer("compose")
	comp := composer.New(st, cfg.Pipeline.MaxNumber, cfg.Pipeline.InterTokenSpacing, workers)
	res, err := comp.Run(cmd.Context())
	if err != nil {
		// A FatalDigitError means the corpus cannot support composition
		// at all; no manifest is written.
		return err
	}

	if err := st.Save(cfg.Data.NumbersDir); err != nil {
		return err
	}
	manifest := st.BuildManifest(cfg.Pipeline.MaxNumber)
	if err := store.WriteManifest(cfg.Data.ManifestFile, manifest); err != nil {
		return err
	}

	slog.Info("composition complete",
		"composed", res.Composed,
		"passes", res.Passes,
		"gaps", len(res.Gaps),
		"covered", manifest.Covered,
		"duration", timer.Stop().String(),
	)
	return nil
}
