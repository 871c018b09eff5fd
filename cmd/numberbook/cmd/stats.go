package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkbound/numberbook/internal/store"
)

// statsCmd reports fragment coverage without loading any images.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report fragment coverage of the target range",
	Long: `Summarize the fragment directory: how many values are covered, how many
images were extracted versus composed, and how many gaps remain.

Examples:
  numberbook stats
  numberbook stats --max-number 1000`,
	SilenceUsage: true,
	RunE:         runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := GetConfig(cmd)

	m, err := store.ScanDir(cfg.Data.NumbersDir, cfg.Pipeline.MaxNumber)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Range:      1-%d\n", m.MaxNumber)
	fmt.Fprintf(out, "Covered:    %d (%.1f%%)\n", m.Covered, 100*float64(m.Covered)/float64(m.MaxNumber))
	fmt.Fprintf(out, "Extracted:  %d fragments\n", m.Extracted)
	fmt.Fprintf(out, "Composed:   %d fragments\n", m.Composed)
	fmt.Fprintf(out, "Gaps:       %d\n", len(m.Gaps))
	if len(m.Gaps) > 0 && len(m.Gaps) <= 20 {
		fmt.Fprintf(out, "Gap values: %v\n", m.Gaps)
	}
	return nil
}
