package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inkbound/numberbook/internal/assembler"
)

// assembleCmd lays the completed number collection out as book pages.
var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Lay out the number images as printable book pages",
	Long: `Distribute the canonical image of every covered value into columns and
render one HTML file per book page. A print step outside this tool
turns each HTML page into a PDF; with --merge, the per-page PDFs found
next to the HTML files are merged and optimized into the final book.

Examples:
  numberbook assemble
  numberbook assemble --merge`,
	SilenceUsage: true,
	RunE:         runAssemble,
}

func init() {
	assembleCmd.Flags().Bool("merge", false, "merge rendered per-page PDFs into the final book")
	assembleCmd.Flags().String("output-dir", "", "output directory for pages and the final book")
	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	cfg := GetConfig(cmd)
	outDir := cfg.Data.OutputDir
	if cmd.Flags().Changed("output-dir") {
		outDir, _ = cmd.Flags().GetString("output-dir")
	}
	pagesDir := filepath.Join(outDir, "pages")

	items, err := assembler.LoadItems(cfg.Data.NumbersDir, cfg.Pipeline.MaxNumber)
	if err != nil {
		return err
	}

	opts := assembler.Options{
		Columns:            cfg.Assemble.Columns,
		ColumnWidth:        cfg.Assemble.ColumnWidth,
		ColumnTargetHeight: cfg.Assemble.ColumnTargetHeight,
		MaxPerPage:         cfg.Assemble.MaxPerPage,
	}
	pages, err := assembler.BuildPages(items, pagesDir, opts)
	if err != nil {
		return err
	}
	slog.Info("pages rendered", "values", len(items), "pages", len(pages), "dir", pagesDir)

	if merge, _ := cmd.Flags().GetBool("merge"); merge {
		pdfs, err := assembler.FindPagePDFs(pagesDir)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, "numberbook.pdf")
		if err := assembler.MergePDFs(pdfs, outPath); err != nil {
			return err
		}
		slog.Info("book merged", "pages", len(pdfs), "file", outPath)
	}
	return nil
}
