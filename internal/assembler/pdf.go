package assembler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// FindPagePDFs lists externally rendered per-page PDFs in dir, sorted
// by name so page ordering follows the page_%04d naming.
func FindPagePDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pdf dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// MergePDFs merges per-page PDFs into a single book PDF and optimizes
// the result to shrink its embedded images.
func MergePDFs(pagePaths []string, outPath string) error {
	if len(pagePaths) == 0 {
		return fmt.Errorf("no page PDFs to merge")
	}
	if err := api.MergeCreateFile(pagePaths, outPath, false, nil); err != nil {
		return fmt.Errorf("merge %d page pdfs: %w", len(pagePaths), err)
	}
	if err := api.OptimizeFile(outPath, "", nil); err != nil {
		return fmt.Errorf("optimize %s: %w", outPath, err)
	}
	return nil
}
