// Package corpus discovers scanned books on disk and enumerates their
// pages in a stable order. Each book directory is expected to contain a
// single *_hocr.html layout file and a directory of page images (the
// Internet Archive's *_jp2 layout, with images pre-converted to a
// decodable raster format).
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inkbound/numberbook/internal/hocr"
	"github.com/inkbound/numberbook/internal/utils"
)

// SourceRegion identifies a rectangular area of a specific page of a
// specific book. Immutable once created.
type SourceRegion struct {
	BookID    string
	PageIndex int
	Box       utils.Box
}

func (r SourceRegion) String() string {
	return fmt.Sprintf("%s/p%04d[%d,%d,%d,%d]", r.BookID, r.PageIndex, r.Box.X0, r.Box.Y0, r.Box.X1, r.Box.Y1)
}

// Token is one OCR word with its geometry and recognition confidence.
type Token struct {
	Text       string
	Box        utils.Box
	Confidence float64
}

// Page is the unit of pipeline work: the OCR tokens of one scanned page
// together with the path of its raster image.
type Page struct {
	BookID    string
	PageIndex int
	ImagePath string
	Tokens    []Token
}

// Book is a discovered book directory.
type Book struct {
	ID       string
	HOCRPath string
	ImageDir string
}

// DiscoverBooks scans rawDir for book directories, returned sorted by ID
// so page enumeration order is reproducible across runs.
func DiscoverBooks(rawDir string) ([]Book, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, fmt.Errorf("read raw dir %s: %w", rawDir, err)
	}

	var books []Book
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(rawDir, e.Name())
		b, ok, err := inspectBookDir(e.Name(), dir)
		if err != nil {
			return nil, err
		}
		if ok {
			books = append(books, b)
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

func inspectBookDir(id, dir string) (Book, bool, error) {
	hocrFiles, err := filepath.Glob(filepath.Join(dir, "*_hocr.html"))
	if err != nil {
		return Book{}, false, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(hocrFiles) == 0 {
		return Book{}, false, nil
	}
	sort.Strings(hocrFiles)

	imageDir, err := findImageDir(dir)
	if err != nil {
		return Book{}, false, err
	}
	if imageDir == "" {
		return Book{}, false, nil
	}
	return Book{ID: id, HOCRPath: hocrFiles[0], ImageDir: imageDir}, true, nil
}

// findImageDir prefers the Internet Archive's *_jp2 directory name and
// falls back to the first subdirectory containing a supported image.
func findImageDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read book dir %s: %w", dir, err)
	}
	var fallback string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		if strings.HasSuffix(e.Name(), "_jp2") {
			return sub, nil
		}
		if fallback == "" && containsImage(sub) {
			fallback = sub
		}
	}
	return fallback, nil
}

func containsImage(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && utils.IsSupportedImage(e.Name()) {
			return true
		}
	}
	return false
}

// Pages parses the book's hOCR file and returns its pages in document
// order. Pages whose raster image cannot be located are skipped.
func (b Book) Pages() ([]Page, error) {
	hocrPages, err := hocr.ParseFile(b.HOCRPath)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, len(hocrPages))
	for i, hp := range hocrPages {
		imgPath := resolvePageImage(b.ImageDir, hp.ImageName)
		if imgPath == "" {
			continue
		}
		tokens := make([]Token, 0, len(hp.Words))
		for _, w := range hp.Words {
			tokens = append(tokens, Token{Text: w.Text, Box: w.Box, Confidence: w.Confidence})
		}
		pages = append(pages, Page{
			BookID:    b.ID,
			PageIndex: i,
			ImagePath: imgPath,
			Tokens:    tokens,
		})
	}
	return pages, nil
}

// resolvePageImage finds the raster file for an hOCR page image name.
// hOCR references the original JP2 name; the converted file keeps the
// stem but may carry any supported extension.
func resolvePageImage(imageDir, imageName string) string {
	direct := filepath.Join(imageDir, imageName)
	if utils.IsSupportedImage(direct) && fileExists(direct) {
		return direct
	}
	stem := strings.TrimSuffix(imageName, filepath.Ext(imageName))
	for _, ext := range utils.SupportedImageExtensions {
		p := filepath.Join(imageDir, stem+ext)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
