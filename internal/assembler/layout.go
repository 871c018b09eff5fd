// Package assembler lays the completed value->image mapping out as
// book pages: values flow down fixed-width columns, each filled to a
// target pixel height, and pages are rendered as HTML for an external
// print step. Pre-rendered per-page PDFs can be merged into the final
// book.
package assembler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Item is one value with its canonical fragment image and the pixel
// dimensions encoded in the fragment filename.
type Item struct {
	Value     int
	ImagePath string
	Width     int
	Height    int
}

// Fragment filenames end in _w{width}_h{height}.png (see store).
var dimsRE = regexp.MustCompile(`_w(\d+)_h(\d+)\.png$`)

// LoadItems collects the canonical image for every value in
// [1, maxNumber] from the fragment directory. Values without an image
// (unrecoverable gaps) are skipped with a warning; the print layout
// decides how to represent them.
func LoadItems(numbersDir string, maxNumber int) ([]Item, error) {
	items := make([]Item, 0, maxNumber)
	for v := 1; v <= maxNumber; v++ {
		item, ok, err := canonicalItem(numbersDir, v)
		if err != nil {
			return nil, err
		}
		if !ok {
			slog.Warn("no image for value, skipping", "value", v)
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no fragment images found under %s", numbersDir)
	}
	return items, nil
}

// canonicalItem picks the first fragment file of a value in sequence
// order (filenames sort by their zero-padded sequence number).
func canonicalItem(numbersDir string, value int) (Item, bool, error) {
	dir := filepath.Join(numbersDir, strconv.Itoa(value))
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && dimsRE.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return Item{}, false, nil
	}
	sort.Strings(names)

	m := dimsRE.FindStringSubmatch(names[0])
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	return Item{
		Value:     value,
		ImagePath: filepath.Join(dir, names[0]),
		Width:     w,
		Height:    h,
	}, true, nil
}

// ScaledHeight computes the display height of an image constrained to
// the column width. When normalize is set every image is scaled to
// exactly the column width; otherwise only wider images shrink.
func ScaledHeight(width, height, columnWidth int, normalize bool) int {
	if width <= 0 {
		return height
	}
	scale := float64(columnWidth) / float64(width)
	if !normalize && scale > 1.0 {
		scale = 1.0
	}
	return int(float64(height) * scale)
}

// Distribute fills columns sequentially: items flow down one column
// until the target height is reached, then into the next. It returns
// the filled columns and the count of items placed; remaining items
// belong to later pages.
func Distribute(items []Item, columns, columnWidth, targetHeight int) ([][]Item, int) {
	cols := make([][]Item, columns)
	colIdx := 0
	colHeight := 0
	used := 0

	for _, item := range items {
		h := ScaledHeight(item.Width, item.Height, columnWidth, false)
		if colHeight+h > targetHeight {
			if colIdx >= columns-1 {
				break
			}
			colIdx++
			colHeight = 0
		}
		cols[colIdx] = append(cols[colIdx], item)
		colHeight += h
		used++
	}
	return cols, used
}
