package assembler

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaledHeight(t *testing.T) {
	tests := []struct {
		name      string
		w, h      int
		colWidth  int
		normalize bool
		want      int
	}{
		{"wider image shrinks", 150, 60, 75, false, 30},
		{"narrower image keeps size", 30, 40, 75, false, 40},
		{"normalize upscales", 30, 40, 60, true, 80},
		{"normalize downscales", 150, 60, 75, true, 30},
		{"zero width passes through", 0, 40, 75, false, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScaledHeight(tt.w, tt.h, tt.colWidth, tt.normalize))
		})
	}
}

func TestDistribute_FillsColumnsSequentially(t *testing.T) {
	// All items 75x30 at column width 75: three fit per 100px column.
	items := make([]Item, 8)
	for i := range items {
		items[i] = Item{Value: i + 1, Width: 75, Height: 30}
	}

	cols, used := Distribute(items, 3, 75, 100)
	require.Equal(t, 8, used)
	assert.Len(t, cols[0], 3)
	assert.Len(t, cols[1], 3)
	assert.Len(t, cols[2], 2)
	assert.Equal(t, 1, cols[0][0].Value)
	assert.Equal(t, 4, cols[1][0].Value)
}

func TestDistribute_OverflowLeftForNextPage(t *testing.T) {
	items := make([]Item, 10)
	for i := range items {
		items[i] = Item{Value: i + 1, Width: 75, Height: 60}
	}

	// One item per 100px column, two columns: eight items left over.
	cols, used := Distribute(items, 2, 75, 100)
	assert.Equal(t, 2, used)
	assert.Len(t, cols[0], 1)
	assert.Len(t, cols[1], 1)
}

func TestDistribute_OversizedItemPlacesNothing(t *testing.T) {
	items := []Item{{Value: 1, Width: 75, Height: 500}}
	_, used := Distribute(items, 2, 75, 100)
	assert.Zero(t, used)
}

func writeFragmentFile(t *testing.T, numbersDir string, value int, name string) {
	t.Helper()
	dir := filepath.Join(numbersDir, strconv.Itoa(value))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644))
}

func TestLoadItems(t *testing.T) {
	numbersDir := t.TempDir()
	writeFragmentFile(t, numbersDir, 1, "1_000_extracted_bookone_p0003_w30_h40.png")
	writeFragmentFile(t, numbersDir, 2, "2_001_composed_w64_h28.png")
	writeFragmentFile(t, numbersDir, 2, "2_000_extracted_booktwo_p0010_w25_h35.png")
	// Value 3 has no directory and value 4 only a foreign file.
	writeFragmentFile(t, numbersDir, 4, "notes.txt")

	items, err := LoadItems(numbersDir, 4)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 1, items[0].Value)
	assert.Equal(t, 30, items[0].Width)
	assert.Equal(t, 40, items[0].Height)

	// Lowest sequence wins as the canonical image.
	assert.Equal(t, 2, items[1].Value)
	assert.Contains(t, items[1].ImagePath, "2_000_extracted")
	assert.Equal(t, 25, items[1].Width)
}

func TestLoadItems_EmptyDirFails(t *testing.T) {
	_, err := LoadItems(t.TempDir(), 10)
	require.Error(t, err)
}

func TestBuildPages(t *testing.T) {
	items := make([]Item, 6)
	for i := range items {
		items[i] = Item{
			Value:     i + 1,
			ImagePath: "/img/" + strconv.Itoa(i+1) + ".png",
			Width:     75,
			Height:    60,
		}
	}
	outDir := filepath.Join(t.TempDir(), "pages")

	// One 60px item per column, two columns: two items per page.
	paths, err := BuildPages(items, outDir, Options{
		Columns:            2,
		ColumnWidth:        75,
		ColumnTargetHeight: 100,
	})
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(outDir, "page_0000.html"), paths[0])

	first, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	html := string(first)
	assert.Contains(t, html, `1&ndash;2`)
	assert.Contains(t, html, `src="/img/1.png"`)
	assert.Contains(t, html, `alt="2"`)
	// Page one is a recto, so the running head is right-aligned.
	assert.Contains(t, html, "flex-end")

	second, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(second), "flex-start")
	assert.Contains(t, string(second), `3&ndash;4`)
}

func TestBuildPages_OversizedItemGetsOwnPage(t *testing.T) {
	items := []Item{
		{Value: 1, ImagePath: "/img/1.png", Width: 75, Height: 500},
		{Value: 2, ImagePath: "/img/2.png", Width: 75, Height: 60},
	}
	paths, err := BuildPages(items, t.TempDir(), Options{
		Columns:            2,
		ColumnWidth:        75,
		ColumnTargetHeight: 100,
	})
	require.NoError(t, err)
	require.Len(t, paths, 2)

	first, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(first), `1&ndash;1`)
}

func TestFindPagePDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page_0001.pdf", "page_0000.pdf", "notes.txt", "cover.PDF"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	paths, err := FindPagePDFs(dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.True(t, strings.HasSuffix(paths[0], "cover.PDF"))
	assert.True(t, strings.HasSuffix(paths[1], "page_0000.pdf"))
	assert.True(t, strings.HasSuffix(paths[2], "page_0001.pdf"))
}

func TestMergePDFs_EmptyInput(t *testing.T) {
	err := MergePDFs(nil, filepath.Join(t.TempDir(), "out.pdf"))
	require.Error(t, err)
}
