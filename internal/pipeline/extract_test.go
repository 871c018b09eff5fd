package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbound/numberbook/internal/corpus"
	"github.com/inkbound/numberbook/internal/store"
	"github.com/inkbound/numberbook/internal/utils"
)

type testWord struct {
	text string
	box  utils.Box
	conf int  // x_wconf percent
	ink  bool // draw a glyph blob inside the box
}

type testPage struct {
	words []testWord
}

// writeBook materializes a synthetic book directory: an hOCR file plus
// a *_jp2 image dir with one white PNG per page, black blobs drawn
// where the inked words sit.
func writeBook(t *testing.T, rawDir, bookID string, pages []testPage) {
	t.Helper()

	bookDir := filepath.Join(rawDir, bookID)
	imgDir := filepath.Join(bookDir, bookID+"_jp2")
	require.NoError(t, os.MkdirAll(imgDir, 0o755))

	var doc strings.Builder
	doc.WriteString("<!DOCTYPE html>\n<html><body>\n")
	for i, p := range pages {
		imgName := fmt.Sprintf("%s_%04d.jp2", bookID, i)
		fmt.Fprintf(&doc, "<div class=\"ocr_page\" title='image \"%s\"; bbox 0 0 400 120'>\n", imgName)

		page := imaging.New(400, 120, color.White)
		for _, w := range p.words {
			fmt.Fprintf(&doc, "<span class=\"ocrx_word\" title=\"bbox %d %d %d %d; x_wconf %d\">%s</span>\n",
				w.box.X0, w.box.Y0, w.box.X1, w.box.Y1, w.conf, w.text)
			if w.ink {
				r := w.box.Expand(-4).ToRect(page.Bounds())
				draw.Draw(page, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
			}
		}
		doc.WriteString("</div>\n")

		pngPath := filepath.Join(imgDir, fmt.Sprintf("%s_%04d.png", bookID, i))
		require.NoError(t, utils.SavePNG(pngPath, page))
	}
	doc.WriteString("</body></html>\n")

	hocrPath := filepath.Join(bookDir, bookID+"_hocr.html")
	require.NoError(t, os.WriteFile(hocrPath, []byte(doc.String()), 0o644))
}

func testOptions(workers int) Options {
	return Options{
		MaxNumber:           50000,
		MinConfidence:       0.90,
		TokenGapThreshold:   16,
		ExtractionMargin:    2,
		BackgroundThreshold: 0.005,
		Workers:             workers,
	}
}

func TestExtractCorpus_EndToEnd(t *testing.T) {
	rawDir := t.TempDir()
	writeBook(t, rawDir, "testbook", []testPage{
		{words: []testWord{
			{text: "Chapter", box: utils.NewBox(10, 20, 90, 60), conf: 96, ink: true},
			{text: "7", box: utils.NewBox(110, 20, 140, 60), conf: 96, ink: true},
			{text: "twenty", box: utils.NewBox(160, 20, 250, 60), conf: 95, ink: true},
			{text: "one", box: utils.NewBox(260, 20, 310, 60), conf: 95, ink: true},
		}},
		{words: []testWord{
			{text: "7", box: utils.NewBox(10, 20, 40, 60), conf: 97, ink: true},
			{text: "42nd", box: utils.NewBox(60, 20, 130, 60), conf: 96, ink: true},
			{text: "8", box: utils.NewBox(300, 20, 340, 60), conf: 96, ink: false},
			{text: "9", box: utils.NewBox(350, 20, 380, 60), conf: 50, ink: true},
		}},
	})

	books, err := corpus.DiscoverBooks(rawDir)
	require.NoError(t, err)
	require.Len(t, books, 1)

	st := store.New()
	stats, err := ExtractCorpus(context.Background(), books, st, testOptions(2))
	require.NoError(t, err)

	// Page 0 yields 7, twenty, one and the merged phrase twenty-one.
	// Page 1 yields the ordinal 42; its second 7 is a duplicate, the
	// blank 8 is degenerate and the low-confidence 9 never becomes a
	// candidate.
	assert.Equal(t, []int{1, 7, 20, 21, 42}, st.Values())
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 7, stats.Candidates)
	assert.Equal(t, 5, stats.Extracted)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, stats.Rejected)
	assert.Zero(t, stats.FailedPages)

	// First occurrence wins: the canonical 7 comes from page 0.
	seven := st.Canonical(7)
	require.NotNil(t, seven)
	assert.Equal(t, 0, seven.Source.PageIndex)
	assert.Equal(t, store.OriginExtracted, seven.Origin)

	// The phrase region spans both words.
	phrase := st.Canonical(21)
	require.NotNil(t, phrase)
	assert.Equal(t, 160, phrase.Source.Box.X0)
	assert.Equal(t, 310, phrase.Source.Box.X1)
}

func TestExtractCorpus_CanonicalStableAcrossWorkerCounts(t *testing.T) {
	rawDir := t.TempDir()
	var pages []testPage
	for i := range 6 {
		pages = append(pages, testPage{words: []testWord{
			{text: fmt.Sprintf("%d", i+1), box: utils.NewBox(10, 20, 60, 60), conf: 96, ink: true},
			{text: "12", box: utils.NewBox(100, 20, 150, 60), conf: 95, ink: true},
		}})
	}
	writeBook(t, rawDir, "stablebook", pages)

	books, err := corpus.DiscoverBooks(rawDir)
	require.NoError(t, err)

	run := func(workers int) *store.Store {
		st := store.New()
		_, err := ExtractCorpus(context.Background(), books, st, testOptions(workers))
		require.NoError(t, err)
		return st
	}

	serial := run(1)
	parallel := run(4)

	require.Equal(t, serial.Values(), parallel.Values())
	for _, v := range serial.Values() {
		assert.Equal(t, serial.Canonical(v).Source, parallel.Canonical(v).Source,
			"canonical source for %d must not depend on worker scheduling", v)
	}
	// Only the page 0 occurrence of 12 survives per-book dedup.
	assert.Len(t, serial.Get(12), 1)
	assert.Equal(t, 0, serial.Canonical(12).Source.PageIndex)
}

func TestExtractCorpus_ValuesAccumulateAcrossBooks(t *testing.T) {
	rawDir := t.TempDir()
	word := testWord{text: "7", box: utils.NewBox(10, 20, 60, 60), conf: 96, ink: true}
	writeBook(t, rawDir, "aardvark", []testPage{{words: []testWord{word}}})
	writeBook(t, rawDir, "zebra", []testPage{{words: []testWord{word}}})

	books, err := corpus.DiscoverBooks(rawDir)
	require.NoError(t, err)
	require.Len(t, books, 2)

	st := store.New()
	stats, err := ExtractCorpus(context.Background(), books, st, testOptions(2))
	require.NoError(t, err)

	// Dedup is per book: both books contribute a 7, the lexically first
	// book's fragment is canonical.
	assert.Equal(t, 2, stats.Extracted)
	require.Len(t, st.Get(7), 2)
	assert.Equal(t, "aardvark", st.Canonical(7).Source.BookID)
}

func TestExtractCorpus_ResumeAddsNothingForSameCorpus(t *testing.T) {
	rawDir := t.TempDir()
	writeBook(t, rawDir, "testbook", []testPage{{words: []testWord{
		{text: "7", box: utils.NewBox(110, 20, 140, 60), conf: 96, ink: true},
	}}})

	books, err := corpus.DiscoverBooks(rawDir)
	require.NoError(t, err)

	st := store.New()
	first, err := ExtractCorpus(context.Background(), books, st, testOptions(2))
	require.NoError(t, err)
	require.Equal(t, 1, first.Extracted)

	// A second run over the same corpus and store must not grow the
	// fragment list for values it already extracted.
	second, err := ExtractCorpus(context.Background(), books, st, testOptions(2))
	require.NoError(t, err)
	assert.Zero(t, second.Extracted)
	assert.Equal(t, 1, second.Duplicates)
	require.Len(t, st.Get(7), 1)
}

func TestExtractCorpus_EmptyCorpus(t *testing.T) {
	books, err := corpus.DiscoverBooks(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, books)

	_, err = ExtractCorpus(context.Background(), books, store.New(), testOptions(1))
	require.Error(t, err)
}
