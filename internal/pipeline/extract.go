// Package pipeline orchestrates the extraction stage: pages are
// processed in parallel (locate candidates, crop fragments), and a
// single collector inserts results into the fragment store in stable
// page-enumeration order so the canonical fragment for every value is
// reproducible across runs.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/inkbound/numberbook/internal/corpus"
	"github.com/inkbound/numberbook/internal/extractor"
	"github.com/inkbound/numberbook/internal/locator"
	"github.com/inkbound/numberbook/internal/store"
	"github.com/inkbound/numberbook/internal/utils"
)

// Options configures the extraction stage.
type Options struct {
	MaxNumber           int
	MinConfidence       float64
	TokenGapThreshold   int
	ExtractionMargin    int
	BackgroundThreshold float64
	Workers             int
	Progress            ProgressCallback
}

// ExtractionStats counts the outcomes of an extraction run.
type ExtractionStats struct {
	Pages       int
	Candidates  int
	Extracted   int
	Rejected    int
	Duplicates  int
	FailedPages int
}

// pageJob carries one page and its position in the global enumeration.
type pageJob struct {
	index int
	page  corpus.Page
}

// pageResult holds the fragments of one processed page.
type pageResult struct {
	index      int
	fragments  []*store.Fragment
	candidates int
	rejected   int
	err        error
}

// ExtractCorpus locates and crops number fragments from every page of
// the given books, inserting them into st. Page processing is
// parallel; insertion is serialized in (book, page) order and keeps
// only the first occurrence of each value per book.
func ExtractCorpus(ctx context.Context, books []corpus.Book, st *store.Store, opts Options) (ExtractionStats, error) {
	pages, err := enumeratePages(books)
	if err != nil {
		return ExtractionStats{}, err
	}
	if len(pages) == 0 {
		return ExtractionStats{}, errors.New("no pages found in corpus")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	progress := opts.Progress
	if progress == nil {
		progress = NoOpProgress{}
	}
	progress.OnStart(len(pages))
	defer progress.OnComplete()

	loc := locator.New(opts.MaxNumber, opts.MinConfidence, opts.TokenGapThreshold)
	ext := extractor.New(opts.ExtractionMargin, opts.BackgroundThreshold)

	jobs := make(chan pageJob, workers)
	results := make(chan pageResult, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- processPage(job, loc, ext)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, p := range pages {
			select {
			case jobs <- pageJob{index: i, page: p}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	stats := collect(results, st, len(pages), progress)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// enumeratePages lists all pages of all books in stable (book, page)
// order. Books are already sorted by DiscoverBooks.
func enumeratePages(books []corpus.Book) ([]corpus.Page, error) {
	var pages []corpus.Page
	for _, b := range books {
		bp, err := b.Pages()
		if err != nil {
			return nil, err
		}
		pages = append(pages, bp...)
	}
	return pages, nil
}

func processPage(job pageJob, loc *locator.Locator, ext *extractor.Extractor) pageResult {
	res := pageResult{index: job.index}

	cands := loc.Locate(job.page)
	res.candidates = len(cands)
	if len(cands) == 0 {
		return res
	}

	img, err := utils.LoadImage(job.page.ImagePath)
	if err != nil {
		res.err = err
		return res
	}

	for _, cand := range cands {
		f, err := ext.Extract(img, cand)
		if errors.Is(err, extractor.ErrDegenerate) {
			res.rejected++
			slog.Debug("rejected degenerate candidate", "value", cand.Value, "region", cand.Region)
			continue
		}
		if err != nil {
			res.err = err
			return res
		}
		res.fragments = append(res.fragments, f)
	}
	return res
}

// collect drains worker results and inserts fragments in page order
// using a reorder buffer, so insertion order is independent of worker
// scheduling. Per-book value dedup happens here, at insertion time,
// seeded from fragments already in the store so a resumed run does not
// re-add what an earlier run extracted.
func collect(results <-chan pageResult, st *store.Store, total int, progress ProgressCallback) ExtractionStats {
	stats := ExtractionStats{Pages: total}
	buffer := make(map[int]pageResult)
	seen := seedSeen(st) // book -> values already taken
	next := 0
	done := 0

	insert := func(res pageResult) {
		stats.Candidates += res.candidates
		stats.Rejected += res.rejected
		if res.err != nil {
			stats.FailedPages++
			slog.Warn("page processing failed", "error", res.err)
			return
		}
		for _, f := range res.fragments {
			book := f.Source.BookID
			if seen[book] == nil {
				seen[book] = make(map[int]bool)
			}
			if seen[book][f.Value] {
				stats.Duplicates++
				continue
			}
			seen[book][f.Value] = true
			if err := st.Put(f); err != nil {
				slog.Warn("fragment insert failed", "value", f.Value, "error", err)
				continue
			}
			stats.Extracted++
		}
	}

	for res := range results {
		buffer[res.index] = res
		for {
			r, ok := buffer[next]
			if !ok {
				break
			}
			delete(buffer, next)
			insert(r)
			next++
			done++
			progress.OnProgress(done, total)
		}
	}
	// Flush anything still buffered (possible when a cancelled run
	// leaves holes in the index sequence).
	for i := 0; i < total; i++ {
		if r, ok := buffer[i]; ok {
			insert(r)
		}
	}
	return stats
}

// seedSeen marks every extracted fragment already in the store as seen,
// so a resumed run treats prior extractions as duplicates instead of
// appending them again.
func seedSeen(st *store.Store) map[string]map[int]bool {
	seen := make(map[string]map[int]bool)
	for _, v := range st.Values() {
		for _, f := range st.Get(v) {
			if f.Origin != store.OriginExtracted {
				continue
			}
			book := f.Source.BookID
			if seen[book] == nil {
				seen[book] = make(map[int]bool)
			}
			seen[book][v] = true
		}
	}
	return seen
}
