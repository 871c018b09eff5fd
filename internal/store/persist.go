package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/inkbound/numberbook/internal/corpus"
	"github.com/inkbound/numberbook/internal/utils"
)

// Fragment files live under <dir>/<value>/ with one PNG per fragment.
// The sequence number keeps insertion order stable across a reload, and
// the trailing dimensions let later stages lay out pages without
// decoding every image.
//
//	123_000_extracted_<book>_p0042_w75_h31.png
//	123_001_composed_w142_h28.png
var fragmentFileRE = regexp.MustCompile(
	`^(\d+)_(\d+)_(extracted|composed)(?:_(.+)_p(\d+))?_w(\d+)_h(\d+)\.png$`)

// FileName returns the on-disk name for a fragment.
func FileName(f *Fragment) string {
	b := f.Image.Bounds()
	if f.Origin == OriginComposed {
		return fmt.Sprintf("%d_%03d_%s_w%d_h%d.png", f.Value, f.Seq, f.Origin, b.Dx(), b.Dy())
	}
	return fmt.Sprintf("%d_%03d_%s_%s_p%04d_w%d_h%d.png",
		f.Value, f.Seq, f.Origin, f.Source.BookID, f.Source.PageIndex, b.Dx(), b.Dy())
}

// Save writes every fragment that does not yet exist on disk. Existing
// files are left untouched so re-runs are idempotent.
func (s *Store) Save(dir string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for value, fragments := range s.fragments {
		valueDir := filepath.Join(dir, strconv.Itoa(value))
		for _, f := range fragments {
			path := filepath.Join(valueDir, FileName(f))
			if _, err := os.Stat(path); err == nil {
				continue
			}
			if err := utils.SavePNG(path, f.Image); err != nil {
				return fmt.Errorf("save fragment for %d: %w", value, err)
			}
		}
	}
	return nil
}

// Load rebuilds a store from a fragment directory, preserving sequence
// order. Stale composed fragments for values that also carry extracted
// ones are skipped to restore the extraction-wins invariant.
func Load(dir string) (*Store, error) {
	s := New()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fragment dir %s: %w", dir, err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(e.Name()); err != nil {
			continue
		}
		if err := s.loadValueDir(filepath.Join(dir, e.Name())); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type diskFragment struct {
	fragment *Fragment
	seq      int
}

func (s *Store) loadValueDir(valueDir string) error {
	entries, err := os.ReadDir(valueDir)
	if err != nil {
		return fmt.Errorf("read value dir %s: %w", valueDir, err)
	}

	var found []diskFragment
	hasExtracted := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fragmentFileRE.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		f, seq, err := parseFragmentFile(filepath.Join(valueDir, e.Name()), m)
		if err != nil {
			slog.Warn("skipping unreadable fragment file", "file", e.Name(), "error", err)
			continue
		}
		if f.Origin == OriginExtracted {
			hasExtracted = true
		}
		found = append(found, diskFragment{fragment: f, seq: seq})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })
	for _, df := range found {
		if hasExtracted && df.fragment.Origin == OriginComposed {
			slog.Warn("dropping stale composed fragment", "value", df.fragment.Value, "seq", df.seq)
			continue
		}
		if err := s.Put(df.fragment); err != nil {
			return err
		}
	}
	return nil
}

// ScanDir summarizes a fragment directory from filenames alone,
// without decoding any image. Useful for coverage reporting.
func ScanDir(dir string, maxNumber int) (Manifest, error) {
	m := Manifest{MaxNumber: maxNumber}
	covered := make(map[int]bool)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		m.Gaps = allValues(maxNumber)
		return m, nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("read fragment dir %s: %w", dir, err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		value, err := strconv.Atoi(e.Name())
		if err != nil || value < 1 || value > maxNumber {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, e.Name()))
		if err != nil {
			return Manifest{}, fmt.Errorf("read value dir %s: %w", e.Name(), err)
		}
		for _, f := range files {
			fm := fragmentFileRE.FindStringSubmatch(f.Name())
			if fm == nil {
				continue
			}
			covered[value] = true
			if Origin(fm[3]) == OriginExtracted {
				m.Extracted++
			} else {
				m.Composed++
			}
		}
	}

	for v := 1; v <= maxNumber; v++ {
		if covered[v] {
			m.Covered++
		} else {
			m.Gaps = append(m.Gaps, v)
		}
	}
	return m, nil
}

func allValues(maxNumber int) []int {
	vs := make([]int, maxNumber)
	for i := range vs {
		vs[i] = i + 1
	}
	return vs
}

func parseFragmentFile(path string, m []string) (*Fragment, int, error) {
	value, _ := strconv.Atoi(m[1])
	seq, _ := strconv.Atoi(m[2])
	origin := Origin(m[3])

	img, err := utils.LoadImage(path)
	if err != nil {
		return nil, 0, err
	}

	f := &Fragment{Value: value, Image: img, Origin: origin}
	if origin == OriginExtracted && m[4] != "" {
		pageIndex, _ := strconv.Atoi(m[5])
		f.Source = corpus.SourceRegion{BookID: m[4], PageIndex: pageIndex}
	}
	return f, seq, nil
}
