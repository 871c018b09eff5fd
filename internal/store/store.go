// Package store holds the fragment collection: for every integer value,
// the ordered set of image fragments that depict it. The store is the
// only shared mutable state of the pipeline; all mutation funnels
// through Put, which enforces the ordering and origin invariants.
package store

import (
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/inkbound/numberbook/internal/corpus"
)

// Origin records how a fragment came to exist.
type Origin string

const (
	OriginExtracted Origin = "extracted"
	OriginComposed  Origin = "composed"
)

// Fragment is one normalized image depicting a single integer value.
// Immutable after creation.
type Fragment struct {
	Value  int
	Image  image.Image
	Source corpus.SourceRegion
	Origin Origin
	Seq    int // insertion order within the value, assigned by Put
}

// Store maps integer values to their fragments in discovery order. The
// first fragment of a value is canonical. Values gain composed
// fragments only when they have no extracted one: extraction wins.
type Store struct {
	mu        sync.RWMutex
	fragments map[int][]*Fragment
}

// New returns an empty store.
func New() *Store {
	return &Store{fragments: make(map[int][]*Fragment)}
}

// Put appends the fragment under its value, assigning its sequence
// number. A composed fragment for a value that already has an extracted
// fragment is rejected, preserving the extraction-wins invariant.
func (s *Store) Put(f *Fragment) error {
	if f == nil || f.Image == nil {
		return fmt.Errorf("store: nil fragment")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.fragments[f.Value]
	if f.Origin == OriginComposed {
		for _, e := range existing {
			if e.Origin == OriginExtracted {
				return fmt.Errorf("store: value %d already has an extracted fragment", f.Value)
			}
		}
	}
	f.Seq = len(existing)
	s.fragments[f.Value] = append(existing, f)
	return nil
}

// Get returns the fragments for a value in insertion order. The
// returned slice must not be mutated.
func (s *Store) Get(value int) []*Fragment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fragments[value]
}

// Has reports whether the value has at least one fragment.
func (s *Store) Has(value int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments[value]) > 0
}

// Canonical returns the preferred fragment for a value, or nil. The
// first entry is canonical by construction: extracted fragments precede
// composed ones because composition runs only for uncovered values.
func (s *Store) Canonical(value int) *Fragment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if fs := s.fragments[value]; len(fs) > 0 {
		return fs[0]
	}
	return nil
}

// Values returns all values with at least one fragment, ascending.
func (s *Store) Values() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make([]int, 0, len(s.fragments))
	for v := range s.fragments {
		values = append(values, v)
	}
	sort.Ints(values)
	return values
}

// Len returns the number of distinct values in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments)
}

// Count returns the number of fragments with the given origin.
func (s *Store) Count(origin Origin) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, fs := range s.fragments {
		for _, f := range fs {
			if f.Origin == origin {
				n++
			}
		}
	}
	return n
}

// Gaps returns every value in [1, maxNumber] with no fragment.
func (s *Store) Gaps(maxNumber int) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var gaps []int
	for v := 1; v <= maxNumber; v++ {
		if len(s.fragments[v]) == 0 {
			gaps = append(gaps, v)
		}
	}
	return gaps
}
