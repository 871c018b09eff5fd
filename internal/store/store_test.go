package store

import (
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkbound/numberbook/internal/corpus"
)

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func extracted(value int, book string) *Fragment {
	return &Fragment{
		Value:  value,
		Image:  testImage(20, 10),
		Source: corpus.SourceRegion{BookID: book},
		Origin: OriginExtracted,
	}
}

func composed(value int) *Fragment {
	return &Fragment{Value: value, Image: testImage(40, 10), Origin: OriginComposed}
}

func TestStore_PutAndGetPreservesOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(extracted(7, "first")))
	require.NoError(t, s.Put(extracted(7, "second")))

	fs := s.Get(7)
	require.Len(t, fs, 2)
	assert.Equal(t, "first", fs[0].Source.BookID)
	assert.Equal(t, "second", fs[1].Source.BookID)
	assert.Equal(t, 0, fs[0].Seq)
	assert.Equal(t, 1, fs[1].Seq)
}

func TestStore_CanonicalIsFirstInserted(t *testing.T) {
	s := New()
	assert.Nil(t, s.Canonical(5))

	require.NoError(t, s.Put(extracted(5, "alpha")))
	require.NoError(t, s.Put(extracted(5, "beta")))
	assert.Equal(t, "alpha", s.Canonical(5).Source.BookID)
}

func TestStore_ExtractionWins(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(extracted(21, "book")))

	err := s.Put(composed(21))
	require.Error(t, err, "composed fragments must not join values with extracted ones")

	fs := s.Get(21)
	require.Len(t, fs, 1)
	assert.Equal(t, OriginExtracted, fs[0].Origin)
}

func TestStore_ComposedAllowedWhenNoExtracted(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(composed(150)))
	assert.Equal(t, OriginComposed, s.Canonical(150).Origin)
}

func TestStore_PutRejectsNil(t *testing.T) {
	s := New()
	require.Error(t, s.Put(nil))
	require.Error(t, s.Put(&Fragment{Value: 1}))
}

func TestStore_Gaps(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(extracted(1, "b")))
	require.NoError(t, s.Put(extracted(3, "b")))

	assert.Equal(t, []int{2, 4, 5}, s.Gaps(5))
	assert.Empty(t, s.Gaps(1))
}

func TestStore_ValuesAndCounts(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(extracted(9, "b")))
	require.NoError(t, s.Put(extracted(2, "b")))
	require.NoError(t, s.Put(composed(30)))

	assert.Equal(t, []int{2, 9, 30}, s.Values())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Count(OriginExtracted))
	assert.Equal(t, 1, s.Count(OriginComposed))
}

func TestStore_ConcurrentPutsForDifferentValues(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for v := 1; v <= 100; v++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Put(extracted(v, "b"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, s.Len())
	for v := 1; v <= 100; v++ {
		assert.True(t, s.Has(v))
	}
}

func TestBuildManifest(t *testing.T) {
	s := New()
	require.NoError(t, s.Put(extracted(1, "b")))
	require.NoError(t, s.Put(composed(2)))

	m := s.BuildManifest(4)
	assert.Equal(t, 4, m.MaxNumber)
	assert.Equal(t, 1, m.Extracted)
	assert.Equal(t, 1, m.Composed)
	assert.Equal(t, 2, m.Covered)
	assert.Equal(t, []int{3, 4}, m.Gaps)
}
