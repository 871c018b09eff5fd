// Package extractor crops candidate regions out of page images and
// normalizes them into store fragments. Degenerate crops are rejected,
// not errors: they indicate OCR geometry noise.
package extractor

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"

	"github.com/inkbound/numberbook/internal/locator"
	"github.com/inkbound/numberbook/internal/store"
)

// ErrDegenerate marks a candidate whose trimmed region is too small to
// be a readable number image.
var ErrDegenerate = errors.New("degenerate fragment region")

// Minimum post-trim pixel dimensions for a usable fragment.
const (
	minFragmentWidth  = 4
	minFragmentHeight = 6
)

// Extractor crops and normalizes candidate regions.
type Extractor struct {
	margin      int     // pixels added around the candidate box before trimming
	bgThreshold float64 // luminance variance below which a border line is background
}

// New returns an Extractor with the given crop margin and background
// variance threshold.
func New(margin int, bgThreshold float64) *Extractor {
	return &Extractor{margin: margin, bgThreshold: bgThreshold}
}

// Extract crops the candidate's region from its page image, tightens
// the box to the ink extent and returns an extracted fragment. Returns
// ErrDegenerate when the trimmed region is empty or below the minimum
// fragment dimensions.
func (e *Extractor) Extract(pageImg image.Image, cand locator.Candidate) (*store.Fragment, error) {
	rect := cand.Region.Box.Expand(e.margin).ToRect(pageImg.Bounds())
	if rect.Dx() == 0 || rect.Dy() == 0 {
		return nil, ErrDegenerate
	}

	crop := imaging.Crop(pageImg, rect)
	trimmed := trimToInk(crop, e.bgThreshold)
	if trimmed.Dx() < minFragmentWidth || trimmed.Dy() < minFragmentHeight {
		return nil, ErrDegenerate
	}
	if trimmed != crop.Bounds() {
		crop = imaging.Crop(crop, trimmed)
	}

	return &store.Fragment{
		Value:  cand.Value,
		Image:  crop,
		Source: cand.Region,
		Origin: store.OriginExtracted,
	}, nil
}

// trimToInk shrinks the bounds to the rows and columns that carry ink,
// dropping border lines whose luminance variance stays below the
// background threshold.
func trimToInk(img image.Image, bgThreshold float64) image.Rectangle {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return b
	}

	// Luminance in [0,1], row-major.
	lum := make([]float64, w*h)
	for y := range h {
		row := gray.Pix[y*gray.Stride:]
		for x := range w {
			lum[y*w+x] = float64(row[x*4]) / 255.0
		}
	}

	rowInk := func(y int) bool { return variance(lum[y*w:(y+1)*w]) >= bgThreshold }
	colInk := func(x int) bool {
		col := make([]float64, h)
		for y := range h {
			col[y] = lum[y*w+x]
		}
		return variance(col) >= bgThreshold
	}

	top, bottom := 0, h
	for top < bottom && !rowInk(top) {
		top++
	}
	for bottom > top && !rowInk(bottom-1) {
		bottom--
	}
	left, right := 0, w
	for left < right && !colInk(left) {
		left++
	}
	for right > left && !colInk(right-1) {
		right--
	}

	return image.Rect(b.Min.X+left, b.Min.Y+top, b.Min.X+right, b.Min.Y+bottom)
}

func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	sum := 0.0
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(vals))
}
