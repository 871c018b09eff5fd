package composer

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// compositeHorizontal concatenates token images left to right on a
// white background with the given spacing. Parts are scaled to the
// tallest part's height so every token shares the same baseline, as in
// a printed line.
func compositeHorizontal(parts []image.Image, spacing int) *image.NRGBA {
	maxHeight := 0
	for _, p := range parts {
		if h := p.Bounds().Dy(); h > maxHeight {
			maxHeight = h
		}
	}

	scaled := make([]*image.NRGBA, len(parts))
	totalWidth := 0
	for i, p := range parts {
		if p.Bounds().Dy() != maxHeight {
			scaled[i] = imaging.Resize(p, 0, maxHeight, imaging.Lanczos)
		} else {
			scaled[i] = imaging.Clone(p)
		}
		totalWidth += scaled[i].Bounds().Dx()
	}
	if len(parts) > 1 {
		totalWidth += spacing * (len(parts) - 1)
	}

	dst := imaging.New(totalWidth, maxHeight, color.White)
	x := 0
	for _, p := range scaled {
		r := p.Bounds()
		draw.Draw(dst, image.Rect(x, 0, x+r.Dx(), maxHeight), p, r.Min, draw.Src)
		x += r.Dx() + spacing
	}
	return dst
}
