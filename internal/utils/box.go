package utils

import "image"

// Box is an axis-aligned bounding box in page pixel coordinates,
// matching the hOCR convention of x0,y0 (top-left) and x1,y1 (bottom-right).
type Box struct {
	X0 int
	Y0 int
	X1 int
	Y1 int
}

// NewBox constructs a Box ensuring coordinate ordering.
func NewBox(x0, y0, x1, y1 int) Box {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Box{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width returns the box width in pixels.
func (b Box) Width() int { return b.X1 - b.X0 }

// Height returns the box height in pixels.
func (b Box) Height() int { return b.Y1 - b.Y0 }

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.X1 <= b.X0 || b.Y1 <= b.Y0 }

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// Expand grows the box by margin pixels on every side.
func (b Box) Expand(margin int) Box {
	return Box{X0: b.X0 - margin, Y0: b.Y0 - margin, X1: b.X1 + margin, Y1: b.Y1 + margin}
}

// HorizontalGap returns the horizontal distance between b and o,
// or 0 if they overlap horizontally.
func (b Box) HorizontalGap(o Box) int {
	if b.X1 < o.X0 {
		return o.X0 - b.X1
	}
	if o.X1 < b.X0 {
		return b.X0 - o.X1
	}
	return 0
}

// VerticalOverlap returns the number of pixels shared on the vertical axis.
func (b Box) VerticalOverlap(o Box) int {
	top := max(b.Y0, o.Y0)
	bottom := min(b.Y1, o.Y1)
	if bottom <= top {
		return 0
	}
	return bottom - top
}

// IoU returns the intersection-over-union of two boxes.
func (b Box) IoU(o Box) float64 {
	ix := min(b.X1, o.X1) - max(b.X0, o.X0)
	iy := min(b.Y1, o.Y1) - max(b.Y0, o.Y0)
	if ix <= 0 || iy <= 0 {
		return 0
	}
	inter := ix * iy
	union := b.Width()*b.Height() + o.Width()*o.Height() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// ToRect converts the box to an image.Rectangle clamped to bounds.
func (b Box) ToRect(bounds image.Rectangle) image.Rectangle {
	x0 := clampInt(b.X0, bounds.Min.X, bounds.Max.X)
	y0 := clampInt(b.Y0, bounds.Min.Y, bounds.Max.Y)
	x1 := clampInt(b.X1, bounds.Min.X, bounds.Max.X)
	y1 := clampInt(b.Y1, bounds.Min.Y, bounds.Max.Y)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return image.Rect(x0, y0, x1, y1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
