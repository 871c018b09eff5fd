package utils

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBox_OrdersCoordinates(t *testing.T) {
	b := NewBox(10, 20, 5, 2)
	assert.Equal(t, Box{X0: 5, Y0: 2, X1: 10, Y1: 20}, b)
}

func TestBox_Union(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	b := NewBox(5, 5, 20, 8)
	u := a.Union(b)
	assert.Equal(t, Box{X0: 0, Y0: 0, X1: 20, Y1: 10}, u)
}

func TestBox_HorizontalGap(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want int
	}{
		{"separated", NewBox(0, 0, 10, 10), NewBox(15, 0, 20, 10), 5},
		{"reversed", NewBox(15, 0, 20, 10), NewBox(0, 0, 10, 10), 5},
		{"overlapping", NewBox(0, 0, 10, 10), NewBox(5, 0, 20, 10), 0},
		{"touching", NewBox(0, 0, 10, 10), NewBox(10, 0, 20, 10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.HorizontalGap(tt.b))
		})
	}
}

func TestBox_VerticalOverlap(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	b := NewBox(0, 5, 10, 20)
	assert.Equal(t, 5, a.VerticalOverlap(b))

	c := NewBox(0, 12, 10, 20)
	assert.Equal(t, 0, a.VerticalOverlap(c))
}

func TestBox_IoU(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	assert.InDelta(t, 1.0, a.IoU(a), 1e-9)

	b := NewBox(20, 20, 30, 30)
	assert.InDelta(t, 0.0, a.IoU(b), 1e-9)

	// Half overlap: intersection 50, union 150.
	c := NewBox(5, 0, 15, 10)
	assert.InDelta(t, 50.0/150.0, a.IoU(c), 1e-9)
}

func TestBox_ToRect_Clamps(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)
	b := NewBox(-5, -5, 110, 50)
	r := b.ToRect(bounds)
	assert.Equal(t, image.Rect(0, 0, 100, 50), r)
}

func TestBox_Expand(t *testing.T) {
	b := NewBox(10, 10, 20, 20).Expand(3)
	assert.Equal(t, Box{X0: 7, Y0: 7, X1: 23, Y1: 23}, b)
}
