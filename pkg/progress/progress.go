// Package progress maps a viewport state to a reading-progress percentage.
package progress

import (
	"math"

	"github.com/dtnitsch/readtime/models"
)

// BottomBuffer is the distance in pixels from the end of the content within
// which progress snaps to 100.
const BottomBuffer = 100.0

// Viewport is a snapshot of the scroll state of a page.
type Viewport struct {
	ScrollOffset   float64 `json:"scrollOffset"`
	DocumentHeight float64 `json:"documentHeight"`
	ViewportHeight float64 `json:"viewportHeight"`
}

// Rect is the vertical extent of an element in document coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Compute returns the reading progress in [0,100]. With a nil bounds the
// whole document is measured; otherwise progress is scoped to bounds.
func Compute(v Viewport, bounds *Rect) float64 {
	v = v.sanitize()
	if bounds == nil {
		return unbounded(v)
	}
	return bounded(v, sanitizeRect(*bounds))
}

func unbounded(v Viewport) float64 {
	total := v.DocumentHeight - v.ViewportHeight
	if total <= 0 {
		return 100
	}

	remaining := v.DocumentHeight - (v.ScrollOffset + v.ViewportHeight)
	if remaining < BottomBuffer {
		return 100
	}

	return models.ClampPercent(v.ScrollOffset / total * 100)
}

func bounded(v Viewport, r Rect) float64 {
	if v.ScrollOffset+v.ViewportHeight >= r.Bottom-BottomBuffer {
		return 100
	}

	start := math.Max(0, r.Top)
	end := r.Bottom - v.ViewportHeight
	span := end - start
	if span <= 0 {
		return 100
	}

	return models.ClampPercent((v.ScrollOffset - start) / span * 100)
}

func (v Viewport) sanitize() Viewport {
	v.ScrollOffset = nonNegative(v.ScrollOffset)
	v.DocumentHeight = nonNegative(v.DocumentHeight)
	v.ViewportHeight = nonNegative(v.ViewportHeight)
	return v
}

func sanitizeRect(r Rect) Rect {
	if math.IsNaN(r.Top) {
		r.Top = 0
	}
	if math.IsNaN(r.Bottom) {
		r.Bottom = 0
	}
	return r
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return f
}
