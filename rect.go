package hwcompose

// Rect is an integer rectangle in display coordinates. Edges follow the
// half-open convention: a pixel (x, y) is inside when
// Left <= x < Right and Top <= y < Bottom.
type Rect struct {
	Left, Top, Right, Bottom int
}

// Rc is a convenience function to create a Rect.
func Rc(left, top, right, bottom int) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Width returns the rectangle width. Negative for inverted rectangles.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the rectangle height. Negative for inverted rectangles.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle encloses no pixels.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Contains reports whether q lies entirely within r.
func (r Rect) Contains(q Rect) bool {
	return q.Left >= r.Left && q.Top >= r.Top && q.Right <= r.Right && q.Bottom <= r.Bottom
}

// Overlaps reports whether r and q share at least one pixel.
func (r Rect) Overlaps(q Rect) bool {
	return q.Left < r.Right && q.Right > r.Left && q.Top < r.Bottom && q.Bottom > r.Top
}

// Intersect returns the intersection of r and q. The result is empty
// when the rectangles do not overlap.
func (r Rect) Intersect(q Rect) Rect {
	out := Rect{
		Left:   max(r.Left, q.Left),
		Top:    max(r.Top, q.Top),
		Right:  min(r.Right, q.Right),
		Bottom: min(r.Bottom, q.Bottom),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// FRect is a floating-point rectangle used for source crops, where
// sub-pixel precision matters for scaled layers.
type FRect struct {
	Left, Top, Right, Bottom float32
}

// FRc is a convenience function to create an FRect.
func FRc(left, top, right, bottom float32) FRect {
	return FRect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Width returns the rectangle width.
func (r FRect) Width() float32 { return r.Right - r.Left }

// Height returns the rectangle height.
func (r FRect) Height() float32 { return r.Bottom - r.Top }

// Empty reports whether the rectangle has zero or negative area.
func (r FRect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }
