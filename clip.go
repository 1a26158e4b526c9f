package hwcompose

// Destination edge indices for the clip lookup table.
const (
	edgeLeft = iota
	edgeTop
	edgeRight
	edgeBottom
)

// clipEdgeTable maps (transform, destination edge) to the source edge
// that must be trimmed when the destination edge is clipped.
//
// The transform maps source edges onto destination edges; clipping a
// destination edge therefore trims the source edge that lands on it.
// Rows are indexed by Transform (0..7), columns by the destination edge
// being clipped (left, top, right, bottom). For example under Rot90
// (90° clockwise) the source's top row becomes the destination's right
// column, so clipping the destination right edge trims the source top.
var clipEdgeTable = [transformCount][4]int{
	TransformNone:    {edgeLeft, edgeTop, edgeRight, edgeBottom},
	TransformFlipH:   {edgeRight, edgeTop, edgeLeft, edgeBottom},
	TransformFlipV:   {edgeLeft, edgeBottom, edgeRight, edgeTop},
	TransformRot180:  {edgeRight, edgeBottom, edgeLeft, edgeTop},
	TransformRot90:   {edgeBottom, edgeLeft, edgeTop, edgeRight},
	TransformFlipH90: {edgeBottom, edgeRight, edgeTop, edgeLeft},
	TransformFlipV90: {edgeTop, edgeLeft, edgeBottom, edgeRight},
	TransformRot270:  {edgeTop, edgeRight, edgeBottom, edgeLeft},
}

// ClipToBounds clips the destination rectangle dst against bounds and
// adjusts the source crop src proportionally, so the visible portion of
// the source still maps onto the clipped destination under transform tr.
//
// It returns false without performing any clipping when the inputs are
// degenerate (zero-area src, dst, or bounds) or when dst lies entirely
// outside bounds; in both cases the caller must drop the layer and src
// and dst may be left in a partially modified state. It returns true
// with src and dst unmodified when dst is already contained in bounds.
//
// Otherwise each destination edge exceeding bounds is clamped to the
// bound, and the corresponding source edge (per clipEdgeTable) is moved
// inward by the overflow scaled into source space. For the four
// orientations containing a 90° rotation the source axes are transposed
// relative to the destination, so the width/height scale factors swap.
func ClipToBounds(src *FRect, dst *Rect, tr Transform, bounds Rect) bool {
	if dst.Empty() || src.Empty() || bounds.Empty() || !tr.Valid() {
		return false
	}
	if !bounds.Overlaps(*dst) {
		return false
	}
	if bounds.Contains(*dst) {
		return true
	}

	// Source-space distance trimmed per destination pixel clipped, for
	// horizontal (left/right) and vertical (top/bottom) destination edges.
	var scaleLR, scaleTB float32
	if tr.Swapped() {
		scaleLR = src.Height() / float32(dst.Width())
		scaleTB = src.Width() / float32(dst.Height())
	} else {
		scaleLR = src.Width() / float32(dst.Width())
		scaleTB = src.Height() / float32(dst.Height())
	}

	edges := &clipEdgeTable[tr]
	if over := bounds.Left - dst.Left; over > 0 {
		trimSrcEdge(src, edges[edgeLeft], scaleLR*float32(over))
		dst.Left = bounds.Left
	}
	if over := dst.Right - bounds.Right; over > 0 {
		trimSrcEdge(src, edges[edgeRight], scaleLR*float32(over))
		dst.Right = bounds.Right
	}
	if over := bounds.Top - dst.Top; over > 0 {
		trimSrcEdge(src, edges[edgeTop], scaleTB*float32(over))
		dst.Top = bounds.Top
	}
	if over := dst.Bottom - bounds.Bottom; over > 0 {
		trimSrcEdge(src, edges[edgeBottom], scaleTB*float32(over))
		dst.Bottom = bounds.Bottom
	}
	return true
}

// trimSrcEdge moves one source edge inward by amount.
func trimSrcEdge(src *FRect, edge int, amount float32) {
	switch edge {
	case edgeLeft:
		src.Left += amount
	case edgeTop:
		src.Top += amount
	case edgeRight:
		src.Right -= amount
	case edgeBottom:
		src.Bottom -= amount
	}
}
