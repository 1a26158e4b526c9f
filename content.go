package hwcompose

// DisplayFlags aggregates per-display conditions derived from the layer
// stack.
type DisplayFlags uint8

// Display flag constants.
const (
	// FlagBlanked is set while any layer slot on the display is
	// substituted with a filler buffer.
	FlagBlanked DisplayFlags = 1 << iota
)

// DisplayContents is the frame snapshot for one display: an ordered
// layer stack (index is z-order, bottom first), a strictly increasing
// frame index, and the geometry-changed flag.
//
// GeometryChanged must be true whenever the active layer set or any
// layer's static attributes differ from the immediately preceding frame
// for this display. Producers own the flag; the core validates it in
// debug builds and consumes it downstream.
type DisplayContents struct {
	Enabled         bool
	FrameIndex      uint32
	GeometryChanged bool
	Flags           DisplayFlags

	// Bounds is the display's active region in display coordinates.
	// Layers are clipped against it before plane assignment.
	Bounds Rect

	Layers []*Layer
}

// AttrsEqual reports whether two snapshots of the same display are
// attribute-equal: same enabled state, same layer count, and pairwise
// attribute-equal layers.
func (d *DisplayContents) AttrsEqual(o *DisplayContents) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Enabled != o.Enabled || len(d.Layers) != len(o.Layers) {
		return false
	}
	for i := range d.Layers {
		if !d.Layers[i].AttrsEqual(o.Layers[i]) {
			return false
		}
	}
	return true
}

// Content is the per-frame input to the filter chain: one snapshot per
// display, in stable display order.
type Content struct {
	Displays []*DisplayContents
}

// Display returns the snapshot for display i, or nil when out of range.
// Disconnected displays appear as nil entries and are skipped.
func (c *Content) Display(i int) *DisplayContents {
	if c == nil || i < 0 || i >= len(c.Displays) {
		return nil
	}
	return c.Displays[i]
}

// Clone produces a snapshot copy the caller may mutate without
// disturbing the original: display records and layer slices are copied,
// the layers themselves are shared. Filter stages that modify a frame
// clone first and return the clone.
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	out := &Content{Displays: make([]*DisplayContents, len(c.Displays))}
	for i, d := range c.Displays {
		if d == nil {
			continue
		}
		dc := *d
		dc.Layers = make([]*Layer, len(d.Layers))
		copy(dc.Layers, d.Layers)
		out.Displays[i] = &dc
	}
	return out
}
