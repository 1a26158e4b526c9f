package hwcompose

// BufferHandle identifies a graphics buffer owned by the producer.
// The core never dereferences it; identity comparison is all it needs.
type BufferHandle uintptr

// NoBuffer is the zero buffer handle.
const NoBuffer BufferHandle = 0

// BlendMode selects how a layer combines with the content beneath it.
type BlendMode uint8

// Blend mode constants.
const (
	// BlendNone presents the layer opaquely, ignoring alpha.
	BlendNone BlendMode = iota

	// BlendPremult blends with premultiplied per-pixel alpha.
	BlendPremult

	// BlendCoverage blends with non-premultiplied per-pixel alpha.
	BlendCoverage
)

// String returns a human-readable name for the blend mode.
func (b BlendMode) String() string {
	switch b {
	case BlendNone:
		return "None"
	case BlendPremult:
		return "Premult"
	case BlendCoverage:
		return "Coverage"
	default:
		return "Unknown"
	}
}

// Layer is one visual element of a display's frame. Layers are
// constructed fresh each frame by the producer; the core may substitute
// or drop them but never outlives the frame with a borrowed buffer.
//
// The buffer is referenced, not owned. The acquire fence gates reading
// the buffer and is consumed once; the release fence is produced by the
// core and signals when the buffer may be reused by the producer.
type Layer struct {
	Buffer       BufferHandle
	SourceCrop   FRect
	DisplayFrame Rect
	Transform    Transform
	Blend        BlendMode

	// Acquire gates reading Buffer. Consumed by whichever component
	// commits the layer; nil means ready now.
	Acquire *Fence

	// Release signals when Buffer is free for reuse. Produced during
	// commit; nil means the producer may reuse immediately.
	Release *Fence

	// Visible holds the sub-rectangles of DisplayFrame that actually
	// changed, enabling partial-update optimization downstream. Empty
	// means the whole frame is visible.
	Visible []Rect
}

// AttrsEqual reports whether the static attributes of two layers match:
// buffer identity, geometry, transform, blend mode, and visible
// regions. Fences are per-frame state and do not participate.
func (l *Layer) AttrsEqual(o *Layer) bool {
	if l == nil || o == nil {
		return l == o
	}
	if l.Buffer != o.Buffer ||
		l.SourceCrop != o.SourceCrop ||
		l.DisplayFrame != o.DisplayFrame ||
		l.Transform != o.Transform ||
		l.Blend != o.Blend {
		return false
	}
	if len(l.Visible) != len(o.Visible) {
		return false
	}
	for i := range l.Visible {
		if l.Visible[i] != o.Visible[i] {
			return false
		}
	}
	return true
}

// CloseFences closes both fences. Used when a layer is dropped from the
// frame before commit; the buffer is treated as immediately reusable.
func (l *Layer) CloseFences() {
	if l.Acquire != nil {
		l.Acquire.Close()
		l.Acquire = nil
	}
	if l.Release != nil {
		l.Release.Close()
		l.Release = nil
	}
}
