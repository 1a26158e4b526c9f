package hwcompose

// Transform describes the fixed orientation applied to a layer's source
// buffer before it is presented. The encoding is bitwise: bit 0 is a
// horizontal flip, bit 1 a vertical flip, bit 2 a 90° clockwise
// rotation. Flips apply before the rotation, which yields exactly eight
// distinct orientations.
type Transform uint8

// Transform constants cover all eight orientations.
const (
	// TransformNone presents the source as-is.
	TransformNone Transform = 0

	// TransformFlipH mirrors the source about its vertical axis.
	TransformFlipH Transform = 1

	// TransformFlipV mirrors the source about its horizontal axis.
	TransformFlipV Transform = 2

	// TransformRot180 rotates the source 180° (both flips combined).
	TransformRot180 Transform = TransformFlipH | TransformFlipV

	// TransformRot90 rotates the source 90° clockwise.
	TransformRot90 Transform = 4

	// TransformFlipH90 mirrors horizontally, then rotates 90° clockwise.
	TransformFlipH90 Transform = TransformFlipH | TransformRot90

	// TransformFlipV90 mirrors vertically, then rotates 90° clockwise.
	TransformFlipV90 Transform = TransformFlipV | TransformRot90

	// TransformRot270 rotates the source 270° clockwise.
	TransformRot270 Transform = TransformRot180 | TransformRot90

	// transformCount is the number of distinct orientations.
	transformCount = 8
)

// Swapped reports whether the transform exchanges the source axes
// relative to the destination (any orientation containing a 90°
// rotation). Callers scaling between source and destination space must
// swap width and height factors when Swapped is true.
func (t Transform) Swapped() bool {
	return t&TransformRot90 != 0
}

// Valid reports whether t is one of the eight defined orientations.
func (t Transform) Valid() bool {
	return t < transformCount
}

// String returns a human-readable name for the transform.
func (t Transform) String() string {
	switch t {
	case TransformNone:
		return "None"
	case TransformFlipH:
		return "FlipH"
	case TransformFlipV:
		return "FlipV"
	case TransformRot180:
		return "Rot180"
	case TransformRot90:
		return "Rot90"
	case TransformFlipH90:
		return "FlipH+Rot90"
	case TransformFlipV90:
		return "FlipV+Rot90"
	case TransformRot270:
		return "Rot270"
	default:
		return "Unknown"
	}
}
