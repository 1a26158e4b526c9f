// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package display describes the closed set of display kinds the
// compositing core serves and the plane capability data pushed down to
// it by the platform's capability collaborator. The package holds this
// data; probing hardware to produce it happens elsewhere.
package display

import (
	"github.com/gogpu/gputypes"

	hwc "github.com/intel/hwcompose"
)

// Kind identifies the variant of a display. The set is closed; dispatch
// on it with explicit switches rather than interface indirection.
type Kind uint8

// Display kind constants.
const (
	// KindUnspecified is a display whose type is not yet known.
	KindUnspecified Kind = iota

	// KindPanel is the built-in panel.
	KindPanel

	// KindExternal is a hotpluggable external display (HDMI/DP).
	KindExternal

	// KindVirtual is an off-screen composition target.
	KindVirtual

	// KindWidi is a wireless cast display.
	KindWidi

	// KindFake is a placeholder display used when no hardware is
	// present, keeping the frame loop alive.
	KindFake
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnspecified:
		return "Unspecified"
	case KindPanel:
		return "Panel"
	case KindExternal:
		return "External"
	case KindVirtual:
		return "Virtual"
	case KindWidi:
		return "Widi"
	case KindFake:
		return "Fake"
	default:
		return "Unknown"
	}
}

// TransformMask is a bitmask of supported layer transforms, one bit per
// hwcompose.Transform value.
type TransformMask uint8

// Supports reports whether the transform bit for t is set.
func (m TransformMask) Supports(t hwc.Transform) bool {
	return m&(1<<t) != 0
}

// AllTransforms covers all eight orientations.
const AllTransforms TransformMask = 0xff

// BlendMask is a bitmask of supported blend modes, one bit per
// hwcompose.BlendMode value.
type BlendMask uint8

// Supports reports whether the blend bit for b is set.
func (m BlendMask) Supports(b hwc.BlendMode) bool {
	return m&(1<<b) != 0
}

// AllBlends covers every blend mode.
const AllBlends BlendMask = 1<<hwc.BlendNone | 1<<hwc.BlendPremult | 1<<hwc.BlendCoverage

// PlaneCaps describes what one hardware plane can present.
type PlaneCaps struct {
	// Formats lists the pixel formats the plane scans out.
	Formats []gputypes.TextureFormat

	// Transforms are the orientations the plane applies in hardware.
	Transforms TransformMask

	// Blends are the blend modes the plane supports.
	Blends BlendMask
}

// SupportsFormat reports whether the plane scans out format f.
func (p *PlaneCaps) SupportsFormat(f gputypes.TextureFormat) bool {
	for _, have := range p.Formats {
		if have == f {
			return true
		}
	}
	return false
}

// Capabilities is the per-display capability descriptor shared between
// the capability collaborator (writer) and the filter chain (reader).
type Capabilities struct {
	Kind Kind

	// Bounds is the active display region.
	Bounds hwc.Rect

	// OutputFormat is the single authoritative scan-out format for the
	// display, pushed down by UpdateOutputFormat.
	OutputFormat gputypes.TextureFormat

	// Planes describe the physical planes, bottom-most first. The
	// plane count is fixed by hardware; the core never resizes this.
	Planes []PlaneCaps
}

// UpdateOutputFormat pushes one authoritative output format into the
// descriptor and moves it to the front of every plane's format list
// that already carries it, so plane assignment prefers it. Planes that
// cannot scan out the format keep their lists unchanged. The core does
// not negotiate formats; it records the collaborator's decision.
func (c *Capabilities) UpdateOutputFormat(f gputypes.TextureFormat) {
	c.OutputFormat = f
	for i := range c.Planes {
		p := &c.Planes[i]
		if len(p.Formats) > 0 && p.Formats[0] == f {
			continue
		}
		for j, have := range p.Formats {
			if have == f {
				copy(p.Formats[1:j+1], p.Formats[:j])
				p.Formats[0] = f
				break
			}
		}
	}
}
