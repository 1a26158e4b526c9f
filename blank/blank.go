// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package blank substitutes selected layers of a frame with a filler
// buffer, typically to mask protected (DRM) content on an unapproved
// display path, while raising geometry-change signaling only when the
// substitution set actually changes.
//
// The caller drives one cycle per frame from the frame-processing
// context: Clear, zero or more Blank calls, then Update. The package
// performs no internal locking.
package blank

import (
	"log/slog"

	hwc "github.com/intel/hwcompose"
)

// Defaults for the bounded tracking tables.
const (
	defaultMaxDisplays = 16
	defaultMaxSlots    = 64
)

// slot tracks one blanked layer position on a display. The replacement
// layer persists across frames while the slot identity is unchanged, so
// repeated frames reuse it without re-copying geometry.
type slot struct {
	layerIndex int
	repl       *hwc.Layer
	changed    bool
}

// displayState is the per-display slot table.
type displayState struct {
	slots        []slot
	requested    int  // slots requested since the last Clear
	geometryHint bool // Clear announced an upstream geometry change
}

// Blanker implements layer blanking over a caller-supplied filler
// buffer. Not safe for concurrent use; Clear, Blank, and Update must be
// serialized by the frame-processing context.
type Blanker struct {
	filler      hwc.BufferHandle
	fillerCrop  hwc.FRect
	maxDisplays int
	maxSlots    int
	displays    []displayState
}

// Option configures a Blanker.
type Option func(*Blanker)

// WithMaxDisplays bounds the per-display tracking table.
func WithMaxDisplays(n int) Option {
	return func(b *Blanker) { b.maxDisplays = n }
}

// WithMaxSlots bounds the per-layer slot table of each display.
func WithMaxSlots(n int) Option {
	return func(b *Blanker) { b.maxSlots = n }
}

// New creates a Blanker substituting layers with the given filler
// buffer and source crop.
func New(filler hwc.BufferHandle, fillerCrop hwc.FRect, opts ...Option) *Blanker {
	b := &Blanker{
		filler:      filler,
		fillerCrop:  fillerCrop,
		maxDisplays: defaultMaxDisplays,
		maxSlots:    defaultMaxSlots,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// grow extends the display table to cover index d. Returns false when
// the table bound is exhausted; the caller cannot safely proceed
// without blanking guarantees and must treat this as fatal for the
// display.
func (b *Blanker) grow(d int) bool {
	if d < 0 || d >= b.maxDisplays {
		hwc.Logger().Error("blank: display table exhausted",
			slog.Int("display", d),
			slog.Int("max", b.maxDisplays))
		return false
	}
	for len(b.displays) <= d {
		b.displays = append(b.displays, displayState{})
	}
	return true
}

// Clear opens a new blanking cycle for display d. With geometryChange
// false the existing slot list is kept so slot identity survives into
// the coming Blank calls; with geometryChange true the layer indices of
// previous frames are meaningless and the slot list is dropped, to be
// rebuilt (and the display re-flagged) by Update.
func (b *Blanker) Clear(d int, geometryChange bool) bool {
	if !b.grow(d) {
		return false
	}
	st := &b.displays[d]
	st.requested = 0
	if geometryChange {
		st.slots = st.slots[:0]
		st.geometryHint = true
	}
	return true
}

// Blank requests that layer layerIndex of display d be substituted in
// the next Update. Calls between Clear and Update accumulate; order
// matters only in that the n-th Blank call claims the n-th slot.
func (b *Blanker) Blank(d, layerIndex int) bool {
	if !b.grow(d) {
		return false
	}
	st := &b.displays[d]
	if st.requested >= b.maxSlots {
		hwc.Logger().Error("blank: slot table exhausted",
			slog.Int("display", d),
			slog.Int("max", b.maxSlots))
		return false
	}
	i := st.requested
	st.requested++
	if i < len(st.slots) {
		if st.slots[i].layerIndex != layerIndex {
			st.slots[i].layerIndex = layerIndex
			st.slots[i].changed = true
		}
		return true
	}
	st.slots = append(st.slots, slot{layerIndex: layerIndex, changed: true})
	return true
}

// Update applies the requested substitutions to content and returns the
// resulting snapshot. When no display has pending slots, no leftover
// slots to prune, and no announced geometry change, Update returns its
// input unmodified. Otherwise it clones the snapshot, prunes each
// display's slot list to the count requested this frame, installs
// replacement layers, releases the fences of the originals (they are
// discarded this frame, so their buffers are immediately reusable), and
// recomputes each display's flags.
func (b *Blanker) Update(content *hwc.Content) *hwc.Content {
	if content == nil || b.idle() {
		return content
	}
	out := content.Clone()
	for d := range b.displays {
		st := &b.displays[d]
		dc := out.Display(d)
		if dc == nil {
			st.slots = st.slots[:0]
			st.geometryHint = false
			continue
		}
		changed := st.geometryHint
		st.geometryHint = false

		// Prune slots beyond what this frame requested. Dropping a
		// substitution re-exposes the original layer: geometry change.
		if len(st.slots) > st.requested {
			st.slots = st.slots[:st.requested]
			changed = true
		}

		for i := range st.slots {
			s := &st.slots[i]
			if s.layerIndex < 0 || s.layerIndex >= len(dc.Layers) {
				hwc.Logger().Warn("blank: slot out of range",
					slog.Int("display", d),
					slog.Int("layer", s.layerIndex),
					slog.Int("stack", len(dc.Layers)))
				continue
			}
			orig := dc.Layers[s.layerIndex]
			if orig == b.slotLayer(s) {
				// Already substituted on a retained frame.
				continue
			}
			if s.changed || s.repl == nil {
				s.repl = b.replacement(orig, s.repl)
				s.changed = false
				changed = true
			}
			dc.Layers[s.layerIndex] = s.repl
			orig.CloseFences()
		}

		if len(st.slots) > 0 {
			dc.Flags |= hwc.FlagBlanked
		} else {
			dc.Flags &^= hwc.FlagBlanked
		}
		if changed {
			dc.GeometryChanged = true
		}
	}
	return out
}

// idle reports whether Update has nothing to do for any display.
func (b *Blanker) idle() bool {
	for i := range b.displays {
		st := &b.displays[i]
		if st.requested > 0 || len(st.slots) > 0 || st.geometryHint {
			return false
		}
	}
	return true
}

// slotLayer returns the slot's replacement layer, or nil.
func (b *Blanker) slotLayer(s *slot) *hwc.Layer {
	return s.repl
}

// replacement builds or refreshes the persistent replacement layer for
// a slot, copying the destination geometry and visible regions from the
// original so downstream plane assignment is undisturbed.
func (b *Blanker) replacement(orig, repl *hwc.Layer) *hwc.Layer {
	if repl == nil {
		repl = &hwc.Layer{}
	}
	repl.Buffer = b.filler
	repl.SourceCrop = b.fillerCrop
	repl.DisplayFrame = orig.DisplayFrame
	repl.Transform = hwc.TransformNone
	repl.Blend = hwc.BlendNone
	repl.Visible = append(repl.Visible[:0], orig.Visible...)
	repl.Acquire = nil
	repl.Release = nil
	return repl
}
