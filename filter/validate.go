// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"fmt"
	"log/slog"

	hwc "github.com/intel/hwcompose"
)

// geometryChecker cross-checks the producer's geometry-changed flag
// against what actually changed between consecutive frames of the same
// display. Only compiled into the hot path under the hwcvalidate build
// tag; see validate_on.go.
//
// A flag raised without an attribute change wastes downstream
// re-validation work and is logged as a warning. An attribute change
// without the flag makes downstream composite stale plan state, which
// is a hard error: both snapshots are logged and observe panics.
type geometryChecker struct {
	prev []*displaySnap
}

// displaySnap is an attribute-only copy of one display's frame, held
// across frames for comparison. Fences are per-frame and not retained.
type displaySnap struct {
	enabled bool
	frame   uint32
	layers  []hwc.Layer
}

// snapshot copies the attributes of d.
func snapshot(d *hwc.DisplayContents) *displaySnap {
	s := &displaySnap{
		enabled: d.Enabled,
		frame:   d.FrameIndex,
		layers:  make([]hwc.Layer, len(d.Layers)),
	}
	for i, l := range d.Layers {
		if l == nil {
			continue
		}
		cp := *l
		cp.Acquire = nil
		cp.Release = nil
		cp.Visible = append([]hwc.Rect(nil), l.Visible...)
		s.layers[i] = cp
	}
	return s
}

// attrsEqual compares a retained snapshot against the current frame.
func (s *displaySnap) attrsEqual(d *hwc.DisplayContents) bool {
	if len(s.layers) != len(d.Layers) {
		return false
	}
	for i := range s.layers {
		if !s.layers[i].AttrsEqual(d.Layers[i]) {
			return false
		}
	}
	return true
}

// summary renders a snapshot compactly for the abort log.
func (s *displaySnap) summary() string {
	out := fmt.Sprintf("frame=%d enabled=%v layers=%d", s.frame, s.enabled, len(s.layers))
	for i := range s.layers {
		l := &s.layers[i]
		out += fmt.Sprintf(" [%d: buf=%#x src=%v dst=%v tr=%s blend=%s]",
			i, uintptr(l.Buffer), l.SourceCrop, l.DisplayFrame, l.Transform, l.Blend)
	}
	return out
}

// observe records content as the latest frame and validates the
// geometry-changed flag of every display whose previous frame is
// comparable (same enabled state, frame index advanced by exactly one).
func (g *geometryChecker) observe(c *hwc.Content) {
	if c == nil {
		return
	}
	if len(g.prev) < len(c.Displays) {
		g.prev = append(g.prev, make([]*displaySnap, len(c.Displays)-len(g.prev))...)
	}
	for i, d := range c.Displays {
		if d == nil {
			g.prev[i] = nil
			continue
		}
		p := g.prev[i]
		g.prev[i] = snapshot(d)
		if p == nil || p.enabled != d.Enabled || d.FrameIndex != p.frame+1 {
			continue
		}
		equal := p.attrsEqual(d)
		if equal && d.GeometryChanged {
			hwc.Logger().Warn("redundant geometry-change flag",
				slog.Int("display", i),
				slog.Uint64("frame", uint64(d.FrameIndex)))
		}
		if !equal && !d.GeometryChanged {
			hwc.Logger().Error("geometry change not signaled",
				slog.Int("display", i),
				slog.Uint64("frame", uint64(d.FrameIndex)),
				slog.String("previous", p.summary()),
				slog.String("current", g.prev[i].summary()))
			panic(fmt.Sprintf("filter: geometry change not signaled for display %d at frame %d", i, d.FrameIndex))
		}
	}
}
