// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	hwc "github.com/intel/hwcompose"
	"github.com/intel/hwcompose/blank"
	"github.com/intel/hwcompose/filter"
)

// blankStage adapts the layer blanker into the filter chain. It runs in
// client space: blanking decisions reference the client's layer
// indices, before the display manager rearranges stacks.
type blankStage struct {
	b *blank.Blanker
}

// Name implements filter.Stage.
func (s *blankStage) Name() string { return "blank" }

// Space implements filter.Stage.
func (s *blankStage) Space() filter.Space { return filter.SpaceClient }

// Run implements filter.Stage.
func (s *blankStage) Run(c *hwc.Content) *hwc.Content {
	return s.b.Update(c)
}

// viewportStage clips every layer to its display's bounds in physical
// space, dropping layers that fall entirely off-screen. Off-screen
// drops change the active layer set and therefore raise the display's
// geometry-changed flag.
type viewportStage struct {
	p *Pipeline
}

// Name implements filter.Stage.
func (s *viewportStage) Name() string { return "viewport" }

// Space implements filter.Stage.
func (s *viewportStage) Space() filter.Space { return filter.SpacePhysical }

// Run implements filter.Stage.
func (s *viewportStage) Run(c *hwc.Content) *hwc.Content {
	out := c
	cloned := false
	for i, dc := range c.Displays {
		if dc == nil || !dc.Enabled {
			continue
		}
		caps := s.p.Capabilities(i)
		if caps == nil || caps.Bounds.Empty() {
			continue
		}
		bounds := caps.Bounds
		if !stackNeedsClip(dc.Layers, bounds) {
			continue
		}
		if !cloned {
			out = c.Clone()
			cloned = true
		}
		odc := out.Displays[i]
		kept := make([]*hwc.Layer, 0, len(odc.Layers))
		for _, l := range odc.Layers {
			if bounds.Contains(l.DisplayFrame) {
				kept = append(kept, l)
				continue
			}
			src, dst := l.SourceCrop, l.DisplayFrame
			if !hwc.ClipToBounds(&src, &dst, l.Transform, bounds) {
				// Entirely off-screen (or degenerate): drop it. The
				// buffer is unused this frame, so its fences resolve now.
				l.CloseFences()
				odc.GeometryChanged = true
				continue
			}
			nl := *l
			nl.SourceCrop = src
			nl.DisplayFrame = dst
			kept = append(kept, &nl)
		}
		odc.Layers = kept
	}
	return out
}

// stackNeedsClip reports whether any layer extends beyond bounds.
func stackNeedsClip(layers []*hwc.Layer, bounds hwc.Rect) bool {
	for _, l := range layers {
		if l != nil && !bounds.Contains(l.DisplayFrame) {
			return true
		}
	}
	return false
}
