// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	hwc "github.com/intel/hwcompose"
)

// Stage is one transformation step of the frame pipeline. Run receives
// the current content reference and returns either the same reference
// (no change) or a modified clone. Stages must not mutate the input
// when they return a new reference.
type Stage interface {
	// Name identifies the stage in logs and dumps.
	Name() string

	// Space declares the coordinate space the stage operates in. It
	// must match the space implied by the registration position.
	Space() Space

	// Run transforms one frame's content.
	Run(*hwc.Content) *hwc.Content
}

// Chain holds the registered stages in ascending position order.
//
// One mutex serializes Add, Remove, Apply, and Dump, permitting runtime
// reconfiguration without races. Apply is called once per frame from a
// single producer context, so the serialization point is not contended
// in practice.
type Chain struct {
	mu      sync.Mutex
	entries []chainEntry
	check   geometryChecker
}

// chainEntry pairs a stage with its registered position.
type chainEntry struct {
	stage Stage
	pos   Position
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add registers a stage at the given position, keeping entries sorted.
// Stages registered at equal positions run in registration order.
// A position/space mismatch returns a *WiringError and registers
// nothing.
func (c *Chain) Add(s Stage, pos Position) error {
	if s.Space() != pos.space() {
		return &WiringError{Stage: s.Name(), Position: pos, Declared: s.Space()}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := sort.Search(len(c.entries), func(i int) bool { return c.entries[i].pos > pos })
	c.entries = append(c.entries, chainEntry{})
	copy(c.entries[i+1:], c.entries[i:])
	c.entries[i] = chainEntry{stage: s, pos: pos}
	hwc.Logger().Info("filter stage registered",
		slog.String("stage", s.Name()),
		slog.Int("position", int(pos)))
	return nil
}

// Remove unregisters a stage by identity. Returns false when the stage
// is not in the chain.
func (c *Chain) Remove(s Stage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.stage == s {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered stages.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Apply runs every stage whose position lies in [first, last] over
// content, in ascending position order, and returns the final content
// reference. Entries are position-sorted, so the walk exits early once
// positions exceed last.
func (c *Chain) Apply(content *hwc.Content, first, last Position) *hwc.Content {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.pos > last {
			break
		}
		if e.pos < first {
			continue
		}
		out := e.stage.Run(content)
		if out != content {
			hwc.Logger().Debug("filter stage changed content",
				slog.String("stage", e.stage.Name()),
				slog.Int("position", int(e.pos)))
			content = out
		}
	}
	if validateGeometry && last >= PositionDisplayManager {
		c.check.observe(content)
	}
	return content
}

// Dump writes the registered stages in execution order.
func (c *Chain) Dump(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		fmt.Fprintf(w, "%5d %-9s %s\n", e.pos, e.stage.Space(), e.stage.Name())
	}
}
