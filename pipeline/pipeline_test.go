// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	hwc "github.com/intel/hwcompose"
	"github.com/intel/hwcompose/config"
	"github.com/intel/hwcompose/filter"
	"github.com/intel/hwcompose/timeline"
)

// newTestPipeline builds a pipeline over captured in-process sync
// devices so tests can inspect descriptor accounting.
func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, []*timeline.MemDevice) {
	t.Helper()
	var devs []*timeline.MemDevice
	capture := func(int) (timeline.SyncDevice, error) {
		d := timeline.NewMemDevice()
		devs = append(devs, d)
		return d, nil
	}
	p, err := New(append([]Option{WithDevices(capture)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p, devs
}

// frame builds a single-display snapshot sized for the default config.
func frame(index uint32, layers ...*hwc.Layer) *hwc.Content {
	return &hwc.Content{Displays: []*hwc.DisplayContents{{
		Enabled:    true,
		FrameIndex: index,
		Bounds:     hwc.Rc(0, 0, 1920, 1080),
		Layers:     layers,
	}}}
}

func onScreenLayer(buf hwc.BufferHandle) *hwc.Layer {
	return &hwc.Layer{
		Buffer:       buf,
		SourceCrop:   hwc.FRc(0, 0, 256, 256),
		DisplayFrame: hwc.Rc(100, 100, 356, 356),
		Blend:        hwc.BlendPremult,
	}
}

// =============================================================================
// Assembly
// =============================================================================

func TestNewDefaults(t *testing.T) {
	p, devs := newTestPipeline(t)

	if len(devs) != 1 {
		t.Fatalf("opened %d sync devices, want 1", len(devs))
	}
	if p.Timeline(0) == nil || p.Timeline(1) != nil || p.Timeline(-1) != nil {
		t.Errorf("Timeline index bounds wrong")
	}
	caps := p.Capabilities(0)
	if caps == nil || caps.Bounds != hwc.Rc(0, 0, 1920, 1080) {
		t.Errorf("Capabilities(0) = %+v", caps)
	}
	if p.Capabilities(1) != nil {
		t.Errorf("Capabilities past end not nil")
	}
	if p.Store() != nil {
		t.Errorf("Store open without a registry path")
	}
	if got := p.Chain().Len(); got != 2 {
		t.Errorf("built-in stage count = %d, want 2", got)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Displays[0].Width = 0
	if _, err := New(WithConfig(cfg)); err == nil {
		t.Errorf("invalid config accepted")
	}
}

func TestNewOpensRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.Registry = filepath.Join(t.TempDir(), "options")
	p, _ := newTestPipeline(t, WithConfig(cfg))

	if p.Store() == nil {
		t.Fatalf("registry not opened")
	}
	if err := p.Store().Write("panel.gamma", "2.2"); err != nil {
		t.Errorf("Store().Write: %v", err)
	}
}

func TestNewToleratesDeviceFailure(t *testing.T) {
	fail := func(int) (timeline.SyncDevice, error) {
		return nil, fmt.Errorf("no sw_sync node")
	}
	p, err := New(WithDevices(fail))
	if err != nil {
		t.Fatalf("device failure broke construction: %v", err)
	}
	defer p.Close()

	plan, err := p.Commit(frame(1, onScreenLayer(0x1)))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if plan.Retire[0] != nil {
		t.Errorf("disabled timeline issued a retire fence")
	}
}

func TestChainRejectsMisplacedStage(t *testing.T) {
	p, _ := newTestPipeline(t)

	err := p.Chain().Add(&badStage{}, PositionBlank)
	var werr *filter.WiringError
	if !errors.As(err, &werr) {
		t.Fatalf("Add = %v, want *WiringError", err)
	}
}

type badStage struct{}

func (*badStage) Name() string                    { return "bad" }
func (*badStage) Space() filter.Space             { return filter.SpacePhysical }
func (*badStage) Run(c *hwc.Content) *hwc.Content { return c }

// =============================================================================
// Commit
// =============================================================================

func TestCommitNilContent(t *testing.T) {
	p, _ := newTestPipeline(t)
	if _, err := p.Commit(nil); !errors.Is(err, ErrNoContent) {
		t.Errorf("Commit(nil) = %v, want ErrNoContent", err)
	}
}

func TestCommitIssuesFences(t *testing.T) {
	p, _ := newTestPipeline(t)
	tl := p.Timeline(0)

	plan, err := p.Commit(frame(1, onScreenLayer(0x1), onScreenLayer(0x2)))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !plan.Retire[0].Valid() {
		t.Fatalf("no retire fence")
	}
	if plan.RetireValues[0] != 1 {
		t.Errorf("retire value = %d, want 1", plan.RetireValues[0])
	}
	layers := plan.Content.Displays[0].Layers
	for i, l := range layers {
		if !l.Release.Valid() {
			t.Fatalf("layer %d has no release fence", i)
		}
		if got := tl.Status(l.Release); got != timeline.StatusActive {
			t.Errorf("layer %d release active before retire: %s", i, got)
		}
	}

	// One hardware retire releases the frame and every layer with it.
	p.Retire(0)
	if got := tl.Status(plan.Retire[0]); got != timeline.StatusSignaled {
		t.Errorf("retire fence = %s after Retire", got)
	}
	for i, l := range layers {
		if got := tl.Status(l.Release); got != timeline.StatusSignaled {
			t.Errorf("layer %d release = %s after Retire", i, got)
		}
	}

	plan.Retire[0].Close()
	for _, l := range layers {
		l.CloseFences()
	}
}

func TestCommitKeepsExistingReleaseFence(t *testing.T) {
	p, _ := newTestPipeline(t)

	var closed bool
	l := onScreenLayer(0x1)
	pre := hwc.NewFence(99, func(int) error { closed = true; return nil })
	l.Release = pre

	plan, err := p.Commit(frame(1, l))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got := plan.Content.Displays[0].Layers[0].Release; got != pre {
		t.Errorf("pre-attached release fence replaced")
	}
	if closed {
		t.Errorf("pre-attached release fence closed")
	}
	plan.Retire[0].Close()
	pre.Close()
}

func TestCommitSkipsDisabledDisplay(t *testing.T) {
	p, _ := newTestPipeline(t)

	content := frame(1, onScreenLayer(0x1))
	content.Displays[0].Enabled = false
	plan, err := p.Commit(content)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if plan.Retire[0] != nil || plan.RetireValues[0] != 0 {
		t.Errorf("disabled display got a retire fence")
	}
	if plan.Content.Displays[0].Layers[0].Release.Valid() {
		t.Errorf("disabled display got release fences")
	}
}

func TestRetireSequencing(t *testing.T) {
	p, devs := newTestPipeline(t)
	tl := p.Timeline(0)

	var plans []*FramePlan
	for i := uint32(1); i <= 3; i++ {
		plan, err := p.Commit(frame(i, onScreenLayer(hwc.BufferHandle(i))))
		if err != nil {
			t.Fatalf("Commit %d: %v", i, err)
		}
		plans = append(plans, plan)
	}

	// Frames retire in order; each Retire releases exactly one frame.
	for i, plan := range plans {
		if got := tl.Status(plan.Retire[0]); got != timeline.StatusActive {
			t.Fatalf("frame %d retired early: %s", i, got)
		}
		p.Retire(0)
		if got := tl.Status(plan.Retire[0]); got != timeline.StatusSignaled {
			t.Fatalf("frame %d not retired: %s", i, got)
		}
	}

	for _, plan := range plans {
		plan.Retire[0].Close()
		for _, l := range plan.Content.Displays[0].Layers {
			l.CloseFences()
		}
	}
	if n := devs[0].OpenFences(); n != 0 {
		t.Errorf("leaked %d descriptors", n)
	}
}

// =============================================================================
// Built-in stages through Commit
// =============================================================================

func TestCommitClipsToViewport(t *testing.T) {
	p, _ := newTestPipeline(t)

	// Hangs 80px off the right edge at 1:1 scale.
	over := &hwc.Layer{
		Buffer:       0x1,
		SourceCrop:   hwc.FRc(0, 0, 200, 100),
		DisplayFrame: hwc.Rc(1800, 0, 2000, 100),
	}
	inside := onScreenLayer(0x2)

	content := frame(1, over, inside)
	plan, err := p.Commit(content)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got := plan.Content.Displays[0].Layers[0]
	if got.DisplayFrame != hwc.Rc(1800, 0, 1920, 100) {
		t.Errorf("clipped frame = %v", got.DisplayFrame)
	}
	if got.SourceCrop != hwc.FRc(0, 0, 120, 100) {
		t.Errorf("clipped crop = %v", got.SourceCrop)
	}
	// The input snapshot is untouched; clipping worked on a clone.
	if over.DisplayFrame != hwc.Rc(1800, 0, 2000, 100) {
		t.Errorf("input layer mutated: %v", over.DisplayFrame)
	}
	if plan.Content.Displays[0].Layers[1] != inside {
		t.Errorf("contained layer not passed through by reference")
	}

	plan.Retire[0].Close()
	for _, l := range plan.Content.Displays[0].Layers {
		l.CloseFences()
	}
}

func TestCommitDropsOffScreenLayer(t *testing.T) {
	p, _ := newTestPipeline(t)

	var closed bool
	gone := &hwc.Layer{
		Buffer:       0x1,
		SourceCrop:   hwc.FRc(0, 0, 100, 100),
		DisplayFrame: hwc.Rc(2000, 0, 2100, 100),
		Acquire:      hwc.NewFence(7, func(int) error { closed = true; return nil }),
	}

	plan, err := p.Commit(frame(1, gone, onScreenLayer(0x2)))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	dc := plan.Content.Displays[0]
	if len(dc.Layers) != 1 || dc.Layers[0].Buffer != 0x2 {
		t.Fatalf("off-screen layer survived: %d layers", len(dc.Layers))
	}
	if !dc.GeometryChanged {
		t.Errorf("layer drop did not flag geometry change")
	}
	if !closed {
		t.Errorf("dropped layer's acquire fence not released")
	}

	plan.Retire[0].Close()
	for _, l := range dc.Layers {
		l.CloseFences()
	}
}

func TestCommitAppliesBlanking(t *testing.T) {
	p, _ := newTestPipeline(t, WithFiller(0xf00, hwc.FRc(0, 0, 16, 16)))

	b := p.Blanker()
	b.Clear(0, false)
	b.Blank(0, 0)

	plan, err := p.Commit(frame(1, onScreenLayer(0x1), onScreenLayer(0x2)))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	dc := plan.Content.Displays[0]
	if dc.Layers[0].Buffer != 0xf00 {
		t.Errorf("layer 0 not blanked: buffer %#x", uintptr(dc.Layers[0].Buffer))
	}
	if dc.Layers[1].Buffer != 0x2 {
		t.Errorf("layer 1 disturbed")
	}
	if dc.Flags&hwc.FlagBlanked == 0 {
		t.Errorf("FlagBlanked not set")
	}
	// The blanked substitute still gets a release fence like any layer.
	if !dc.Layers[0].Release.Valid() {
		t.Errorf("substitute has no release fence")
	}

	plan.Retire[0].Close()
	for _, l := range dc.Layers {
		l.CloseFences()
	}
}

func TestDump(t *testing.T) {
	p, _ := newTestPipeline(t)

	var sb strings.Builder
	p.Dump(&sb)
	out := sb.String()
	for _, want := range []string{"blank", "viewport", "hwc-display-0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump missing %q: %q", want, out)
		}
	}
}
