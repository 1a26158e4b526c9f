// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package pipeline assembles the compositing core — filter chain,
// blanker, per-display fence timelines, and the option registry — into
// one explicitly constructed object. Nothing here is a singleton; the
// caller owns the Pipeline's lifecycle and passes it where needed.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	hwc "github.com/intel/hwcompose"
	"github.com/intel/hwcompose/blank"
	"github.com/intel/hwcompose/config"
	"github.com/intel/hwcompose/display"
	"github.com/intel/hwcompose/filter"
	"github.com/intel/hwcompose/registry"
	"github.com/intel/hwcompose/timeline"
)

// Stage positions of the built-in stages. Externally registered stages
// should choose positions relative to these.
const (
	// PositionBlank runs layer blanking late in the client phase, after
	// client stages have settled the layer stacks.
	PositionBlank filter.Position = filter.PositionDisplayManager - 10

	// PositionViewport clips layers to physical display bounds first in
	// the physical phase.
	PositionViewport filter.Position = filter.PositionDisplayManager + 10

	// PositionLast is past every registered stage.
	PositionLast filter.Position = 1 << 20
)

// DeviceFactory opens one kernel sync timeline per display. Returning
// an error does not fail pipeline construction: the affected display
// runs with a disabled timeline and nil fences, favoring progress over
// synchronization.
type DeviceFactory func(displayIndex int) (timeline.SyncDevice, error)

// MemDevices is the default DeviceFactory, backing every display with
// an in-process sync device.
func MemDevices(int) (timeline.SyncDevice, error) {
	return timeline.NewMemDevice(), nil
}

// Pipeline owns the per-frame transformation machinery for a fixed set
// of displays.
type Pipeline struct {
	cfg     *config.Config
	chain   *filter.Chain
	blanker *blank.Blanker
	store   *registry.Store
	caps    []display.Capabilities
	lines   []*timeline.Timeline
}

// options collects construction-time configuration.
type options struct {
	cfg        *config.Config
	devices    DeviceFactory
	filler     hwc.BufferHandle
	fillerCrop hwc.FRect
}

// Option configures pipeline construction.
type Option func(*options)

// WithConfig supplies the assembly configuration. Defaults to
// config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithDevices supplies the sync device factory. Defaults to MemDevices.
func WithDevices(f DeviceFactory) Option {
	return func(o *options) { o.devices = f }
}

// WithFiller supplies the buffer substituted for blanked layers.
func WithFiller(buf hwc.BufferHandle, crop hwc.FRect) Option {
	return func(o *options) {
		o.filler = buf
		o.fillerCrop = crop
	}
}

// New builds a pipeline. Wiring errors (invalid configuration, a filter
// stage registered in the wrong space) are returned before any frame
// runs; a failed sync device only disables that display's timeline.
func New(opts ...Option) (*Pipeline, error) {
	o := options{devices: MemDevices, fillerCrop: hwc.FRc(0, 0, 1, 1)}
	for _, fn := range opts {
		fn(&o)
	}
	cfg := o.cfg
	if cfg == nil {
		cfg = config.Default()
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:   cfg,
		chain: filter.NewChain(),
		blanker: blank.New(o.filler, o.fillerCrop,
			blank.WithMaxDisplays(cfg.Blanking.MaxDisplays),
			blank.WithMaxSlots(cfg.Blanking.MaxSlots)),
	}

	for i := range cfg.Displays {
		d := &cfg.Displays[i]
		p.caps = append(p.caps, d.Capabilities())
		dev, err := o.devices(i)
		if err != nil {
			hwc.Logger().Error("sync device unavailable, timeline disabled",
				slog.Int("display", i),
				slog.Any("error", err))
			dev = nil
		}
		p.lines = append(p.lines,
			timeline.New(dev, fmt.Sprintf("hwc-display-%d", i), d.FirstFence))
	}

	if cfg.Registry != "" {
		store, err := registry.Open(cfg.Registry)
		if err != nil {
			return nil, err
		}
		p.store = store
	}

	if err := p.chain.Add(&blankStage{b: p.blanker}, PositionBlank); err != nil {
		return nil, err
	}
	if err := p.chain.Add(&viewportStage{p: p}, PositionViewport); err != nil {
		return nil, err
	}
	return p, nil
}

// Chain exposes the filter chain for dynamic stage registration.
func (p *Pipeline) Chain() *filter.Chain { return p.chain }

// Blanker exposes the layer blanker for policy-driven blanking.
func (p *Pipeline) Blanker() *blank.Blanker { return p.blanker }

// Store returns the option registry, or nil when persistence is off.
func (p *Pipeline) Store() *registry.Store { return p.store }

// Timeline returns the fence timeline of display i, or nil.
func (p *Pipeline) Timeline(i int) *timeline.Timeline {
	if i < 0 || i >= len(p.lines) {
		return nil
	}
	return p.lines[i]
}

// Capabilities returns the capability descriptor of display i.
func (p *Pipeline) Capabilities(i int) *display.Capabilities {
	if i < 0 || i >= len(p.caps) {
		return nil
	}
	return &p.caps[i]
}

// FramePlan is the committable result of one frame: the transformed
// content plus one retire fence per display. The retire fence signals
// when the display has retired the frame; every layer's release fence
// is bound to the same point.
type FramePlan struct {
	Content *hwc.Content

	// Retire holds one fence per display, nil for disabled or absent
	// displays. Ownership passes to the caller.
	Retire []*hwc.Fence

	// RetireValues are the timeline targets backing each retire fence.
	RetireValues []uint64
}

// ErrNoContent is returned by Commit when given nothing to commit.
var ErrNoContent = errors.New("pipeline: commit of nil content")

// Commit runs one frame: the client-space filter phase (including
// blanking), then the physical-space phase, then fence issue. Call once
// per frame from the producer context.
func (p *Pipeline) Commit(content *hwc.Content) (*FramePlan, error) {
	if content == nil {
		return nil, ErrNoContent
	}
	out := p.chain.Apply(content, 0, filter.PositionDisplayManager-1)
	out = p.chain.Apply(out, filter.PositionDisplayManager, PositionLast)

	plan := &FramePlan{
		Content:      out,
		Retire:       make([]*hwc.Fence, len(p.lines)),
		RetireValues: make([]uint64, len(p.lines)),
	}
	for i, tl := range p.lines {
		dc := out.Display(i)
		if dc == nil || !dc.Enabled {
			continue
		}
		retire, value := tl.Create()
		plan.Retire[i] = retire
		plan.RetireValues[i] = value
		for _, l := range dc.Layers {
			if l.Release.Valid() {
				// A previous stage already attached one; keep it.
				continue
			}
			rel, _ := tl.Repeat()
			l.Release = rel
		}
	}
	return plan, nil
}

// Retire signals that display i has retired one frame, releasing its
// retire fence and the release fences bound with it. Safe to call from
// a hardware-completion goroutine.
func (p *Pipeline) Retire(i int) {
	if tl := p.Timeline(i); tl != nil {
		tl.Advance(1)
	}
}

// Dump writes a diagnostic summary of the chain and timelines.
func (p *Pipeline) Dump(w io.Writer) {
	p.chain.Dump(w)
	for _, tl := range p.lines {
		tl.Dump(w)
	}
}

// Close releases the registry and timelines. Fences already handed out
// stay valid until closed by their owners.
func (p *Pipeline) Close() error {
	var first error
	if p.store != nil {
		first = p.store.Close()
	}
	for _, tl := range p.lines {
		if err := tl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
