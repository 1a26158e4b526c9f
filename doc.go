// Package hwcompose is the compositing core of a display hardware
// abstraction layer.
//
// # Overview
//
// hwcompose sits between a window-composition client producing per-frame
// layer lists and the kernel display planes that present them. Each frame
// the core transforms an incoming per-display layer list into a
// hardware-committable plan while tracking buffer lifetime through sync
// fences.
//
// # Architecture
//
// The library is organized into:
//   - Root package: shared value types (Rect, FRect, Transform, Layer,
//     Content), the clip/transform math, and the sync Fence handle.
//   - timeline: monotonic fence timelines over a kernel sync device.
//   - filter: the ordered frame filter chain.
//   - blank: per-display layer blanking (filler substitution).
//   - display: display kinds and plane capability descriptors.
//   - registry: the persisted option store.
//   - config, pipeline: assembly of the above into a running frame loop.
//
// # Quick Start
//
//	import "github.com/intel/hwcompose/pipeline"
//
//	p, err := pipeline.New(pipeline.WithConfig(cfg))
//	if err != nil {
//		// ...
//	}
//	plan, err := p.Commit(content)
//
// # Logging
//
// hwcompose produces no log output by default. Call [SetLogger] to enable
// structured logging for the whole module.
package hwcompose
