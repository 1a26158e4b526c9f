// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	hwc "github.com/intel/hwcompose"
)

// Timeline issues fences against a monotonically increasing counter.
//
// Two cursors are tracked: current, the value the counter has already
// reached, and next, the value the next created fence will bind to.
// The invariant next >= current holds at all times, so a freshly issued
// fence is never stale.
//
// A Timeline with a nil or failed device is disabled: every operation
// degrades to returning a nil fence, which consumers treat as already
// signaled. This favors progress over strict synchronization when the
// driver is broken.
//
// Counter mutation is guarded internally so a hardware-completion
// goroutine may Advance while the producer creates fences.
type Timeline struct {
	mu      sync.Mutex
	dev     SyncDevice
	name    string
	current uint64
	next    uint64
}

// New binds a timeline to a sync device under a human-readable name.
// The first fence created will bind to counter value firstFutureOffset.
// A nil dev (counter creation failed upstream) yields a disabled
// timeline; the failure is logged, not returned, and all operations
// become no-ops yielding nil fences.
func New(dev SyncDevice, name string, firstFutureOffset uint64) *Timeline {
	t := &Timeline{dev: dev, name: name, next: firstFutureOffset}
	if dev == nil {
		hwc.Logger().Error("timeline disabled: no sync device",
			slog.String("timeline", name))
		return t
	}
	hwc.Logger().Info("timeline created",
		slog.String("timeline", name),
		slog.Uint64("firstFuture", firstFutureOffset))
	return t
}

// Name returns the timeline's human-readable name.
func (t *Timeline) Name() string { return t.name }

// Current returns the counter value already reached.
func (t *Timeline) Current() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// NextFuture returns the value the next created fence will bind to.
func (t *Timeline) NextFuture() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next
}

// Create allocates a fence bound to the next future counter value and
// advances the future cursor. The returned value is the counter target
// a later AdvanceTo must reach to release this fence. Returns a nil
// fence (with the value it would have bound) on a disabled timeline or
// device failure.
func (t *Timeline) Create() (*hwc.Fence, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	value := t.next
	t.next++
	return t.issue(value), value
}

// Repeat allocates a fence bound to the last already-issued counter
// value without advancing the cursor. Use when several consumers must
// wait on the same scheduled signal point. On a timeline that has not
// issued any fence yet, Repeat binds to the value Create would use.
func (t *Timeline) Repeat() (*hwc.Fence, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	value := t.next
	if value > t.current {
		// A fence has been issued (or the initial offset leaves room);
		// repeat the last scheduled point.
		value--
	}
	return t.issue(value), value
}

// issue creates one fence at value. Caller holds t.mu.
func (t *Timeline) issue(value uint64) *hwc.Fence {
	if t.dev == nil {
		return nil
	}
	fd, err := t.dev.CreateFence(fmt.Sprintf("%s:%d", t.name, value), value)
	if err != nil {
		hwc.Logger().Error("fence create failed",
			slog.String("timeline", t.name),
			slog.Uint64("value", value),
			slog.Any("error", err))
		return nil
	}
	return hwc.NewFence(fd, t.dev.CloseFence)
}

// Merge combines fences a and b into one that signals only when both
// have signaled.
//
// Degenerate inputs transfer rather than merge: if exactly one input is
// invalid the other is returned as-is, and if both are invalid the
// result is nil; ok is true in all three cases. On a successful kernel
// merge both inputs are closed and the new fence returned. If the
// kernel merge fails, ok is false and both inputs are left untouched
// and still owned by the caller.
func (t *Timeline) Merge(a, b *hwc.Fence) (merged *hwc.Fence, ok bool) {
	if !a.Valid() && !b.Valid() {
		return nil, true
	}
	if !a.Valid() {
		return b, true
	}
	if !b.Valid() {
		return a, true
	}
	if t.dev == nil {
		return nil, false
	}
	fd, err := t.dev.Merge(t.name+":merge", a.FD(), b.FD())
	if err != nil {
		hwc.Logger().Error("fence merge failed",
			slog.String("timeline", t.name),
			slog.Any("error", err))
		return nil, false
	}
	a.Close()
	b.Close()
	return hwc.NewFence(fd, t.dev.CloseFence), true
}

// Dup returns an independent fence referencing the same signal point.
// Returns nil for an invalid input or on device failure (logged).
func (t *Timeline) Dup(f *hwc.Fence) *hwc.Fence {
	if !f.Valid() || t.dev == nil {
		return nil
	}
	fd, err := t.dev.Dup(f.FD())
	if err != nil {
		hwc.Logger().Error("fence dup failed",
			slog.String("timeline", t.name),
			slog.Any("error", err))
		return nil
	}
	return hwc.NewFence(fd, t.dev.CloseFence)
}

// Advance moves the counter forward by ticks, releasing every fence
// bound at or below the new value. A device failure here means fences
// will never signal; it is logged at error severity since it indicates
// driver-level corruption.
func (t *Timeline) Advance(ticks uint64) {
	if ticks == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.advanceLocked(ticks)
}

// AdvanceTo advances the counter to the absolute value v. A target
// below the current counter indicates a caller-ordering bug upstream;
// it is logged and tolerated without moving the counter.
func (t *Timeline) AdvanceTo(v uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v < t.current {
		hwc.Logger().Error("stale timeline target",
			slog.String("timeline", t.name),
			slog.Uint64("target", v),
			slog.Uint64("current", t.current))
		return
	}
	t.advanceLocked(v - t.current)
}

// advanceLocked performs the device advance and cursor bookkeeping.
// Caller holds t.mu.
func (t *Timeline) advanceLocked(ticks uint64) {
	if ticks == 0 {
		return
	}
	if t.dev != nil {
		if err := t.dev.Advance(ticks); err != nil {
			hwc.Logger().Error("timeline advance failed, driver state suspect",
				slog.String("timeline", t.name),
				slog.Uint64("ticks", ticks),
				slog.Any("error", err))
			return
		}
	}
	t.current += ticks
	if t.next <= t.current {
		t.next = t.current + 1
	}
}

// Status queries a fence's state through the device. Debug dump only.
func (t *Timeline) Status(f *hwc.Fence) FenceStatus {
	if !f.Valid() || t.dev == nil {
		return StatusSignaled
	}
	s, err := t.dev.Status(f.FD())
	if err != nil {
		return StatusError
	}
	return s
}

// Dump writes a one-line diagnostic summary of the timeline state.
func (t *Timeline) Dump(w io.Writer) {
	t.mu.Lock()
	current, next := t.current, t.next
	disabled := t.dev == nil
	t.mu.Unlock()
	fmt.Fprintf(w, "timeline %q: current=%d next=%d disabled=%v\n",
		t.name, current, next, disabled)
}

// Close releases the underlying sync device. Fences already issued
// remain valid until individually closed.
func (t *Timeline) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dev == nil {
		return nil
	}
	err := t.dev.Close()
	t.dev = nil
	return err
}
