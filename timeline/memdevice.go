// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDeviceClosed is returned by operations on a closed MemDevice.
var ErrDeviceClosed = errors.New("timeline: sync device is closed")

// MemDevice is a pure in-process SyncDevice with sw_sync semantics.
// It backs tests and platforms without a kernel sync driver. Descriptor
// numbers are private to the device; closing an unknown descriptor is
// an error, which makes double-close bugs visible in tests.
//
// MemDevice is safe for concurrent use.
type MemDevice struct {
	mu      sync.Mutex
	closed  bool
	counter uint64
	nextFD  int
	fences  map[int]uint64 // descriptor -> bound counter value
}

// NewMemDevice creates an empty in-process sync device.
func NewMemDevice() *MemDevice {
	return &MemDevice{fences: make(map[int]uint64)}
}

// Counter returns the current counter value. Test helper.
func (d *MemDevice) Counter() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counter
}

// OpenFences returns the number of live fence descriptors. Test helper
// for leak checks.
func (d *MemDevice) OpenFences() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fences)
}

// CreateFence implements SyncDevice.
func (d *MemDevice) CreateFence(_ string, value uint64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return -1, ErrDeviceClosed
	}
	fd := d.nextFD
	d.nextFD++
	d.fences[fd] = value
	return fd, nil
}

// Merge implements SyncDevice. The merged fence signals when both
// inputs have, i.e. it binds to the larger of the two values.
func (d *MemDevice) Merge(_ string, fd1, fd2 int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return -1, ErrDeviceClosed
	}
	v1, ok1 := d.fences[fd1]
	v2, ok2 := d.fences[fd2]
	if !ok1 || !ok2 {
		return -1, fmt.Errorf("timeline: merge of unknown descriptor (%d, %d)", fd1, fd2)
	}
	fd := d.nextFD
	d.nextFD++
	d.fences[fd] = max(v1, v2)
	return fd, nil
}

// Dup implements SyncDevice.
func (d *MemDevice) Dup(fd int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return -1, ErrDeviceClosed
	}
	v, ok := d.fences[fd]
	if !ok {
		return -1, fmt.Errorf("timeline: dup of unknown descriptor %d", fd)
	}
	nfd := d.nextFD
	d.nextFD++
	d.fences[nfd] = v
	return nfd, nil
}

// Advance implements SyncDevice.
func (d *MemDevice) Advance(ticks uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}
	d.counter += ticks
	return nil
}

// Status implements SyncDevice.
func (d *MemDevice) Status(fd int) (FenceStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.fences[fd]
	if !ok {
		return StatusError, fmt.Errorf("timeline: status of unknown descriptor %d", fd)
	}
	if d.counter >= v {
		return StatusSignaled, nil
	}
	return StatusActive, nil
}

// CloseFence implements SyncDevice.
func (d *MemDevice) CloseFence(fd int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.fences[fd]; !ok {
		return fmt.Errorf("timeline: close of unknown descriptor %d", fd)
	}
	delete(d.fences, fd)
	return nil
}

// Close implements SyncDevice. Outstanding fences stay queryable so
// late closers do not error; the counter stops moving.
func (d *MemDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
