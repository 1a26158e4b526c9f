// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package timeline

// FenceStatus mirrors the kernel sync_file status values.
type FenceStatus int

// Fence status constants.
const (
	// StatusError indicates the fence completed with an error.
	StatusError FenceStatus = -1

	// StatusActive indicates the fence has not signaled yet.
	StatusActive FenceStatus = 0

	// StatusSignaled indicates the fence has signaled.
	StatusSignaled FenceStatus = 1
)

// String returns a human-readable name for the status.
func (s FenceStatus) String() string {
	switch s {
	case StatusError:
		return "Error"
	case StatusActive:
		return "Active"
	case StatusSignaled:
		return "Signaled"
	default:
		return "Unknown"
	}
}

// SyncDevice is the kernel synchronization contract a Timeline drives.
// Implementations expose one counter per device instance; fence
// descriptors issued from it follow POSIX descriptor semantics.
type SyncDevice interface {
	// CreateFence allocates a fence that signals once the device
	// counter reaches value. Returns the new descriptor.
	CreateFence(name string, value uint64) (int, error)

	// Merge combines two fence descriptors into a new one that signals
	// only when both inputs have signaled. The inputs remain open.
	Merge(name string, fd1, fd2 int) (int, error)

	// Dup returns an independent descriptor referencing the same
	// underlying fence.
	Dup(fd int) (int, error)

	// Advance moves the device counter forward by ticks, signaling
	// every fence bound at or below the new value.
	Advance(ticks uint64) error

	// Status queries a fence descriptor's state. Debug dump only; the
	// frame path never polls.
	Status(fd int) (FenceStatus, error)

	// CloseFence releases one fence descriptor.
	CloseFence(fd int) error

	// Close releases the device (the timeline counter itself).
	Close() error
}
