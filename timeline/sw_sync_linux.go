// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package timeline

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Kernel ioctl numbers for the sw_sync driver and the sync_file API.
const (
	swSyncIocCreateFence = 0xc0285700 // _IOWR('W', 0, struct sw_sync_create_fence_data)
	swSyncIocInc         = 0x40045701 // _IOW('W', 1, __u32)
	syncIocMerge         = 0xc0303e03 // _IOWR('>', 3, struct sync_merge_data)
	syncIocFileInfo      = 0xc0383e04 // _IOWR('>', 4, struct sync_file_info)
)

// Kernel ABI structs. Layout must match include/uapi/linux/sync_file.h
// and the sw_sync driver exactly.
type (
	swSyncCreateFenceData struct {
		value uint32
		name  [32]byte
		fence int32
	}

	syncMergeData struct {
		name  [32]byte
		fd2   int32
		fence int32
		flags uint32
		pad   uint32
	}

	syncFileInfo struct {
		name          [32]byte
		status        int32
		flags         uint32
		numFences     uint32
		pad           uint32
		syncFenceInfo uint64
	}
)

// Compile-time struct size assertions against the kernel ABI.
var (
	_ [0]struct{} = [unsafe.Sizeof(swSyncCreateFenceData{}) - 40]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(syncMergeData{}) - 48]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(syncFileInfo{}) - 56]struct{}{}
)

// swSyncPaths lists where the sw_sync timeline device may live,
// preferred path first.
var swSyncPaths = []string{"/dev/sw_sync", "/sys/kernel/debug/sync/sw_sync"}

// SWSync is the Linux sw_sync binding of SyncDevice. Each open device
// file is one independent timeline counter; the kernel counter is
// 32-bit and values wrap accordingly.
type SWSync struct {
	f *os.File
}

// OpenSWSync opens a fresh kernel timeline.
func OpenSWSync() (*SWSync, error) {
	var firstErr error
	for _, p := range swSyncPaths {
		f, err := os.OpenFile(p, os.O_RDWR, 0)
		if err == nil {
			return &SWSync{f: f}, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("timeline: open sw_sync: %w", firstErr)
}

// ioctl issues one ioctl against fd.
func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// CreateFence implements SyncDevice.
func (d *SWSync) CreateFence(name string, value uint64) (int, error) {
	data := swSyncCreateFenceData{value: uint32(value), fence: -1}
	copy(data.name[:len(data.name)-1], name)
	if err := ioctl(d.f.Fd(), swSyncIocCreateFence, unsafe.Pointer(&data)); err != nil {
		return -1, fmt.Errorf("timeline: SW_SYNC_IOC_CREATE_FENCE: %w", err)
	}
	return int(data.fence), nil
}

// Merge implements SyncDevice. The ioctl is issued against the first
// fence descriptor, per the sync_file API.
func (d *SWSync) Merge(name string, fd1, fd2 int) (int, error) {
	data := syncMergeData{fd2: int32(fd2), fence: -1}
	copy(data.name[:len(data.name)-1], name)
	if err := ioctl(uintptr(fd1), syncIocMerge, unsafe.Pointer(&data)); err != nil {
		return -1, fmt.Errorf("timeline: SYNC_IOC_MERGE: %w", err)
	}
	return int(data.fence), nil
}

// Dup implements SyncDevice. A plain dup(2) suffices: the descriptors
// share the kernel sync_file, which is what "same signal" means.
func (d *SWSync) Dup(fd int) (int, error) {
	nfd, err := unix.Dup(fd)
	if err != nil {
		return -1, fmt.Errorf("timeline: dup: %w", err)
	}
	return nfd, nil
}

// Advance implements SyncDevice.
func (d *SWSync) Advance(ticks uint64) error {
	v := uint32(ticks)
	if err := ioctl(d.f.Fd(), swSyncIocInc, unsafe.Pointer(&v)); err != nil {
		return fmt.Errorf("timeline: SW_SYNC_IOC_INC: %w", err)
	}
	return nil
}

// Status implements SyncDevice.
func (d *SWSync) Status(fd int) (FenceStatus, error) {
	var info syncFileInfo
	if err := ioctl(uintptr(fd), syncIocFileInfo, unsafe.Pointer(&info)); err != nil {
		return StatusError, fmt.Errorf("timeline: SYNC_IOC_FILE_INFO: %w", err)
	}
	switch {
	case info.status > 0:
		return StatusSignaled, nil
	case info.status == 0:
		return StatusActive, nil
	default:
		return StatusError, nil
	}
}

// CloseFence implements SyncDevice.
func (d *SWSync) CloseFence(fd int) error {
	return unix.Close(fd)
}

// Close implements SyncDevice, destroying the kernel timeline. Fences
// not yet signaled when the timeline is destroyed signal with an error
// status, so waiters do not hang.
func (d *SWSync) Close() error {
	return d.f.Close()
}
