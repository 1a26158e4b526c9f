// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package timeline provides monotonic fence timelines for sequencing
// buffer reuse between the frame producer and display hardware.
//
// A Timeline wraps a kernel sync counter. Fences are issued against
// future counter values and become signaled once the counter advances to
// or past their bound value. The kernel object is reached through the
// SyncDevice interface: SWSync binds the Linux sw_sync driver, MemDevice
// is a pure in-process implementation for tests and platforms without
// sw_sync.
//
// Fence descriptors themselves are safe to pass and close from any
// goroutine; the kernel object behind them is independently
// reference-counted.
package timeline
