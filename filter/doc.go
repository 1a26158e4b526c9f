// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package filter applies an ordered chain of transformation stages to a
// per-frame content snapshot.
//
// Stages are registered at numeric positions and partitioned by
// PositionDisplayManager into a client-space phase (layers still in
// display-server coordinates) and a physical-space phase (layers mapped
// to physical displays). Registration validates that a stage's declared
// space matches its position; a mismatch is a wiring bug surfaced as a
// structured error before the frame loop starts.
//
// Apply threads one evolving *hwcompose.Content reference through the
// in-range stages. A stage returns its input unchanged or a modified
// clone; the chain only tracks reference identity, it never copies.
package filter
