// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package filter

import "fmt"

// Space identifies the layer coordinate space a stage operates in.
type Space uint8

// Space constants.
const (
	// SpaceClient is display-server layer space, before the display
	// manager maps content onto physical displays.
	SpaceClient Space = iota

	// SpacePhysical is physical-display layer space.
	SpacePhysical
)

// String returns a human-readable name for the space.
func (s Space) String() string {
	switch s {
	case SpaceClient:
		return "Client"
	case SpacePhysical:
		return "Physical"
	default:
		return "Unknown"
	}
}

// Position orders stages within the chain. Lower positions run first.
type Position int

// PositionDisplayManager partitions the chain: stages registered below
// it run in client space, stages at or above it run in physical-display
// space.
const PositionDisplayManager Position = 1000

// space returns the coordinate space implied by a position.
func (p Position) space() Space {
	if p < PositionDisplayManager {
		return SpaceClient
	}
	return SpacePhysical
}

// WiringError reports a stage registered at a position whose implied
// coordinate space contradicts the space the stage declares. This is a
// deployment bug, not a runtime condition; the composition root should
// fail fast on it before the frame loop starts.
type WiringError struct {
	Stage    string
	Position Position
	Declared Space
}

func (e *WiringError) Error() string {
	return fmt.Sprintf("filter: stage %q at position %d (%s space) declares %s space",
		e.Stage, e.Position, e.Position.space(), e.Declared)
}
