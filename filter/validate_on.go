// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build hwcvalidate

package filter

// validateGeometry enables the per-frame geometry-changed cross-check.
// Internal builds only; the check is O(displays) but aborts on
// violation, which production must never do.
const validateGeometry = true
