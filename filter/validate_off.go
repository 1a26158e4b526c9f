// Copyright 2026 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build !hwcvalidate

package filter

// validateGeometry disables the geometry-changed cross-check in
// production builds.
const validateGeometry = false
