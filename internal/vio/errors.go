// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package vio

import "github.com/pkg/errors"

var (
	// ErrMissingTransform means a registry slot was read before anything
	// was stored in it, i.e. calibration never ran.
	ErrMissingTransform = errors.New("transform not set")

	// ErrInvalidMountConfig means the static mount calibration inputs are
	// not finite numbers.
	ErrInvalidMountConfig = errors.New("invalid camera mount configuration")

	// ErrNoPriorFrame means a resync arrived before any camera sample was
	// transformed.
	ErrNoPriorFrame = errors.New("no camera frame processed yet")
)
