// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package camera

import "github.com/pkg/errors"

// ErrNoSample is returned by a Source when no new sample is available yet.
var ErrNoSample = errors.New("no camera sample available")

// Sample is one pose reading from the tracking camera, expressed in the
// camera's own floating reference frame.
type Sample struct {
	Rotation          [4]float64 `json:"rotation"`           // quaternion w, x, y, z
	Translation       [3]float64 `json:"translation"`        // meters
	Velocity          [3]float64 `json:"velocity"`           // meters/second
	TrackerConfidence float64    `json:"tracker_confidence"` // 0..1
}

// Source is anything that can provide camera samples over time:
// the MQTT feed from the camera driver, or the mock trajectory.
type Source interface {
	Next() (Sample, error)
}
