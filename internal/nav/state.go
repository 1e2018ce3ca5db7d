// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nav

// ResyncReference is an external ground-truth fix used to re-anchor the
// camera-derived pose.
type ResyncReference struct {
	N       float64 `json:"n"`       // cm
	E       float64 `json:"e"`       // cm
	D       float64 `json:"d"`       // cm
	Heading float64 `json:"heading"` // degrees
}

// Position is the NED position message, in centimeters.
type Position struct {
	N float64 `json:"n"`
	E float64 `json:"e"`
	D float64 `json:"d"`
}

// Attitude is the euler attitude message, in radians.
type Attitude struct {
	Psi   float64 `json:"psi"`   // roll
	Theta float64 `json:"theta"` // pitch
	Phi   float64 `json:"phi"`   // yaw
}

// Heading is the compass heading message, degrees in [0, 360).
type Heading struct {
	Degrees float64 `json:"degrees"`
}

// Velocity is the NED velocity message, in centimeters/second.
type Velocity struct {
	N float64 `json:"n"`
	E float64 `json:"e"`
	D float64 `json:"d"`
}

// Confidence carries the tracker confidence straight from the camera.
type Confidence struct {
	Tracker float64 `json:"tracker"`
}

// State is the full navigation picture for one tick, as assembled by
// subscribers of the individual message topics.
type State struct {
	Position   Position   `json:"position"`
	Attitude   Attitude   `json:"attitude"`
	Heading    Heading    `json:"heading"`
	Velocity   Velocity   `json:"velocity"`
	Confidence Confidence `json:"confidence"`
}
