// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package camera

import (
	"math"
	"time"
)

const (
	mockRadius = 2.0  // meters
	mockPeriod = 30.0 // seconds per lap
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock camera that drives a slow horizontal circle,
// facing along the direction of travel, with full tracking confidence.
func NewMockSource() Source {
	return newMockSource(time.Now)
}

func newMockSource(now func() time.Time) *mockSource {
	return &mockSource{start: now(), now: now}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	omega := 2 * math.Pi / mockPeriod
	theta := omega * elapsed
	yaw := theta + math.Pi/2

	return Sample{
		Rotation:          [4]float64{math.Cos(yaw / 2), 0, 0, math.Sin(yaw / 2)},
		Translation:       [3]float64{mockRadius * math.Cos(theta), mockRadius * math.Sin(theta), 0},
		Velocity:          [3]float64{-mockRadius * omega * math.Sin(theta), mockRadius * omega * math.Cos(theta), 0},
		TrackerConfidence: 1,
	}, nil
}
