// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package vio

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// benchMount is the mount used by the reference vectors below.
var benchMount = MountConfig{
	Position:     mgl64.Vec3{15, 10, 10},
	Attitude:     mgl64.Vec3{0, -math.Pi / 2, math.Pi / 2},
	GroundHeight: 10,
}

func assertMat4InDelta(t *testing.T, want, got mgl64.Mat4, delta float64) {
	t.Helper()
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			assert.InDeltaf(t, want.At(row, col), got.At(row, col), delta, "element (%d,%d)", row, col)
		}
	}
}

func TestCalibrate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, Calibrate(reg, benchMount))

	tests := []struct {
		slot Slot
		want mgl64.Mat4
	}{
		{MountBodyToCamera, mgl64.Mat4FromRows(
			mgl64.Vec4{0, 0, -1, 15},
			mgl64.Vec4{1, 0, 0, 10},
			mgl64.Vec4{0, -1, 0, 10},
			mgl64.Vec4{0, 0, 0, 1},
		)},
		{MountCameraToBody, mgl64.Mat4FromRows(
			mgl64.Vec4{0, 1, 0, -10},
			mgl64.Vec4{0, 0, -1, 10},
			mgl64.Vec4{-1, 0, 0, 15},
			mgl64.Vec4{0, 0, 0, 1},
		)},
		{NavToCameraRef, mgl64.Mat4FromRows(
			mgl64.Vec4{0, 0, -1, 15},
			mgl64.Vec4{1, 0, 0, 10},
			mgl64.Vec4{0, -1, 0, -10},
			mgl64.Vec4{0, 0, 0, 1},
		)},
		{DriftCorrection, mgl64.Ident4()},
	}
	for _, tt := range tests {
		t.Run(tt.slot.String(), func(t *testing.T) {
			got, err := reg.Get(tt.slot)
			require.NoError(t, err)
			assertMat4InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalibrateMountRoundTrip(t *testing.T) {
	mounts := []MountConfig{
		benchMount,
		{Position: mgl64.Vec3{17, 0, 8.5}, Attitude: mgl64.Vec3{0, -math.Pi / 2, math.Pi / 2}, GroundHeight: 10},
		{Position: mgl64.Vec3{-3, 4.5, -2}, Attitude: mgl64.Vec3{0.3, 0.2, -2.9}, GroundHeight: 25},
		{},
	}
	for _, m := range mounts {
		reg := NewRegistry()
		require.NoError(t, Calibrate(reg, m))
		b2c, err := reg.Get(MountBodyToCamera)
		require.NoError(t, err)
		c2b, err := reg.Get(MountCameraToBody)
		require.NoError(t, err)
		assertMat4InDelta(t, mgl64.Ident4(), b2c.Mul4(c2b), 1e-9)
	}
}

func TestCalibrateRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name  string
		mount MountConfig
	}{
		{"nan roll", MountConfig{Attitude: mgl64.Vec3{math.NaN(), 0, 0}}},
		{"inf position", MountConfig{Position: mgl64.Vec3{0, math.Inf(1), 0}}},
		{"nan ground", MountConfig{GroundHeight: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := Calibrate(reg, tt.mount)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidMountConfig))

			_, err = reg.Get(MountBodyToCamera)
			assert.True(t, errors.Is(err, ErrMissingTransform))
		})
	}
}
