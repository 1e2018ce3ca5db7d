// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package vio

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/relabs-tech/vio_computer/internal/geometry"
)

// MountConfig describes how the tracking camera is bolted to the vehicle.
type MountConfig struct {
	// Position of the camera from the flight controller, centimeters
	// forward, right, down.
	Position mgl64.Vec3
	// Attitude of the camera as roll, pitch, yaw in radians.
	Attitude mgl64.Vec3
	// GroundHeight is how far the camera sits above the ground at rest, cm.
	GroundHeight float64
}

// Validate reports ErrInvalidMountConfig for any non-finite field.
func (c MountConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"position.forward", c.Position[0]},
		{"position.right", c.Position[1]},
		{"position.down", c.Position[2]},
		{"attitude.roll", c.Attitude[0]},
		{"attitude.pitch", c.Attitude[1]},
		{"attitude.yaw", c.Attitude[2]},
		{"ground_height", c.GroundHeight},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.Wrapf(ErrInvalidMountConfig, "%s is %v", f.name, f.value)
		}
	}
	return nil
}

// Calibrate writes the static mount transforms into reg and resets the
// drift correction to identity. It runs once, before the first sample.
func Calibrate(reg *Registry, cfg MountConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	rot := geometry.EulerToMat3(cfg.Attitude[0], cfg.Attitude[1], cfg.Attitude[2])

	bodyToCamera := geometry.Compose(cfg.Position, rot)
	reg.Set(MountBodyToCamera, bodyToCamera)
	reg.Set(MountCameraToBody, geometry.Inverse(bodyToCamera))

	// at rest the camera reference origin sits at ground height below the body origin
	refPos := cfg.Position
	refPos[2] = -cfg.GroundHeight
	reg.Set(NavToCameraRef, geometry.Compose(refPos, rot))

	reg.Set(DriftCorrection, mgl64.Ident4())
	return nil
}
