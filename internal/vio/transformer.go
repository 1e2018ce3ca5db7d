// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package vio

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/relabs-tech/vio_computer/internal/camera"
	"github.com/relabs-tech/vio_computer/internal/geometry"
)

// Estimate is the navigation-frame result for one camera sample.
type Estimate struct {
	Position mgl64.Vec3 // n, e, d in cm
	Velocity mgl64.Vec3 // Vn, Ve, Vd in cm/s
	Euler    mgl64.Vec3 // roll, pitch, yaw in radians
}

// Heading returns the yaw as a compass heading in [0, 360) degrees.
func (e Estimate) Heading() float64 {
	return geometry.HeadingDegrees(e.Euler[2])
}

// Transformer converts camera samples into the navigation frame using the
// transforms held in a Registry.
type Transformer struct {
	reg *Registry
}

// NewTransformer returns a Transformer reading and writing reg.
func NewTransformer(reg *Registry) *Transformer {
	return &Transformer{reg: reg}
}

// Transform runs the frame chain for one sample:
//
//	nav -> camera ref -> camera body -> vehicle body
//
// then applies the current drift correction. Non-finite inputs are not
// rejected here; they show up in the returned estimate.
func (t *Transformer) Transform(s camera.Sample) (Estimate, error) {
	tm, err := t.reg.Load(NavToCameraRef, MountCameraToBody, DriftCorrection)
	if err != nil {
		return Estimate{}, err
	}
	navToRef, camToBody, drift := tm[0], tm[1], tm[2]

	position := mgl64.Vec3{s.Translation[0], s.Translation[1], s.Translation[2]}.Mul(100)
	// velocity is a free vector, so w = 0 and translations drop out
	velocity := mgl64.Vec3{s.Velocity[0], s.Velocity[1], s.Velocity[2]}.Mul(100).Vec4(0)

	refToCamBody := geometry.Compose(position,
		geometry.QuatToMat3(s.Rotation[0], s.Rotation[1], s.Rotation[2], s.Rotation[3]))
	t.reg.Set(CameraRefToCameraBody, refToCamBody)

	navToBody := navToRef.Mul4(refToCamBody.Mul4(camToBody))
	t.reg.Set(NavToBody, navToBody)

	synced := drift.Mul4(navToBody)
	t.reg.Set(SyncedNavToBody, synced)

	pos, rot := geometry.Decompose(synced)

	hVel := drift.Mul4(navToRef)

	return Estimate{
		Position: pos,
		Velocity: hVel.Mul4x1(velocity).Vec3(),
		Euler:    geometry.Mat3ToEuler(rot),
	}, nil
}
