// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package vio

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/relabs-tech/vio_computer/internal/geometry"
	"github.com/relabs-tech/vio_computer/internal/nav"
)

// Resynchronizer recomputes the drift correction from a ground-truth fix.
type Resynchronizer struct {
	reg    *Registry
	logger *zap.SugaredLogger
}

// NewResynchronizer returns a Resynchronizer that reads the latest
// nav-to-body transform from reg and writes the drift correction back.
func NewResynchronizer(reg *Registry, logger *zap.SugaredLogger) *Resynchronizer {
	return &Resynchronizer{reg: reg, logger: logger}
}

// Sync computes the heading and position offsets between the camera
// estimate and ref, and replaces the drift correction with them. Each call
// starts from scratch; corrections do not accumulate.
func (r *Resynchronizer) Sync(ref nav.ResyncReference) error {
	navToBody, err := r.reg.Get(NavToBody)
	if err != nil {
		return ErrNoPriorFrame
	}

	_, rot := geometry.Decompose(navToBody)
	yaw := geometry.WrapAngle(geometry.Mat3ToEuler(rot)[2])

	headingOffset := ref.Heading - mgl64.RadToDeg(yaw)
	r.logger.Debugw("resync heading offset", "offset_deg", headingOffset)

	rotCorrection := geometry.YawRotation(mgl64.DegToRad(headingOffset))
	corrected, _ := geometry.Decompose(rotCorrection.Mat4().Mul4(navToBody))

	posOffset := mgl64.Vec3{ref.N, ref.E, ref.D}.Sub(corrected)
	r.logger.Debugw("resync position offset", "n", posOffset[0], "e", posOffset[1], "d", posOffset[2])

	r.reg.Set(DriftCorrection, geometry.Compose(posOffset, rotCorrection))
	return nil
}
