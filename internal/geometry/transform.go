// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package geometry holds the homogeneous-transform helpers shared by the
// VIO engine. All Euler angles in this repository go through EulerToMat3 and
// Mat3ToEuler so that every caller agrees on one convention: roll about X,
// then pitch about Y, then yaw about Z, applied intrinsically
// (R = Rx(roll) * Ry(pitch) * Rz(yaw)).
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// gimbalEpsilon is the threshold below which the pitch is treated as ±90°.
const gimbalEpsilon = 4 * 2.220446049250313e-16

// Compose builds a rigid homogeneous transform from a translation and a
// rotation matrix (unit scale).
func Compose(t mgl64.Vec3, r mgl64.Mat3) mgl64.Mat4 {
	h := r.Mat4()
	h.Set(0, 3, t[0])
	h.Set(1, 3, t[1])
	h.Set(2, 3, t[2])
	return h
}

// Inverse returns the inverse of a rigid transform: (Rᵀ, -Rᵀt).
func Inverse(h mgl64.Mat4) mgl64.Mat4 {
	rt := h.Mat3().Transpose()
	t := h.Col(3).Vec3()
	return Compose(rt.Mul3x1(t).Mul(-1), rt)
}

// Decompose splits a homogeneous transform into its translation and its
// rotation. The rotation is recovered by Gram-Schmidt orthonormalization of
// the linear block, which strips any scale or shear.
func Decompose(h mgl64.Mat4) (mgl64.Vec3, mgl64.Mat3) {
	lin := h.Mat3()

	var basis [3]*mat.VecDense
	for i := range basis {
		c := lin.Col(i)
		v := mat.NewVecDense(3, []float64{c[0], c[1], c[2]})
		for j := 0; j < i; j++ {
			v.AddScaledVec(v, -mat.Dot(v, basis[j]), basis[j])
		}
		if n := mat.Norm(v, 2); n > 0 {
			v.ScaleVec(1/n, v)
		}
		basis[i] = v
	}

	r := mgl64.Mat3FromCols(vec3(basis[0]), vec3(basis[1]), vec3(basis[2]))
	if r.Det() < 0 {
		// reflection: fold it into the last axis so the result stays a rotation
		r = mgl64.Mat3FromCols(r.Col(0), r.Col(1), r.Col(2).Mul(-1))
	}
	return h.Col(3).Vec3(), r
}

func vec3(v *mat.VecDense) mgl64.Vec3 {
	return mgl64.Vec3{v.AtVec(0), v.AtVec(1), v.AtVec(2)}
}

// EulerToMat3 builds a rotation from roll, pitch and yaw (radians).
func EulerToMat3(roll, pitch, yaw float64) mgl64.Mat3 {
	return mgl64.Rotate3DX(roll).Mul3(mgl64.Rotate3DY(pitch)).Mul3(mgl64.Rotate3DZ(yaw))
}

// Mat3ToEuler is the inverse of EulerToMat3. At gimbal lock the roll is
// pinned to zero and the whole rotation about the vertical goes into yaw,
// so heading keeps following the vehicle.
func Mat3ToEuler(r mgl64.Mat3) mgl64.Vec3 {
	cy := math.Hypot(r.At(0, 0), r.At(0, 1))
	if cy > gimbalEpsilon {
		return mgl64.Vec3{
			math.Atan2(-r.At(1, 2), r.At(2, 2)),
			math.Atan2(r.At(0, 2), cy),
			math.Atan2(-r.At(0, 1), r.At(0, 0)),
		}
	}
	return mgl64.Vec3{
		0,
		math.Atan2(r.At(0, 2), cy),
		math.Atan2(r.At(1, 0), r.At(1, 1)),
	}
}

// YawRotation returns a pure rotation about the navigation-frame vertical.
func YawRotation(angle float64) mgl64.Mat3 {
	return mgl64.Rotate3DZ(angle)
}

// QuatToMat3 converts a (w, x, y, z) quaternion to a rotation matrix.
// Non-unit quaternions are normalized first. A quaternion with zero norm
// maps to the identity; tracking cameras emit all zeros before their first
// valid pose and downstream code expects a level, zero-yaw attitude for it.
func QuatToMat3(w, x, y, z float64) mgl64.Mat3 {
	q := quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
	n := quat.Abs(q)
	if n*n < 2.220446049250313e-16 {
		return mgl64.Ident3()
	}
	q = quat.Scale(1/n, q)

	qw, qx, qy, qz := q.Real, q.Imag, q.Jmag, q.Kmag
	return mgl64.Mat3{
		// column-major
		1 - 2*(qy*qy+qz*qz), 2 * (qx*qy + qw*qz), 2 * (qx*qz - qw*qy),
		2 * (qx*qy - qw*qz), 1 - 2*(qx*qx+qz*qz), 2 * (qy*qz + qw*qx),
		2 * (qx*qz + qw*qy), 2 * (qy*qz - qw*qx), 1 - 2*(qx*qx+qy*qy),
	}
}

// WrapAngle maps an angle in [-π, π] into [0, 2π).
func WrapAngle(rad float64) float64 {
	if rad < 0 {
		rad += 2 * math.Pi
		// a tiny negative yaw rounds up to exactly 2π
		if rad >= 2*math.Pi {
			rad = 0
		}
	}
	return rad
}

// HeadingDegrees converts a yaw angle into a compass heading in [0, 360).
func HeadingDegrees(yaw float64) float64 {
	return mgl64.RadToDeg(WrapAngle(yaw))
}
