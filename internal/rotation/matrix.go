// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package rotation turns rotation-vector sensor samples into homogeneous
// rotation matrices and measures the angle change between two of them.
package rotation

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

const (
	// MatrixSize is the number of elements of a 4x4 homogeneous matrix.
	MatrixSize = 16

	// VectorSize is the number of rotation-vector components we use.
	// Some devices report more (heading accuracy etc.); the rest is dropped.
	VectorSize = 4
)

// ErrMalformedVector is returned for vectors with fewer than 3 components
// or with non-finite values.
var ErrMalformedVector = errors.New("rotation: malformed rotation vector")

// Matrix is a 4x4 rotation matrix stored row-major.
type Matrix [MatrixSize]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Quaternion converts a rotation vector (x, y, z[, w]) into a unit quaternion.
// When w is missing it is derived from the vector part.
func Quaternion(v []float64) (quat.Number, error) {
	if len(v) < 3 {
		return quat.Number{}, ErrMalformedVector
	}
	n := len(v)
	if n > VectorSize {
		n = VectorSize
	}
	for _, c := range v[:n] {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return quat.Number{}, ErrMalformedVector
		}
	}

	x, y, z := v[0], v[1], v[2]
	var w float64
	if len(v) >= VectorSize {
		w = v[3]
	} else {
		w = 1 - x*x - y*y - z*z
		if w > 0 {
			w = math.Sqrt(w)
		} else {
			w = 0
		}
	}
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}, nil
}

// SetFromVector overwrites m with the rotation described by the rotation
// vector v. m is left untouched when v is malformed.
func (m *Matrix) SetFromVector(v []float64) error {
	q, err := Quaternion(v)
	if err != nil {
		return err
	}
	m.SetFromQuaternion(q)
	return nil
}

// SetFromQuaternion overwrites m with the rotation of q. q is assumed to be
// a unit quaternion.
func (m *Matrix) SetFromQuaternion(q quat.Number) {
	x, y, z, w := q.Imag, q.Jmag, q.Kmag, q.Real

	sqX := 2 * x * x
	sqY := 2 * y * y
	sqZ := 2 * z * z
	xy := 2 * x * y
	zw := 2 * z * w
	xz := 2 * x * z
	yw := 2 * y * w
	yz := 2 * y * z
	xw := 2 * x * w

	m[0] = 1 - sqY - sqZ
	m[1] = xy - zw
	m[2] = xz + yw
	m[3] = 0

	m[4] = xy + zw
	m[5] = 1 - sqX - sqZ
	m[6] = yz - xw
	m[7] = 0

	m[8] = xz - yw
	m[9] = yz + xw
	m[10] = 1 - sqX - sqY
	m[11] = 0

	m[12], m[13], m[14] = 0, 0, 0
	m[15] = 1
}

// rotation3 returns the upper-left 3x3 rotation block as a gonum matrix.
func (m *Matrix) rotation3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	})
}
