// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rotation

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Axis indexes the components of an angle change.
const (
	Azimuth = 0 // around Z
	Pitch   = 1 // around X
	Roll    = 2 // around Y
)

// AngleChange writes into dst the angles in radians between prev and cur:
// azimuth, pitch and roll of the rotation prevᵀ·cur.
func AngleChange(dst *[3]float64, cur, prev *Matrix) {
	var rd mat.Dense
	rd.Mul(prev.rotation3().T(), cur.rotation3())

	dst[Azimuth] = math.Atan2(rd.At(0, 1), rd.At(1, 1))
	// rounding can push |rd21| a hair past 1
	dst[Pitch] = math.Asin(clamp(-rd.At(2, 1), -1, 1))
	dst[Roll] = math.Atan2(-rd.At(2, 0), rd.At(2, 2))
}

// ToFraction maps an angle in radians from (-π, π) to [-1, 1].
// It is a plain linear rescale with clamping; no wrap-around handling.
func ToFraction(rad float64) float64 {
	return clamp(rad/math.Pi, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
