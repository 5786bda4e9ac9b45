package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Pose is a device orientation as Euler angles in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time: the IMU, the mock
// source, a replay of recorded poses.
type Source interface {
	Next() (Pose, error)
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is 0; without a magnetometer there is no heading.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
		Yaw:   0,
	}
}

// Quaternion returns the rotation of p applied as yaw (Z), then pitch (Y),
// then roll (X).
func (p Pose) Quaternion() quat.Number {
	// half angles in radians
	sr, cr := math.Sincos(p.Roll * math.Pi / 360.0)
	sp, cp := math.Sincos(p.Pitch * math.Pi / 360.0)
	sy, cy := math.Sincos(p.Yaw * math.Pi / 360.0)

	qx := quat.Number{Real: cr, Imag: sr}
	qy := quat.Number{Real: cp, Jmag: sp}
	qz := quat.Number{Real: cy, Kmag: sy}
	return quat.Mul(qz, quat.Mul(qy, qx))
}

// RotationVector returns p as a rotation-vector sample (x, y, z, w).
func (p Pose) RotationVector() []float64 {
	q := p.Quaternion()
	return []float64{q.Imag, q.Jmag, q.Kmag, q.Real}
}
