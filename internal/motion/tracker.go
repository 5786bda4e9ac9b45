// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"github.com/relabs-tech/parallax/internal/rotation"
)

// Fractions is the angle change from the reference orientation, each axis
// mapped from radians to [-1, 1].
type Fractions struct {
	Azimuth float64
	Pitch   float64
	Roll    float64
}

// Tracker keeps the reference orientation of the current activation cycle
// and measures every later sample against it. Buffers are reused between
// samples; callers must not feed one Tracker concurrently.
type Tracker struct {
	initialized bool

	truncated   [rotation.VectorSize]float64
	initial     rotation.Matrix
	current     rotation.Matrix
	angleChange [3]float64
}

// Update consumes one rotation vector. The first valid sample after a reset
// becomes the reference and yields ok == false, as do malformed samples.
func (t *Tracker) Update(values []float64) (f Fractions, ok bool) {
	v := values
	if len(v) > rotation.VectorSize {
		copy(t.truncated[:], v)
		v = t.truncated[:]
	}

	if !t.initialized {
		if err := t.initial.SetFromVector(v); err != nil {
			return Fractions{}, false
		}
		t.initialized = true
		return Fractions{}, false
	}

	if err := t.current.SetFromVector(v); err != nil {
		return Fractions{}, false
	}
	rotation.AngleChange(&t.angleChange, &t.current, &t.initial)
	for i, a := range t.angleChange {
		t.angleChange[i] = rotation.ToFraction(a)
	}

	return Fractions{
		Azimuth: t.angleChange[rotation.Azimuth],
		Pitch:   t.angleChange[rotation.Pitch],
		Roll:    t.angleChange[rotation.Roll],
	}, true
}

// Reset makes the next sample the new reference.
func (t *Tracker) Reset() {
	t.initialized = false
}

// Initialized reports whether a reference orientation is held.
func (t *Tracker) Initialized() bool {
	return t.initialized
}

// Reference returns a copy of the reference rotation matrix.
func (t *Tracker) Reference() rotation.Matrix {
	return t.initial
}
