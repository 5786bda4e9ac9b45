// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"fmt"
	"math"
)

// Interpolator shapes the progress of an animated translation.
type Interpolator interface {
	// Interpolate maps elapsed fraction t in [0, 1] to progress in [0, 1].
	Interpolate(t float64) float64
	Name() string
}

// Decelerate starts fast and slows down towards the end: 1-(1-t)^(2*Factor).
// A zero Factor behaves like 1.
type Decelerate struct {
	Factor float64
}

func (d Decelerate) Interpolate(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	if d.Factor == 0 || d.Factor == 1 {
		return 1 - (1-t)*(1-t)
	}
	return 1 - math.Pow(1-t, 2*d.Factor)
}

func (d Decelerate) Name() string {
	if d.Factor == 0 || d.Factor == 1 {
		return "decelerate"
	}
	return fmt.Sprintf("decelerate(%g)", d.Factor)
}

// Linear is constant speed.
type Linear struct{}

func (Linear) Interpolate(t float64) float64 { return math.Max(0, math.Min(1, t)) }
func (Linear) Name() string                  { return "linear" }
