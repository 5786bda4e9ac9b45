// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors delivers orientation samples from the available hardware
// and transports to listeners, in the manner of a platform sensor manager.
package sensors

import (
	"time"
)

// Type identifies a kind of sensor.
type Type int

const (
	RotationVector Type = iota + 1
	Accelerometer
)

func (t Type) String() string {
	switch t {
	case RotationVector:
		return "rotation_vector"
	case Accelerometer:
		return "accelerometer"
	default:
		return "unknown"
	}
}

// DefaultSamplingInterval is the delivery rate used when none is given.
const DefaultSamplingInterval = 100 * time.Millisecond

// Accuracy levels reported alongside samples.
const (
	AccuracyUnreliable = 0
	AccuracyLow        = 1
	AccuracyMedium     = 2
	AccuracyHigh       = 3
)

// Event is a single sensor sample. Values has a sensor specific length;
// rotation vectors carry (x, y, z[, w[, heading accuracy]]).
type Event struct {
	Type      Type      `json:"-"`
	Values    []float64 `json:"values"`
	Accuracy  int       `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// Listener receives samples. Calls for one service never overlap.
type Listener interface {
	OnSensorChanged(ev *Event)
	OnAccuracyChanged(t Type, accuracy int)
}

// Service is a source of sensor samples.
type Service interface {
	// Subscribe starts delivering samples of type t to l, at most one per
	// interval. It returns false if the sensor is not available, or if l
	// is a struct value that cannot be compared (pass a pointer instead).
	Subscribe(l Listener, t Type, interval time.Duration) bool
	// Unsubscribe stops all deliveries to l.
	Unsubscribe(l Listener)
}
