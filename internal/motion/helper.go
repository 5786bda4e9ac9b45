// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motion moves registered targets in proportion to how far the
// device has been tilted since it became active, giving a parallax effect.
package motion

import (
	"sync"
	"time"

	"github.com/relabs-tech/parallax/internal/lifecycle"
	"github.com/relabs-tech/parallax/internal/sensors"
)

const (
	DefaultSamplingInterval = 100 * time.Millisecond
	DefaultDuration         = 300 * time.Millisecond
)

// Option configures a Helper.
type Option func(*options)

type options struct {
	interval time.Duration
	duration time.Duration
	easing   Interpolator
}

// WithSamplingInterval sets the rate requested from the sensor.
func WithSamplingInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithDuration sets the duration of every translation.
func WithDuration(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.duration = d
		}
	}
}

// WithInterpolator sets the easing of every translation.
func WithInterpolator(i Interpolator) Option {
	return func(o *options) {
		if i != nil {
			o.easing = i
		}
	}
}

// Helper glues a rotation-vector sensor to a set of targets for the
// lifetime of its owner: resume subscribes, pause unsubscribes and forgets
// the reference orientation, destroy drops all targets.
//
// Sensor samples and lifecycle events may arrive on different goroutines;
// Helper serializes them. Animators are called with the lock held.
type Helper struct {
	mu       sync.Mutex
	tracker  Tracker
	registry *Registry
	gate     *Gate
}

// New creates a Helper and, when owner is not nil, attaches it to owner.
// service may be nil, in which case targets never move.
func New(owner lifecycle.Owner, service sensors.Service, animator Animator, opts ...Option) *Helper {
	o := options{
		interval: DefaultSamplingInterval,
		duration: DefaultDuration,
		easing:   Decelerate{Factor: 1},
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Helper{registry: NewRegistry(animator, o.duration, o.easing)}
	h.gate = NewGate(service, h, o.interval, h.tracker.Reset, h.registry.Clear)
	if owner != nil {
		owner.AddObserver(h)
	}
	return h
}

// RegisterTarget adds element, moved up to maxTranslation at full tilt.
func (h *Helper) RegisterTarget(element string, maxTranslation float64) EntryID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Register(element, maxTranslation)
}

// Targets returns the registered entries.
func (h *Helper) Targets() []Target {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Targets()
}

// State returns the lifecycle state.
func (h *Helper) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gate.State()
}

func (h *Helper) OnSensorChanged(ev *sensors.Event) {
	if ev == nil {
		return
	}
	if ev.Type != 0 && ev.Type != sensors.RotationVector {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// a sample can still be in flight when the gate closes
	if h.gate.State() != Active {
		return
	}
	f, ok := h.tracker.Update(ev.Values)
	if !ok {
		return
	}
	h.registry.Propagate(f)
}

// OnAccuracyChanged is ignored.
func (h *Helper) OnAccuracyChanged(sensors.Type, int) {}

func (h *Helper) OnResume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gate.Activate()
}

func (h *Helper) OnPause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gate.Deactivate()
}

func (h *Helper) OnDestroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gate.Terminate()
}
