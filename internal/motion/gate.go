// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"log"
	"time"

	"github.com/relabs-tech/parallax/internal/sensors"
)

// State of a Gate.
type State int

const (
	Inactive State = iota
	Active
	Terminated
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Gate ties the sensor subscription to the host's active window.
//
//	Inactive --activate--> Active --deactivate--> Inactive
//	any --terminate--> Terminated (final)
//
// A nil service or a missing rotation-vector sensor makes activation a
// silent no-op apart from one log line.
type Gate struct {
	state    State
	service  sensors.Service
	listener sensors.Listener
	interval time.Duration

	onDeactivate func()
	onTerminate  func()

	warned bool
}

// NewGate returns an inactive gate subscribing listener to service.
func NewGate(service sensors.Service, listener sensors.Listener, interval time.Duration, onDeactivate, onTerminate func()) *Gate {
	return &Gate{
		service:      service,
		listener:     listener,
		interval:     interval,
		onDeactivate: onDeactivate,
		onTerminate:  onTerminate,
	}
}

// State returns the current state.
func (g *Gate) State() State {
	return g.state
}

// Activate subscribes to the rotation-vector sensor.
func (g *Gate) Activate() {
	if g.state != Inactive {
		return
	}
	g.state = Active
	if g.service == nil {
		g.warnUnavailable("no sensor service")
		return
	}
	if !g.service.Subscribe(g.listener, sensors.RotationVector, g.interval) {
		g.warnUnavailable("no rotation vector sensor")
	}
}

// Deactivate unsubscribes and runs the deactivation hook.
func (g *Gate) Deactivate() {
	if g.state != Active {
		return
	}
	if g.service != nil {
		g.service.Unsubscribe(g.listener)
	}
	g.state = Inactive
	if g.onDeactivate != nil {
		g.onDeactivate()
	}
}

// Terminate deactivates if needed and runs the teardown hook once.
func (g *Gate) Terminate() {
	if g.state == Terminated {
		return
	}
	g.Deactivate()
	g.state = Terminated
	if g.onTerminate != nil {
		g.onTerminate()
	}
}

func (g *Gate) warnUnavailable(reason string) {
	if g.warned {
		return
	}
	g.warned = true
	log.Printf("parallax: %s, targets will not move", reason)
}
