// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package lifecycle carries the active/inactive/teardown signals of the
// process hosting the parallax targets.
package lifecycle

import (
	"fmt"
	"strings"
	"sync"
)

// Event is a lifecycle signal.
type Event int

const (
	Resume Event = iota + 1
	Pause
	Destroy
)

func (e Event) String() string {
	switch e {
	case Resume:
		return "resume"
	case Pause:
		return "pause"
	case Destroy:
		return "destroy"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ParseEvent accepts the names returned by Event.String, case-insensitive.
func ParseEvent(s string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "resume":
		return Resume, nil
	case "pause":
		return Pause, nil
	case "destroy":
		return Destroy, nil
	default:
		return 0, fmt.Errorf("unknown lifecycle event %q", s)
	}
}

// Observer reacts to lifecycle signals.
type Observer interface {
	OnResume()
	OnPause()
	OnDestroy()
}

// Owner is something observers can attach to.
type Owner interface {
	AddObserver(o Observer)
}

// Registry is the lifecycle owner of a running process. Events are handed
// to observers in registration order, one event at a time. Nothing is
// dispatched after Destroy.
type Registry struct {
	mu        sync.Mutex
	observers []Observer
	destroyed bool
	done      chan struct{}

	// dispatchMu keeps events from different sources from interleaving.
	dispatchMu sync.Mutex
}

// NewRegistry returns a registry that has not been resumed yet.
func NewRegistry() *Registry {
	return &Registry{done: make(chan struct{})}
}

func (r *Registry) AddObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	r.observers = append(r.observers, o)
}

// Handle dispatches e to every observer.
func (r *Registry) Handle(e Event) {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()

	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	observers := append([]Observer(nil), r.observers...)
	if e == Destroy {
		r.destroyed = true
		r.observers = nil
	}
	r.mu.Unlock()

	for _, o := range observers {
		switch e {
		case Resume:
			o.OnResume()
		case Pause:
			o.OnPause()
		case Destroy:
			o.OnDestroy()
		}
	}

	if e == Destroy {
		close(r.done)
	}
}

// Done is closed once Destroy has been dispatched.
func (r *Registry) Done() <-chan struct{} {
	return r.done
}
