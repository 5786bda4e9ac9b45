// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"log"
	"reflect"
	"sync"
	"time"
)

type subscription struct {
	listener Listener
	interval time.Duration
	last     time.Time
}

// identifiable reports whether l can be found again on Unsubscribe.
// Comparable listeners compare with ==; func, map and slice listeners by the
// value they point at. Structs holding such fields have no identity and
// must be passed by pointer.
func identifiable(l Listener) bool {
	t := reflect.TypeOf(l)
	if t == nil {
		return false
	}
	if t.Comparable() {
		return true
	}
	switch t.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

func sameListener(a, b Listener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// dispatcher holds the listeners of one sensor and fans samples out to them.
// A feed is started with the first listener and stopped with the last one.
// stop must not wait for the feed goroutine: a listener may be blocked on a
// lock held by whoever is unsubscribing.
type dispatcher struct {
	name string
	typ  Type

	start func(interval time.Duration) error
	stop  func()
	now   func() time.Time

	mu       sync.Mutex
	subs     []*subscription
	running  bool
	accuracy int

	// deliverMu keeps listener callbacks of this sensor strictly sequential.
	deliverMu sync.Mutex
}

func newDispatcher(name string, typ Type, start func(time.Duration) error, stop func()) *dispatcher {
	if start == nil {
		start = func(time.Duration) error { return nil }
	}
	if stop == nil {
		stop = func() {}
	}
	return &dispatcher{
		name:     name,
		typ:      typ,
		start:    start,
		stop:     stop,
		now:      time.Now,
		accuracy: -1,
	}
}

func (d *dispatcher) Subscribe(l Listener, t Type, interval time.Duration) bool {
	if t != d.typ {
		return false
	}
	if !identifiable(l) {
		if l != nil {
			log.Printf("%s: listener %T cannot be told apart, pass it by pointer", d.name, l)
		}
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if i := d.find(l); i >= 0 {
		d.subs[i].interval = interval
		return true
	}
	d.subs = append(d.subs, &subscription{listener: l, interval: interval})

	if !d.running {
		if err := d.start(interval); err != nil {
			log.Printf("%s: start failed: %v", d.name, err)
			d.subs = d.subs[:len(d.subs)-1]
			return false
		}
		d.running = true
		log.Printf("%s: started (interval %v)", d.name, interval)
	}
	return true
}

func (d *dispatcher) Unsubscribe(l Listener) {
	d.mu.Lock()
	i := d.find(l)
	if i < 0 {
		d.mu.Unlock()
		return
	}
	d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
	stop := d.running && len(d.subs) == 0
	if stop {
		d.running = false
	}
	d.mu.Unlock()

	if stop {
		d.stop()
		log.Printf("%s: stopped", d.name)
	}
}

// find returns the index of l in subs, or -1. d.mu must be held.
func (d *dispatcher) find(l Listener) int {
	for i, s := range d.subs {
		if sameListener(s.listener, l) {
			return i
		}
	}
	return -1
}

// listeners reports the number of subscribed listeners.
func (d *dispatcher) listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// deliver hands ev to every listener whose sampling interval has elapsed.
// Accuracy changes are announced first.
func (d *dispatcher) deliver(ev *Event) {
	if ev == nil {
		return
	}
	ev.Type = d.typ
	now := d.now()

	d.mu.Lock()
	accuracyChanged := ev.Accuracy != d.accuracy
	d.accuracy = ev.Accuracy
	all := make([]Listener, 0, len(d.subs))
	due := make([]Listener, 0, len(d.subs))
	for _, s := range d.subs {
		all = append(all, s.listener)
		if s.last.IsZero() || now.Sub(s.last) >= s.interval {
			s.last = now
			due = append(due, s.listener)
		}
	}
	d.mu.Unlock()

	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	if accuracyChanged {
		for _, l := range all {
			l.OnAccuracyChanged(d.typ, ev.Accuracy)
		}
	}
	for _, l := range due {
		l.OnSensorChanged(ev)
	}
}
