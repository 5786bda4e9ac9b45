// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"log"
	"sync"
	"time"
)

// poller drives a dispatcher from a blocking read function on a ticker.
type poller struct {
	name string
	read func() (*Event, error)
	out  func(*Event)

	mu   sync.Mutex
	done chan struct{}
}

func (p *poller) start(interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSamplingInterval
	}
	done := make(chan struct{})

	p.mu.Lock()
	p.done = done
	p.mu.Unlock()

	go p.loop(interval, done)
	return nil
}

func (p *poller) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		close(p.done)
		p.done = nil
	}
}

func (p *poller) loop(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		ev, err := p.read()
		if err != nil {
			failures++
			// log the first failure, then every 50th
			if failures == 1 || failures%50 == 0 {
				log.Printf("%s: read error (%d so far): %v", p.name, failures, err)
			}
			continue
		}
		failures = 0

		select {
		case <-done:
			return
		default:
		}
		p.out(ev)
	}
}
