// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package animation hosts the targets moved by the parallax helper: browser
// pages over websocket, MQTT subscribers, a small OLED, or the log.
package animation

import (
	"log"

	"github.com/relabs-tech/parallax/internal/motion"
)

// Message is the JSON form of a translation request.
type Message struct {
	Entry      string  `json:"entry"`
	Element    string  `json:"element"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	DurationMS int64   `json:"duration_ms"`
	Easing     string  `json:"easing"`
}

// NewMessage converts a translation for the wire.
func NewMessage(t motion.Translation) Message {
	m := Message{
		Entry:      string(t.Entry),
		Element:    t.Element,
		X:          t.X,
		Y:          t.Y,
		DurationMS: t.Duration.Milliseconds(),
	}
	if t.Easing != nil {
		m.Easing = t.Easing.Name()
	}
	return m
}

// Multi fans every translation out to all of its animators.
type Multi []motion.Animator

func (m Multi) Animate(t motion.Translation) {
	for _, a := range m {
		a.Animate(t)
	}
}

// LogAnimator prints every translation.
type LogAnimator struct {
	Prefix string
}

func (l LogAnimator) Animate(t motion.Translation) {
	log.Printf("%s[MOVE] %-12s x=%7.2f y=%7.2f (%v)", l.Prefix, t.Element, t.X, t.Y, t.Duration)
}
