// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"time"

	"github.com/google/uuid"
)

// EntryID identifies one registration. Registering the same element twice
// yields two entries with distinct IDs.
type EntryID string

// Target is a registered element and the translation it reaches at full tilt.
type Target struct {
	ID             EntryID `json:"id" yaml:"-"`
	Element        string  `json:"element" yaml:"element"`
	MaxTranslation float64 `json:"max_translation" yaml:"max_translation"`
}

// Translation asks the animation host to move an element to (X, Y).
type Translation struct {
	Entry    EntryID
	Element  string
	X        float64
	Y        float64
	Duration time.Duration
	Easing   Interpolator
}

// Animator executes translations. Animate must not block: it is called on
// the sensor delivery path for every target on every sample.
type Animator interface {
	Animate(t Translation)
}

// AnimatorFunc adapts a function to Animator.
type AnimatorFunc func(Translation)

func (f AnimatorFunc) Animate(t Translation) { f(t) }

// Registry holds the targets moved on every sample.
type Registry struct {
	targets  []Target
	animator Animator
	duration time.Duration
	easing   Interpolator
}

// NewRegistry returns an empty registry feeding a.
func NewRegistry(a Animator, duration time.Duration, easing Interpolator) *Registry {
	return &Registry{animator: a, duration: duration, easing: easing}
}

// Register appends a target. No deduplication is done.
func (r *Registry) Register(element string, maxTranslation float64) EntryID {
	id := EntryID(uuid.NewString())
	r.targets = append(r.targets, Target{ID: id, Element: element, MaxTranslation: maxTranslation})
	return id
}

// Clear removes every target.
func (r *Registry) Clear() {
	r.targets = nil
}

// Len is the number of registered entries.
func (r *Registry) Len() int {
	return len(r.targets)
}

// Targets returns a copy of the registered entries.
func (r *Registry) Targets() []Target {
	return append([]Target(nil), r.targets...)
}

// Propagate sends one translation per entry: roll moves the element
// horizontally (inverted), pitch vertically.
func (r *Registry) Propagate(f Fractions) {
	if r.animator == nil {
		return
	}
	for _, t := range r.targets {
		r.animator.Animate(Translation{
			Entry:    t.ID,
			Element:  t.Element,
			X:        -f.Roll * t.MaxTranslation,
			Y:        f.Pitch * t.MaxTranslation,
			Duration: r.duration,
			Easing:   r.easing,
		})
	}
}
