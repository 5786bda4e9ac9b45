// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock orientation source that gently tilts the
// device back and forth, like a hand holding a phone.
func NewMockSource() Source {
	return newMockSource(time.Now)
}

func newMockSource(now func() time.Time) *mockSource {
	return &mockSource{start: now(), now: now}
}

func (m *mockSource) Next() (Pose, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	return Pose{
		Roll:  20 * math.Sin(elapsed),
		Pitch: 15 * math.Sin(elapsed*0.7),
		Yaw:   5 * math.Sin(elapsed*0.3),
	}, nil
}
