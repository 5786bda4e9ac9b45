// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"time"

	"github.com/relabs-tech/parallax/internal/orientation"
)

// PoseService turns an orientation.Source into a rotation-vector sensor by
// polling it at the listener's sampling interval.
type PoseService struct {
	*dispatcher
	src orientation.Source
}

// NewPoseService wraps src. name is used in log lines.
func NewPoseService(name string, src orientation.Source) *PoseService {
	s := &PoseService{src: src}
	p := &poller{name: name, read: s.read}
	s.dispatcher = newDispatcher(name, RotationVector, p.start, p.stop)
	p.out = s.deliver
	return s
}

// NewMockService is a PoseService over the mock orientation source.
func NewMockService() *PoseService {
	return NewPoseService("mock sensor", orientation.NewMockSource())
}

// NewIMUService is a PoseService over an MPU9250 accelerometer. Without a
// magnetometer the yaw stays at 0, so only tilt moves the targets.
func NewIMUService(spiDev, csPin string) (*PoseService, error) {
	src, err := orientation.NewIMUSource(spiDev, csPin)
	if err != nil {
		return nil, err
	}
	return NewPoseService("imu sensor", src), nil
}

func (s *PoseService) read() (*Event, error) {
	pose, err := s.src.Next()
	if err != nil {
		return nil, err
	}
	return &Event{
		Values:    pose.RotationVector(),
		Accuracy:  AccuracyHigh,
		Timestamp: time.Now(),
	}, nil
}
