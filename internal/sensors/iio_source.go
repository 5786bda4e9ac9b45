// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// IIODevicesDir is where the kernel exposes industrial I/O devices.
const IIODevicesDir = "/sys/bus/iio/devices"

const (
	iioQuaternionRaw   = "in_rot_quaternion_raw"
	iioQuaternionScale = "in_rot_quaternion_scale"
)

// ErrNoIIORotation is returned when no IIO device exposes a rotation quaternion.
var ErrNoIIORotation = errors.New("iio: no rotation sensor found")

// IIOService polls a Linux IIO rotation sensor (hid-sensor-rotation and
// similar drivers), which reports the device orientation as a quaternion.
type IIOService struct {
	*dispatcher
	poller *poller

	path     string
	scale    float64
	resolved bool
}

// NewIIOService uses the device directory at path, or looks one up under
// IIODevicesDir when path is empty. A service without a device is still
// returned; subscriptions to it fail.
func NewIIOService(path string) *IIOService {
	s := &IIOService{path: path, scale: 1}
	s.poller = &poller{name: "iio sensor", read: s.read}
	s.dispatcher = newDispatcher("iio sensor", RotationVector, s.open, s.poller.stop)
	s.poller.out = s.deliver
	return s
}

func (s *IIOService) open(interval time.Duration) error {
	// path and scale are fixed by the first open; pollers of earlier
	// activations may still be reading them
	if !s.resolved {
		path := s.path
		if path == "" {
			p, err := FindIIORotationDevice(IIODevicesDir)
			if err != nil {
				return err
			}
			path = p
		}
		if !fileExists(filepath.Join(path, iioQuaternionRaw)) {
			return fmt.Errorf("%w at %s", ErrNoIIORotation, path)
		}

		scale := 1.0
		if v, err := readFloat(filepath.Join(path, iioQuaternionScale)); err == nil && v != 0 {
			scale = v
		}
		s.path, s.scale = path, scale
		s.resolved = true
	}
	return s.poller.start(interval)
}

func (s *IIOService) read() (*Event, error) {
	b, err := os.ReadFile(filepath.Join(s.path, iioQuaternionRaw))
	if err != nil {
		return nil, err
	}
	values, err := parseIIOQuaternion(string(b), s.scale)
	if err != nil {
		return nil, err
	}
	return &Event{Values: values, Accuracy: AccuracyHigh, Timestamp: time.Now()}, nil
}

// parseIIOQuaternion parses "x y z w" raw counts and applies scale.
func parseIIOQuaternion(raw string, scale float64) ([]float64, error) {
	fields := strings.Fields(raw)
	if len(fields) < 4 {
		return nil, fmt.Errorf("iio: quaternion needs 4 values, got %q", strings.TrimSpace(raw))
	}
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("iio: quaternion value %q: %w", f, err)
		}
		values = append(values, v*scale)
	}
	return values, nil
}

// FindIIORotationDevice returns the first device directory under base that
// exposes a rotation quaternion.
func FindIIORotationDevice(base string) (string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", fmt.Errorf("iio: %w", err)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "iio:device") {
			continue
		}
		dev := filepath.Join(base, e.Name())
		if fileExists(filepath.Join(dev, iioQuaternionRaw)) {
			return dev, nil
		}
	}
	return "", ErrNoIIORotation
}

func readFloat(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
