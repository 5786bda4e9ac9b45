// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

// TypeRVEC is the proprietary sentence carrying a rotation vector:
//
//	$PRVEC,<x>,<y>,<z>,<w>,<accuracy>*<checksum>
const TypeRVEC = "RVEC"

// RVEC is a parsed rotation-vector sentence.
type RVEC struct {
	nmea.BaseSentence
	X, Y, Z, W float64
	Accuracy   int64
}

func parseRVEC(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	return RVEC{
		BaseSentence: s,
		X:            p.Float64(0, "x"),
		Y:            p.Float64(1, "y"),
		Z:            p.Float64(2, "z"),
		W:            p.Float64(3, "w"),
		Accuracy:     p.Int64(4, "accuracy"),
	}, p.Err()
}

var rvecParser = nmea.SentenceParser{
	CustomParsers: map[string]nmea.ParserFunc{
		TypeRVEC:       parseRVEC,
		"P" + TypeRVEC: parseRVEC,
	},
}

// ParseRVEC parses one NMEA line into a rotation-vector event.
func ParseRVEC(line string) (*Event, error) {
	sentence, err := rvecParser.Parse(line)
	if err != nil {
		return nil, err
	}
	m, ok := sentence.(RVEC)
	if !ok {
		return nil, fmt.Errorf("nmea: unexpected sentence %s", sentence.DataType())
	}
	return &Event{
		Values:    []float64{m.X, m.Y, m.Z, m.W},
		Accuracy:  int(m.Accuracy),
		Timestamp: time.Now(),
	}, nil
}

// FormatRVEC renders a rotation vector as a $PRVEC sentence with checksum.
func FormatRVEC(v []float64, accuracy int) string {
	var x, y, z, w float64
	if len(v) > 0 {
		x = v[0]
	}
	if len(v) > 1 {
		y = v[1]
	}
	if len(v) > 2 {
		z = v[2]
	}
	if len(v) > 3 {
		w = v[3]
	}
	body := fmt.Sprintf("PRVEC,%.6f,%.6f,%.6f,%.6f,%d", x, y, z, w, accuracy)
	return fmt.Sprintf("$%s*%s", body, nmea.Checksum(body))
}

// SerialService reads $PRVEC sentences from a serial-attached orientation
// module. Other sentences on the line are skipped.
type SerialService struct {
	*dispatcher

	opts serial.OpenOptions
	open func(serial.OpenOptions) (io.ReadWriteCloser, error)

	mu   sync.Mutex
	port io.ReadWriteCloser
}

// NewSerialService prepares a service for portName at baud. The port is
// opened when the first listener subscribes.
func NewSerialService(portName string, baud int) *SerialService {
	s := &SerialService{
		opts: serial.OpenOptions{
			PortName:              portName,
			BaudRate:              uint(baud),
			DataBits:              8,
			StopBits:              1,
			MinimumReadSize:       1,
			ParityMode:            serial.PARITY_NONE,
			InterCharacterTimeout: 0,
		},
		open: serial.Open,
	}
	s.dispatcher = newDispatcher("serial sensor", RotationVector, s.start, s.stop)
	return s
}

func (s *SerialService) start(time.Duration) error {
	port, err := s.open(s.opts)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.opts.PortName, err)
	}
	log.Printf("serial sensor: port opened on %s at %d baud", s.opts.PortName, s.opts.BaudRate)

	s.mu.Lock()
	s.port = port
	s.mu.Unlock()

	go s.readLoop(port)
	return nil
}

func (s *SerialService) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		s.port.Close()
		s.port = nil
	}
}

func (s *SerialService) readLoop(port io.ReadWriteCloser) {
	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// a port closed by stop, or replaced by a later start, is not an error
			s.mu.Lock()
			owned := s.port == port
			s.mu.Unlock()
			if owned {
				log.Printf("serial sensor: read error: %v", err)
			}
			return
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$PRVEC") {
			continue
		}
		ev, err := ParseRVEC(line)
		if err != nil {
			// partial sentences are common right after opening the port
			continue
		}
		s.deliver(ev)
	}
}
