// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrReadTimeout reports that no complete frame arrived before the
// deadline. It is the benign outcome of a bounded read; any other error
// from ReadUntil means the stream itself failed.
var ErrReadTimeout = errors.New("no frame before deadline")

// pollInterval is how long ReadUntil pauses when the stream has no data
// before checking the deadline again.
const pollInterval = 10 * time.Millisecond

// Sensor binds the frame decoder and the command frames to one byte
// stream. The stream is owned by the caller; Sensor only reads and writes
// it. For ReadUntil to stay bounded, the underlying stream must not block
// indefinitely on Read (serial ports opened by this project carry a short
// read timeout).
type Sensor struct {
	stream io.ReadWriter
	dec    *Decoder
}

// NewSensor creates a Sensor bound to the given byte stream. The decoder
// is created once and reused across read attempts.
func NewSensor(stream io.ReadWriter) *Sensor {
	return &Sensor{stream: stream, dec: NewDecoder()}
}

// Sleep commands the sensor into standby.
func (s *Sensor) Sleep() error { return s.send(SleepFrame) }

// WakeUp commands the sensor out of standby.
func (s *Sensor) WakeUp() error { return s.send(WakeFrame) }

// ActiveMode selects continuous data streaming.
func (s *Sensor) ActiveMode() error { return s.send(ActiveModeFrame) }

// PassiveMode selects request/response operation.
func (s *Sensor) PassiveMode() error { return s.send(PassiveModeFrame) }

// RequestRead asks for one data frame while in passive mode.
func (s *Sensor) RequestRead() error { return s.send(RequestReadFrame) }

func (s *Sensor) send(frame [7]byte) error {
	_, err := s.stream.Write(frame[:])
	return err
}

// ReadUntil feeds stream bytes through the decoder until a frame completes
// or the timeout elapses, whichever comes first. Decode errors are benign
// resynchronizations and do not end the attempt. Returns ErrReadTimeout at
// the deadline; a hard stream failure is returned as its own error so
// callers can tell a silent sensor from a broken port.
func (s *Sensor) ReadUntil(timeout time.Duration) (*Reading, error) {
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 64)

	for time.Now().Before(deadline) {
		n, err := s.stream.Read(buf)
		if n == 0 {
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("sensor stream: %w", err)
			}
			time.Sleep(pollInterval)
			continue
		}

		for i := 0; i < n; i++ {
			r, derr := s.dec.DecodeByte(buf[i])
			if derr != nil {
				continue
			}
			if r != nil {
				return r, nil
			}
		}
	}

	return nil, ErrReadTimeout
}
