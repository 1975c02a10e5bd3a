// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import (
	"errors"
	"fmt"
	"time"
)

// Decoder diagnostics. Every failure resynchronizes the decoder silently;
// the errors exist so callers that want per-byte diagnostics (watch, tui,
// statistics) can classify them. Callers that only want readings may
// ignore them entirely.
var (
	ErrSync     = errors.New("lost frame sync")
	ErrLength   = errors.New("unsupported frame length")
	ErrChecksum = errors.New("checksum mismatch")
)

// Decoder implements the PMS frame decoder state machine. The state is the
// byte position within the frame being assembled; position 0 means "hunting
// for a preamble". The position resets to 0 on any synchronization failure
// and on every completed frame, valid or not.
type Decoder struct {
	index      int
	calculated uint16
	frameLen   uint16
	checksum   uint16
	payload    [maxPayloadSize]byte
}

// NewDecoder creates a new frame decoder ready to synchronize on the next
// preamble in the byte stream.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Reset returns the decoder to the hunting state, discarding any partially
// assembled frame.
func (d *Decoder) Reset() {
	d.index = 0
	d.calculated = 0
	d.frameLen = 0
	d.checksum = 0
}

// DecodeByte processes a single byte through the decoder state machine.
// It returns a Reading when the byte completes a checksum-valid frame, or
// nil while a frame is still incomplete. A non-nil error reports a
// resynchronization (lost preamble, unsupported length, checksum mismatch);
// the decoder has already reset itself and the caller may simply continue
// feeding bytes.
func (d *Decoder) DecodeByte(b byte) (*Reading, error) {
	switch d.index {
	case 0:
		// Hunting: anything that is not the first preamble byte is
		// skipped without advancing.
		if b != StartByte1 {
			return nil, nil
		}
		d.calculated = uint16(b)

	case 1:
		if b != StartByte2 {
			d.Reset()
			return nil, fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrSync, b, StartByte2)
		}
		d.calculated += uint16(b)

	case 2:
		d.calculated += uint16(b)
		d.frameLen = uint16(b) << 8

	case 3:
		d.frameLen |= uint16(b)
		if d.frameLen != FrameLen9 && d.frameLen != FrameLen13 {
			n := d.frameLen
			d.Reset()
			return nil, fmt.Errorf("%w: %d", ErrLength, n)
		}
		d.calculated += uint16(b)

	default:
		switch d.index {
		case int(d.frameLen) + 2:
			d.checksum = uint16(b) << 8

		case int(d.frameLen) + 3:
			d.checksum |= uint16(b)
			calculated, received := d.calculated, d.checksum
			frameLen := d.frameLen
			payload := d.payload
			d.Reset()
			if calculated != received {
				return nil, fmt.Errorf("%w: calculated 0x%04X, received 0x%04X",
					ErrChecksum, calculated, received)
			}
			return decodePayload(payload[:], frameLen), nil

		default:
			d.calculated += uint16(b)
			// Payload bytes beyond the largest supported variant are
			// checksummed but never stored.
			if i := d.index - 4; i < len(d.payload) {
				d.payload[i] = b
			}
		}
	}

	d.index++
	return nil, nil
}

// decodePayload extracts the typed fields from a validated payload. Fields
// are big-endian 16-bit words as transmitted by the sensor. Count bins are
// only present in the 13-word variant.
func decodePayload(p []byte, frameLen uint16) *Reading {
	r := &Reading{
		PM1_0SP: word(p[0], p[1]),
		PM2_5SP: word(p[2], p[3]),
		PM10SP:  word(p[4], p[5]),

		PM1_0AE: word(p[6], p[7]),
		PM2_5AE: word(p[8], p[9]),
		PM10AE:  word(p[10], p[11]),

		Timestamp: time.Now(),
	}

	if frameLen == FrameLen13 {
		r.PPD0_3 = word(p[12], p[13])
		r.PPD0_5 = word(p[14], p[15])
		r.PPD1_0 = word(p[16], p[17])
		r.PPD2_5 = word(p[18], p[19])
		r.PPD5_0 = word(p[20], p[21])
		r.PPD10 = word(p[22], p[23])
	}

	return r
}

// word assembles a big-endian 16-bit field from two payload bytes.
func word(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
