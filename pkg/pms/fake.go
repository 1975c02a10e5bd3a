// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import (
	"encoding/binary"
	"math/rand"
)

// EncodeFrame encodes a reading as a complete 13-word data frame (32 bytes
// on the wire): preamble, declared length, big-endian payload words, and a
// valid trailing checksum. It is the inverse of the decoder for the
// 13-word variant and is used by tests and hardware-free operation.
func EncodeFrame(r *Reading) []byte {
	frame := make([]byte, FrameLen13+4)
	frame[0] = StartByte1
	frame[1] = StartByte2
	binary.BigEndian.PutUint16(frame[2:], FrameLen13)

	words := []uint16{
		r.PM1_0SP, r.PM2_5SP, r.PM10SP,
		r.PM1_0AE, r.PM2_5AE, r.PM10AE,
		r.PPD0_3, r.PPD0_5, r.PPD1_0,
		r.PPD2_5, r.PPD5_0, r.PPD10,
		0, // reserved
	}
	for i, w := range words {
		binary.BigEndian.PutUint16(frame[4+2*i:], w)
	}

	sum := Checksum(frame[:FrameLen13+2])
	binary.BigEndian.PutUint16(frame[FrameLen13+2:], sum)
	return frame
}

// FakeReading produces a synthetic reading with randomized PM1.0/2.5/10
// concentrations (0..499 µg/m³) in both the SP and AE columns and every
// count bin zero, matching the shape of the firmware's fake-data path.
func FakeReading(rng *rand.Rand) *Reading {
	pm1 := uint16(rng.Intn(500))
	pm25 := uint16(rng.Intn(500))
	pm10 := uint16(rng.Intn(500))
	return &Reading{
		PM1_0SP: pm1, PM2_5SP: pm25, PM10SP: pm10,
		PM1_0AE: pm1, PM2_5AE: pm25, PM10AE: pm10,
	}
}

// FakeFrame produces a checksum-valid wire frame carrying a FakeReading,
// for exercising the decoder without sensor hardware.
func FakeFrame(rng *rand.Rand) []byte {
	return EncodeFrame(FakeReading(rng))
}
