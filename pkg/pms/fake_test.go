// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import (
	"math/rand"
	"testing"
)

func TestFakeReading_Shape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		r := FakeReading(rng)
		if r.PM1_0SP > 499 || r.PM2_5SP > 499 || r.PM10SP > 499 {
			t.Fatalf("fake PM out of range: %+v", r)
		}
		if r.PM1_0SP != r.PM1_0AE || r.PM2_5SP != r.PM2_5AE || r.PM10SP != r.PM10AE {
			t.Fatalf("fake reading SP/AE columns should match: %+v", r)
		}
		if r.HasCounts() {
			t.Fatalf("fake reading should carry no count data: %+v", r)
		}
	}
}

func TestFakeFrame_Decodes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	d := NewDecoder()

	frame := FakeFrame(rng)
	if len(frame) != int(FrameLen13)+4 {
		t.Fatalf("fake frame is %d bytes, want %d", len(frame), FrameLen13+4)
	}

	var got *Reading
	for _, b := range frame {
		r, err := d.DecodeByte(b)
		if err != nil {
			t.Fatalf("fake frame failed to decode: %v", err)
		}
		if r != nil {
			got = r
		}
	}
	if got == nil {
		t.Fatal("fake frame produced no reading")
	}
}

func TestEncodeFrame_DeclaredLengthAndChecksum(t *testing.T) {
	frame := EncodeFrame(&Reading{PM2_5SP: 123, PPD1_0: 45})

	if frame[0] != StartByte1 || frame[1] != StartByte2 {
		t.Error("missing preamble")
	}
	if declared := word(frame[2], frame[3]); declared != FrameLen13 {
		t.Errorf("declared length = %d, want %d", declared, FrameLen13)
	}
	sum := Checksum(frame[:len(frame)-2])
	if received := word(frame[len(frame)-2], frame[len(frame)-1]); received != sum {
		t.Errorf("trailing checksum 0x%04X, calculated 0x%04X", received, sum)
	}
}
