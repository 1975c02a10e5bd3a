// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import (
	"encoding/binary"
	"errors"
	"testing"
)

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	if sum := Checksum(nil); sum != 0 {
		t.Errorf("checksum of no data should be 0, got 0x%04X", sum)
	}
}

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "preamble only",
			data:     []byte{0x42, 0x4D},
			expected: 0x008F,
		},
		{
			name:     "sleep command prefix",
			data:     []byte{0x42, 0x4D, 0xE4, 0x00, 0x00},
			expected: 0x0173,
		},
		{
			name:     "byte overflow wraps into high byte",
			data:     []byte{0xFF, 0xFF, 0xFF},
			expected: 0x02FD,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sum := Checksum(tt.data); sum != tt.expected {
				t.Errorf("checksum mismatch: expected 0x%04X, got 0x%04X", tt.expected, sum)
			}
		})
	}
}

// ============================================================
// Decoder Test Helpers
// ============================================================

// buildFrame9 encodes a 9-word (PMS3003-class) frame from the first six
// words of r plus three reserved words.
func buildFrame9(r *Reading) []byte {
	frame := make([]byte, FrameLen9+4)
	frame[0] = StartByte1
	frame[1] = StartByte2
	binary.BigEndian.PutUint16(frame[2:], FrameLen9)

	words := []uint16{
		r.PM1_0SP, r.PM2_5SP, r.PM10SP,
		r.PM1_0AE, r.PM2_5AE, r.PM10AE,
		0, 0, 0,
	}
	for i, w := range words {
		binary.BigEndian.PutUint16(frame[4+2*i:], w)
	}

	binary.BigEndian.PutUint16(frame[FrameLen9+2:], Checksum(frame[:FrameLen9+2]))
	return frame
}

// feed pushes every byte through the decoder and returns the last reading
// produced plus any decode errors encountered.
func feed(t *testing.T, d *Decoder, data []byte) (*Reading, []error) {
	t.Helper()
	var reading *Reading
	var errs []error
	for i, b := range data {
		r, err := d.DecodeByte(b)
		if err != nil {
			errs = append(errs, err)
		}
		if r != nil {
			if i != len(data)-1 {
				t.Errorf("reading completed at byte %d, expected byte %d", i, len(data)-1)
			}
			reading = r
		}
	}
	return reading, errs
}

// ============================================================
// Decoder Tests
// ============================================================

func TestDecoder_Frame13RoundTrip(t *testing.T) {
	want := &Reading{
		PM1_0SP: 12, PM2_5SP: 35, PM10SP: 50,
		PM1_0AE: 11, PM2_5AE: 33, PM10AE: 48,
		PPD0_3: 1200, PPD0_5: 340, PPD1_0: 56,
		PPD2_5: 12, PPD5_0: 3, PPD10: 1,
	}
	frame := EncodeFrame(want)

	d := NewDecoder()
	got, errs := feed(t, d, frame)
	if len(errs) > 0 {
		t.Fatalf("unexpected decode errors: %v", errs)
	}
	if got == nil {
		t.Fatal("no reading produced")
	}

	if got.PM1_0SP != want.PM1_0SP || got.PM2_5SP != want.PM2_5SP || got.PM10SP != want.PM10SP {
		t.Errorf("SP mismatch: got %d/%d/%d", got.PM1_0SP, got.PM2_5SP, got.PM10SP)
	}
	if got.PM1_0AE != want.PM1_0AE || got.PM2_5AE != want.PM2_5AE || got.PM10AE != want.PM10AE {
		t.Errorf("AE mismatch: got %d/%d/%d", got.PM1_0AE, got.PM2_5AE, got.PM10AE)
	}
	if got.PPD0_3 != want.PPD0_3 || got.PPD0_5 != want.PPD0_5 || got.PPD1_0 != want.PPD1_0 ||
		got.PPD2_5 != want.PPD2_5 || got.PPD5_0 != want.PPD5_0 || got.PPD10 != want.PPD10 {
		t.Errorf("count mismatch: got %d/%d/%d/%d/%d/%d",
			got.PPD0_3, got.PPD0_5, got.PPD1_0, got.PPD2_5, got.PPD5_0, got.PPD10)
	}
	if !got.HasCounts() {
		t.Error("HasCounts should be true for non-zero bins")
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp should be set on decode")
	}
}

func TestDecoder_Frame9RoundTrip(t *testing.T) {
	want := &Reading{
		PM1_0SP: 7, PM2_5SP: 21, PM10SP: 30,
		PM1_0AE: 7, PM2_5AE: 20, PM10AE: 29,
	}
	frame := buildFrame9(want)

	d := NewDecoder()
	got, errs := feed(t, d, frame)
	if len(errs) > 0 {
		t.Fatalf("unexpected decode errors: %v", errs)
	}
	if got == nil {
		t.Fatal("no reading produced")
	}

	if got.PM2_5SP != want.PM2_5SP || got.PM10AE != want.PM10AE {
		t.Errorf("field mismatch: got %+v", got)
	}
	if got.HasCounts() {
		t.Error("9-word frame must leave all count bins zero")
	}
	if got.TotalCounts() != 0 {
		t.Errorf("TotalCounts should be 0, got %d", got.TotalCounts())
	}
}

func TestDecoder_GarbagePrefixThenValidFrame(t *testing.T) {
	frame := EncodeFrame(&Reading{PM2_5SP: 42, PPD0_3: 9})

	// Garbage including a stray 0x42 not followed by 0x4D
	garbage := []byte{0x00, 0xFF, 0x42, 0x13, 0x4D, 0x42}

	d := NewDecoder()
	var got *Reading
	for _, b := range append(garbage, frame...) {
		r, _ := d.DecodeByte(b)
		if r != nil {
			got = r
		}
	}

	if got == nil {
		t.Fatal("decoder failed to resynchronize after garbage")
	}
	if got.PM2_5SP != 42 {
		t.Errorf("PM2.5 = %d, want 42", got.PM2_5SP)
	}
}

func TestDecoder_SecondPreambleByteMismatch(t *testing.T) {
	d := NewDecoder()
	if _, err := d.DecodeByte(StartByte1); err != nil {
		t.Fatalf("unexpected error on first preamble byte: %v", err)
	}
	_, err := d.DecodeByte(0x99)
	if !errors.Is(err, ErrSync) {
		t.Fatalf("expected ErrSync, got %v", err)
	}

	// Decoder must be hunting again: a full valid frame decodes.
	r, errs := feed(t, d, EncodeFrame(&Reading{PM10SP: 5}))
	if len(errs) > 0 || r == nil {
		t.Fatalf("decoder did not recover after sync error: r=%v errs=%v", r, errs)
	}
}

func TestDecoder_RejectsUnsupportedLengths(t *testing.T) {
	for _, length := range []uint16{0, 1, 19, 21, 27, 29, 64, 0xFFFF} {
		d := NewDecoder()
		d.DecodeByte(StartByte1)
		d.DecodeByte(StartByte2)
		d.DecodeByte(byte(length >> 8))
		_, err := d.DecodeByte(byte(length))
		if !errors.Is(err, ErrLength) {
			t.Errorf("length %d: expected ErrLength, got %v", length, err)
		}
	}
}

func TestDecoder_AcceptsBothSupportedLengths(t *testing.T) {
	for _, length := range []uint16{FrameLen9, FrameLen13} {
		d := NewDecoder()
		d.DecodeByte(StartByte1)
		d.DecodeByte(StartByte2)
		d.DecodeByte(byte(length >> 8))
		if _, err := d.DecodeByte(byte(length)); err != nil {
			t.Errorf("length %d rejected: %v", length, err)
		}
	}
}

func TestDecoder_ChecksumSingleBitSensitivity(t *testing.T) {
	frame := EncodeFrame(&Reading{
		PM1_0SP: 10, PM2_5SP: 25, PM10SP: 40,
		PPD0_3: 500,
	})

	// Flip one bit in a payload byte; the frame must be rejected with a
	// checksum error and no reading.
	for _, pos := range []int{4, 10, len(frame) - 3} {
		corrupted := make([]byte, len(frame))
		copy(corrupted, frame)
		corrupted[pos] ^= 0x01

		d := NewDecoder()
		var got *Reading
		var checksumErr error
		for _, b := range corrupted {
			r, err := d.DecodeByte(b)
			if r != nil {
				got = r
			}
			if errors.Is(err, ErrChecksum) {
				checksumErr = err
			}
		}

		if got != nil {
			t.Errorf("bit flip at %d: corrupted frame produced a reading", pos)
		}
		if checksumErr == nil {
			t.Errorf("bit flip at %d: expected ErrChecksum", pos)
		}
	}
}

func TestDecoder_BackToBackFrames(t *testing.T) {
	a := EncodeFrame(&Reading{PM2_5SP: 1})
	b := EncodeFrame(&Reading{PM2_5SP: 2})

	d := NewDecoder()
	var readings []*Reading
	for _, by := range append(a, b...) {
		r, err := d.DecodeByte(by)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r != nil {
			readings = append(readings, r)
		}
	}

	if len(readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings))
	}
	if readings[0].PM2_5SP != 1 || readings[1].PM2_5SP != 2 {
		t.Errorf("readings out of order: %d, %d", readings[0].PM2_5SP, readings[1].PM2_5SP)
	}
}

func TestDecoder_RecoversAfterChecksumError(t *testing.T) {
	bad := EncodeFrame(&Reading{PM2_5SP: 77})
	bad[6] ^= 0xFF

	d := NewDecoder()
	for _, b := range bad {
		d.DecodeByte(b)
	}

	r, errs := feed(t, d, EncodeFrame(&Reading{PM2_5SP: 88}))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if r == nil || r.PM2_5SP != 88 {
		t.Fatalf("decoder did not recover after checksum error: %v", r)
	}
}

func TestDecoder_Reset(t *testing.T) {
	d := NewDecoder()
	frame := EncodeFrame(&Reading{PM2_5SP: 3})

	// Feed half a frame, reset, then a full frame must decode.
	for _, b := range frame[:10] {
		d.DecodeByte(b)
	}
	d.Reset()

	r, errs := feed(t, d, frame)
	if len(errs) > 0 || r == nil {
		t.Fatalf("decode after Reset failed: r=%v errs=%v", r, errs)
	}
}

// ============================================================
// Reading Tests
// ============================================================

func TestReading_HasCounts(t *testing.T) {
	r := &Reading{}
	if r.HasCounts() {
		t.Error("all-zero bins should report no counts")
	}

	r.PPD5_0 = 1
	if !r.HasCounts() {
		t.Error("a single non-zero bin should report counts")
	}
}

func TestReading_TotalCountsNoOverflow(t *testing.T) {
	r := &Reading{
		PPD0_3: 0xFFFF, PPD0_5: 0xFFFF, PPD1_0: 0xFFFF,
		PPD2_5: 0xFFFF, PPD5_0: 0xFFFF, PPD10: 0xFFFF,
	}
	want := uint32(6) * 0xFFFF
	if got := r.TotalCounts(); got != want {
		t.Errorf("TotalCounts = %d, want %d", got, want)
	}
}
