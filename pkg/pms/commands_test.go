// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import (
	"bytes"
	"testing"
)

func TestBuildCommand_MatchesPrecomputedFrames(t *testing.T) {
	tests := []struct {
		name string
		cmd  byte
		arg  uint16
		want [7]byte
	}{
		{"sleep", cmdSleepWake, 0x0000, SleepFrame},
		{"wake", cmdSleepWake, 0x0001, WakeFrame},
		{"active mode", cmdChangeMode, 0x0001, ActiveModeFrame},
		{"passive mode", cmdChangeMode, 0x0000, PassiveModeFrame},
		{"request read", cmdRequestRead, 0x0000, RequestReadFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildCommand(tt.cmd, tt.arg)
			if got != tt.want {
				t.Errorf("BuildCommand(0x%02X, 0x%04X) = % X, want % X",
					tt.cmd, tt.arg, got[:], tt.want[:])
			}
		})
	}
}

func TestCommandFrames_ChecksumValid(t *testing.T) {
	frames := map[string][7]byte{
		"sleep":        SleepFrame,
		"wake":         WakeFrame,
		"active mode":  ActiveModeFrame,
		"passive mode": PassiveModeFrame,
		"request read": RequestReadFrame,
	}

	for name, frame := range frames {
		sum := Checksum(frame[:5])
		if frame[5] != byte(sum>>8) || frame[6] != byte(sum) {
			t.Errorf("%s: trailing checksum 0x%02X%02X does not match calculated 0x%04X",
				name, frame[5], frame[6], sum)
		}
		if frame[0] != StartByte1 || frame[1] != StartByte2 {
			t.Errorf("%s: missing preamble", name)
		}
	}
}

type recordingStream struct {
	written bytes.Buffer
}

func (r *recordingStream) Read(p []byte) (int, error)  { return 0, nil }
func (r *recordingStream) Write(p []byte) (int, error) { return r.written.Write(p) }

func TestSensor_CommandsWriteExactFrames(t *testing.T) {
	tests := []struct {
		name string
		send func(*Sensor) error
		want [7]byte
	}{
		{"Sleep", (*Sensor).Sleep, SleepFrame},
		{"WakeUp", (*Sensor).WakeUp, WakeFrame},
		{"ActiveMode", (*Sensor).ActiveMode, ActiveModeFrame},
		{"PassiveMode", (*Sensor).PassiveMode, PassiveModeFrame},
		{"RequestRead", (*Sensor).RequestRead, RequestReadFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := &recordingStream{}
			s := NewSensor(stream)
			if err := tt.send(s); err != nil {
				t.Fatalf("%s returned error: %v", tt.name, err)
			}
			if !bytes.Equal(stream.written.Bytes(), tt.want[:]) {
				t.Errorf("%s wrote % X, want % X", tt.name, stream.written.Bytes(), tt.want[:])
			}
		})
	}
}
