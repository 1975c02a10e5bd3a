// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

// Command frames are fixed 7-byte sequences: the two preamble bytes, one
// command byte, a 16-bit big-endian argument, and the 16-bit additive
// checksum of the preceding five bytes. The sensor never acknowledges them.
// The frames below are precomputed constants; BuildCommand exists so tests
// can verify the checksums and so unusual arguments remain expressible.

var (
	// SleepFrame puts the sensor into standby: fan and laser off, for low
	// power consumption and longer service life.
	SleepFrame = [7]byte{StartByte1, StartByte2, cmdSleepWake, 0x00, 0x00, 0x01, 0x73}

	// WakeFrame restarts the fan and laser. Data is unreliable until the
	// fan has run for about 30 seconds.
	WakeFrame = [7]byte{StartByte1, StartByte2, cmdSleepWake, 0x00, 0x01, 0x01, 0x74}

	// ActiveModeFrame selects active mode (the power-on default): the
	// sensor streams data frames continuously.
	ActiveModeFrame = [7]byte{StartByte1, StartByte2, cmdChangeMode, 0x00, 0x01, 0x01, 0x71}

	// PassiveModeFrame selects passive mode: the sensor only emits a data
	// frame in response to RequestReadFrame.
	PassiveModeFrame = [7]byte{StartByte1, StartByte2, cmdChangeMode, 0x00, 0x00, 0x01, 0x70}

	// RequestReadFrame requests a single data frame in passive mode.
	RequestReadFrame = [7]byte{StartByte1, StartByte2, cmdRequestRead, 0x00, 0x00, 0x01, 0x71}
)

// BuildCommand assembles a 7-byte command frame for the given command byte
// and argument, computing the trailing checksum.
func BuildCommand(cmd byte, arg uint16) [7]byte {
	frame := [7]byte{StartByte1, StartByte2, cmd, byte(arg >> 8), byte(arg)}
	sum := Checksum(frame[:5])
	frame[5] = byte(sum >> 8)
	frame[6] = byte(sum)
	return frame
}
