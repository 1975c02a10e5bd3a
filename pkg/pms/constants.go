// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

// Package pms implements the Plantower PMS-family serial frame protocol.
//
// The PMS1003/5003/7003 sensors stream binary frames over a 9600 8N1 UART.
// This package provides the frame decoder state machine, the fixed command
// frames (sleep, wake, mode selection), frame encoding for tests and
// hardware-free operation, and reading validation/statistics helpers.
package pms

// Frame preamble, transmitted before every data frame and every command.
const (
	StartByte1 = 0x42
	StartByte2 = 0x4D
)

// Declared frame lengths (payload + 2 checksum bytes) for the two
// supported frame variants. Anything else is rejected before the payload
// is consumed.
const (
	FrameLen9  = 2*9 + 2  // PMS3003-class: 9 data words
	FrameLen13 = 2*13 + 2 // PMS5003/7003-class: 13 data words
)

// maxPayloadSize is the data-byte capacity of the largest supported frame
// variant. Longer declared payloads are checksummed but never stored.
const maxPayloadSize = FrameLen13 - 2

// Command bytes (third byte of a 7-byte command frame).
const (
	cmdRequestRead = 0xE2
	cmdChangeMode  = 0xE1
	cmdSleepWake   = 0xE4
)

// DefaultBaudRate is the fixed UART rate of the PMS-family sensors.
const DefaultBaudRate = 9600
