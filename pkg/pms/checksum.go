// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

// Checksum computes the 16-bit additive checksum used by the PMS frame
// protocol: the unsigned sum of every byte up to but excluding the two
// trailing checksum bytes.
func Checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}
