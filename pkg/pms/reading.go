// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import "time"

// Reading is one fully decoded measurement frame. A Reading is only ever
// produced whole: the decoder never exposes partially assembled frames.
type Reading struct {
	// Standard-particle mass concentrations in µg/m³ (CF=1).
	PM1_0SP uint16
	PM2_5SP uint16
	PM10SP  uint16

	// Atmospheric-environment mass concentrations in µg/m³.
	PM1_0AE uint16
	PM2_5AE uint16
	PM10AE  uint16

	// Cumulative particle counts per 0.1 L of air, by minimum particle
	// diameter in µm. Only the 13-word frame variant carries these; a
	// 9-word frame leaves them zero.
	PPD0_3 uint16
	PPD0_5 uint16
	PPD1_0 uint16
	PPD2_5 uint16
	PPD5_0 uint16
	PPD10  uint16

	// Timestamp is when the frame finished decoding.
	Timestamp time.Time
}

// TotalCounts returns the sum of all six particle-count bins.
func (r *Reading) TotalCounts() uint32 {
	return uint32(r.PPD0_3) + uint32(r.PPD0_5) + uint32(r.PPD1_0) +
		uint32(r.PPD2_5) + uint32(r.PPD5_0) + uint32(r.PPD10)
}

// HasCounts reports whether the count bins carry data. The sensor
// intermittently emits frames with all six bins zero; those are degenerate
// reads, not a true zero measurement.
func (r *Reading) HasCounts() bool {
	return r.TotalCounts() != 0
}
