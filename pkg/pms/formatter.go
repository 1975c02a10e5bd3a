// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import "fmt"

// FormatReading formats a reading into a human-readable multi-line string
// for the live decode log.
func FormatReading(r *Reading) string {
	timestamp := r.Timestamp.Format("15:04:05.000")

	result := fmt.Sprintf("[%s] PMS reading\n", timestamp)
	result += fmt.Sprintf("  PM1.0: %4d µg/m³ (SP)  %4d µg/m³ (AE)\n", r.PM1_0SP, r.PM1_0AE)
	result += fmt.Sprintf("  PM2.5: %4d µg/m³ (SP)  %4d µg/m³ (AE)\n", r.PM2_5SP, r.PM2_5AE)
	result += fmt.Sprintf("  PM10:  %4d µg/m³ (SP)  %4d µg/m³ (AE)\n", r.PM10SP, r.PM10AE)

	if r.HasCounts() {
		result += fmt.Sprintf("  Counts/0.1L: ≥0.3µm=%d ≥0.5µm=%d ≥1.0µm=%d ≥2.5µm=%d ≥5.0µm=%d ≥10µm=%d\n",
			r.PPD0_3, r.PPD0_5, r.PPD1_0, r.PPD2_5, r.PPD5_0, r.PPD10)
	} else {
		result += "  Counts/0.1L: (none reported)\n"
	}

	return result
}
