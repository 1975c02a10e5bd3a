// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import "fmt"

// AnomalyType classifies reading anomalies
type AnomalyType int

const (
	// AnomalyZeroCounts marks the sensor's known degenerate read: a frame
	// whose six count bins are all zero. Mass concentrations in such a
	// frame are still usable.
	AnomalyZeroCounts AnomalyType = iota

	// AnomalyImplausiblePM marks a mass concentration beyond the sensor's
	// effective range.
	AnomalyImplausiblePM

	// AnomalyCountOrder marks count bins that violate their cumulative
	// ordering (the ≥0.3 µm bin must be the largest).
	AnomalyCountOrder

	// AnomalySPAEDivergence marks SP and AE columns that disagree far
	// beyond the correction factor's usual range.
	AnomalySPAEDivergence
)

// maxPlausiblePM is the upper bound of the PMS5003/7003 effective range in
// µg/m³. Values above it are reported but flagged.
const maxPlausiblePM = 1000

// maxSPAERatio bounds how far the AE column may exceed its SP counterpart.
// The atmospheric correction only lowers or mildly adjusts the CF=1 value;
// a large excess indicates a corrupted or misaligned frame that happened
// to checksum clean.
const maxSPAERatio = 3

// ValidationError represents a reading validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateReading checks a decoded reading for known sensor anomalies.
// Returns a slice of validation errors (empty if the reading is clean).
func ValidateReading(r *Reading) []ValidationError {
	errors := []ValidationError{}

	if !r.HasCounts() {
		errors = append(errors, ValidationError{
			Type:    AnomalyZeroCounts,
			Message: "all particle-count bins are zero (degenerate read)",
		})
	}

	pm := map[string]uint16{
		"pm1.0_sp": r.PM1_0SP, "pm2.5_sp": r.PM2_5SP, "pm10_sp": r.PM10SP,
		"pm1.0_ae": r.PM1_0AE, "pm2.5_ae": r.PM2_5AE, "pm10_ae": r.PM10AE,
	}
	for field, v := range pm {
		if v > maxPlausiblePM {
			errors = append(errors, ValidationError{
				Type:    AnomalyImplausiblePM,
				Message: fmt.Sprintf("%s=%d µg/m³ exceeds effective range (max %d)", field, v, maxPlausiblePM),
				Details: map[string]interface{}{"field": field, "value": v, "max": maxPlausiblePM},
			})
		}
	}

	pairs := []struct {
		name   string
		sp, ae uint16
	}{
		{"pm1.0", r.PM1_0SP, r.PM1_0AE},
		{"pm2.5", r.PM2_5SP, r.PM2_5AE},
		{"pm10", r.PM10SP, r.PM10AE},
	}
	for _, p := range pairs {
		if p.sp >= 10 && uint32(p.ae) > uint32(p.sp)*maxSPAERatio {
			errors = append(errors, ValidationError{
				Type:    AnomalySPAEDivergence,
				Message: fmt.Sprintf("%s AE=%d diverges from SP=%d (max ratio %dx)", p.name, p.ae, p.sp, maxSPAERatio),
				Details: map[string]interface{}{"field": p.name, "sp": p.sp, "ae": p.ae},
			})
		}
	}

	bins := []uint16{r.PPD0_3, r.PPD0_5, r.PPD1_0, r.PPD2_5, r.PPD5_0, r.PPD10}
	for i := 1; i < len(bins); i++ {
		if bins[i] > bins[i-1] {
			errors = append(errors, ValidationError{
				Type:    AnomalyCountOrder,
				Message: fmt.Sprintf("count bin %d (%d) exceeds bin %d (%d); bins must be cumulative", i, bins[i], i-1, bins[i-1]),
				Details: map[string]interface{}{"bin": i, "value": bins[i], "previous": bins[i-1]},
			})
			break
		}
	}

	return errors
}
