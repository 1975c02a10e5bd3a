// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import (
	"fmt"
	"testing"
)

func hasAnomaly(errs []ValidationError, typ AnomalyType) bool {
	for _, e := range errs {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestValidateReading_Clean(t *testing.T) {
	r := &Reading{
		PM1_0SP: 10, PM2_5SP: 25, PM10SP: 40,
		PM1_0AE: 10, PM2_5AE: 24, PM10AE: 39,
		PPD0_3: 1000, PPD0_5: 500, PPD1_0: 100,
		PPD2_5: 20, PPD5_0: 5, PPD10: 1,
	}
	if errs := ValidateReading(r); len(errs) != 0 {
		t.Errorf("clean reading flagged: %v", errs)
	}
}

func TestValidateReading_ZeroCounts(t *testing.T) {
	r := &Reading{PM2_5SP: 15}
	errs := ValidateReading(r)
	if !hasAnomaly(errs, AnomalyZeroCounts) {
		t.Error("all-zero count bins should be flagged as degenerate")
	}
	if hasAnomaly(errs, AnomalyImplausiblePM) || hasAnomaly(errs, AnomalyCountOrder) {
		t.Errorf("unexpected extra anomalies: %v", errs)
	}
}

func TestValidateReading_ImplausiblePM(t *testing.T) {
	r := &Reading{
		PM2_5SP: maxPlausiblePM + 1,
		PPD0_3:  100,
	}
	errs := ValidateReading(r)
	if !hasAnomaly(errs, AnomalyImplausiblePM) {
		t.Errorf("PM2.5 = %d should be flagged", r.PM2_5SP)
	}

	// Exactly at the bound is still plausible
	r.PM2_5SP = maxPlausiblePM
	if errs := ValidateReading(r); hasAnomaly(errs, AnomalyImplausiblePM) {
		t.Error("PM at the bound should not be flagged")
	}
}

func TestValidateReading_CountOrder(t *testing.T) {
	r := &Reading{
		PPD0_3: 10, PPD0_5: 50, // 0.5 bin larger than 0.3 bin
	}
	errs := ValidateReading(r)
	if !hasAnomaly(errs, AnomalyCountOrder) {
		t.Error("non-cumulative bins should be flagged")
	}
}

func TestValidateReading_SPAEDivergence(t *testing.T) {
	r := &Reading{
		PM2_5SP: 10, PM2_5AE: 40, // 4x the SP value
		PPD0_3: 100,
	}
	if errs := ValidateReading(r); !hasAnomaly(errs, AnomalySPAEDivergence) {
		t.Error("AE far above SP should be flagged")
	}

	// Within the allowed ratio, and below the SP floor, stay clean.
	clean := &Reading{PM2_5SP: 10, PM2_5AE: 30, PM1_0SP: 2, PM1_0AE: 9, PPD0_3: 100}
	if errs := ValidateReading(clean); hasAnomaly(errs, AnomalySPAEDivergence) {
		t.Errorf("within-ratio readings flagged: %v", errs)
	}
}

func TestValidationError_Error(t *testing.T) {
	verr := &ValidationError{Type: AnomalyImplausiblePM, Message: "too high"}
	var err error = verr
	if err.Error() != "too high" {
		t.Errorf("Error() = %q", err.Error())
	}
}

// ============================================================
// Statistics Tests
// ============================================================

func TestStatistics_ClassifiesOutcomes(t *testing.T) {
	s := NewStatistics()

	clean := &Reading{PM2_5SP: 10, PPD0_3: 100}
	s.Update(clean, nil, ValidateReading(clean))

	zero := &Reading{PM2_5SP: 10}
	s.Update(zero, nil, ValidateReading(zero))

	anomalous := &Reading{PM2_5SP: 5000, PPD0_3: 100}
	s.Update(anomalous, nil, ValidateReading(anomalous))

	s.Update(nil, fmt.Errorf("%w: calculated 0x0001, received 0x0002", ErrChecksum), nil)
	s.Update(nil, fmt.Errorf("%w: 17", ErrLength), nil)
	s.Update(nil, fmt.Errorf("%w: got 0x00, want 0x4D", ErrSync), nil)

	if s.TotalFrames != 6 {
		t.Errorf("TotalFrames = %d, want 6", s.TotalFrames)
	}
	if s.ValidFrames != 2 {
		// The zero-count reading still counts as valid; its masses are usable.
		t.Errorf("ValidFrames = %d, want 2", s.ValidFrames)
	}
	if s.ZeroCountReadings != 1 {
		t.Errorf("ZeroCountReadings = %d, want 1", s.ZeroCountReadings)
	}
	if s.AnomalousReadings != 1 {
		t.Errorf("AnomalousReadings = %d, want 1", s.AnomalousReadings)
	}
	if s.ChecksumErrors != 1 || s.LengthErrors != 1 || s.SyncErrors != 1 {
		t.Errorf("error counters = %d/%d/%d, want 1/1/1",
			s.ChecksumErrors, s.LengthErrors, s.SyncErrors)
	}
}

func TestStatistics_IgnoresEmptyUpdate(t *testing.T) {
	s := NewStatistics()
	s.Update(nil, nil, nil)
	if s.TotalFrames != 0 {
		t.Errorf("TotalFrames = %d after empty update", s.TotalFrames)
	}
}

func TestStatistics_Reset(t *testing.T) {
	s := NewStatistics()
	s.Update(nil, ErrSync, nil)
	s.Reset()
	if s.TotalFrames != 0 || s.SyncErrors != 0 {
		t.Errorf("Reset left counters: %+v", s)
	}
}
