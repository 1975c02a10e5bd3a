// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package pms

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks frame decode outcomes and error rates for the live
// monitoring commands.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames       uint64
	ValidFrames       uint64
	ChecksumErrors    uint64
	SyncErrors        uint64
	LengthErrors      uint64
	ZeroCountReadings uint64
	AnomalousReadings uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one decode outcome: a completed reading, a decode error,
// or a reading with validation anomalies.
func (s *Statistics) Update(r *Reading, decodeErr error, validationErrors []ValidationError) {
	if r == nil && decodeErr == nil {
		return
	}
	s.TotalFrames++

	if decodeErr != nil {
		switch {
		case errors.Is(decodeErr, ErrChecksum):
			s.ChecksumErrors++
		case errors.Is(decodeErr, ErrLength):
			s.LengthErrors++
		default:
			s.SyncErrors++
		}
		return
	}

	anomalous := false
	for _, verr := range validationErrors {
		switch verr.Type {
		case AnomalyZeroCounts:
			s.ZeroCountReadings++
		default:
			anomalous = true
		}
	}
	if anomalous {
		s.AnomalousReadings++
	} else {
		s.ValidFrames++
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		errorCount := s.ChecksumErrors + s.SyncErrors + s.LengthErrors + s.AnomalousReadings
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)

	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d\n", s.ChecksumErrors)
	}
	if s.SyncErrors > 0 {
		result += fmt.Sprintf("Sync Errors:     %8d\n", s.SyncErrors)
	}
	if s.LengthErrors > 0 {
		result += fmt.Sprintf("Length Errors:   %8d\n", s.LengthErrors)
	}
	if s.ZeroCountReadings > 0 {
		result += fmt.Sprintf("Zero-Count Reads:%8d\n", s.ZeroCountReadings)
	}
	if s.AnomalousReadings > 0 {
		result += fmt.Sprintf("Anomalous Reads: %8d\n", s.AnomalousReadings)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	*s = Statistics{StartTime: now, LastUpdateTime: now}
}
