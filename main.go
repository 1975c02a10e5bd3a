// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin
//
// Linka - Plantower PMS Air Quality Sensor Toolkit
//
// A CLI tool for reading, monitoring and reporting Plantower PMS
// particulate matter sensors over a serial link.

package main

import (
	"os"

	"github.com/garyservin/linka-firmware/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
