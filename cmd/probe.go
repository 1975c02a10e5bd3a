// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyservin/linka-firmware/pkg/pms"
)

var (
	probeTimeout int
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test the connection by waiting for one valid frame",
	Long: `Wait for a valid PMS data frame on the connection until timeout.

This command connects to a serial port or WebSocket bridge and waits for
a complete frame that passes the checksum. Invalid bytes are skipped.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for checking wiring and baud rate before running the monitor. If
the sensor was left asleep, run 'linka sensor wake' first.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runProbe(cmd *cobra.Command, args []string) error {
	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Linka - Sensor Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for valid frame...\n\n")

	decoder := pms.NewDecoder()
	buf := make([]byte, 128)

	// Channel for frame reception
	readingChan := make(chan *pms.Reading, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		invalidBytes := 0
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			if n == 0 {
				time.Sleep(10 * time.Millisecond)
				continue
			}

			for i := 0; i < n; i++ {
				r, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					// Ignore decode errors, just count invalid bytes
					invalidBytes++
					continue
				}
				if r != nil {
					if invalidBytes > 0 {
						fmt.Printf("(skipped %d invalid bytes before sync)\n", invalidBytes)
					}
					readingChan <- r
					return
				}
			}
		}
	}()

	// Wait for frame or timeout
	select {
	case r := <-readingChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  PM1.0: %d ug/m3  PM2.5: %d ug/m3  PM10: %d ug/m3\n",
			r.PM1_0SP, r.PM2_5SP, r.PM10SP)
		if r.HasCounts() {
			fmt.Printf("  Counts reported: yes (13-word frame)\n")
		} else {
			fmt.Printf("  Counts reported: no\n")
		}
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(probeTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", probeTimeout)
		os.Exit(1)
	}

	return nil
}
