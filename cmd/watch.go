// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyservin/linka-firmware/pkg/pms"
)

var (
	watchShowErrors    bool
	watchStatsInterval time.Duration
	watchCount         int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream decoded readings to the terminal",
	Long: `Connects to the sensor and prints every decoded reading. The sensor
is left in whatever power/mode state it is in; use 'linka sensor wake'
first if it has been put to sleep.

With --stats, a decode statistics summary is printed at the given
interval. With --count, the command exits after that many readings.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchShowErrors, "show-errors", false, "Print decode errors as they occur")
	watchCmd.Flags().DurationVar(&watchStatsInterval, "stats", 0, "Print statistics at this interval (0 disables)")
	watchCmd.Flags().IntVarP(&watchCount, "count", "n", 0, "Exit after this many readings (0 = run forever)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	conn, desc, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Connected: %s\n", desc)
	fmt.Println("Watching for readings (Ctrl-C to stop)...")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dec := pms.NewDecoder()
	stats := pms.NewStatistics()

	var lastStats time.Time
	if watchStatsInterval > 0 {
		lastStats = time.Now()
	}

	readings := 0
	buf := make([]byte, 256)

	for {
		select {
		case <-ctx.Done():
			if watchStatsInterval > 0 {
				fmt.Println()
				fmt.Print(stats.String())
			}
			return nil
		default:
		}

		n, err := conn.Read(buf)
		if err != nil && err != io.EOF {
			return fmt.Errorf("read failed: %v", err)
		}
		if n == 0 {
			// Serial read timeout or empty poll; yield briefly.
			time.Sleep(10 * time.Millisecond)
			continue
		}

		for _, b := range buf[:n] {
			r, derr := dec.DecodeByte(b)

			var verrs []pms.ValidationError
			if r != nil {
				verrs = pms.ValidateReading(r)
			}
			stats.Update(r, derr, verrs)

			if derr != nil && watchShowErrors {
				fmt.Printf("decode error: %v\n", derr)
			}
			if r == nil {
				continue
			}

			fmt.Println(pms.FormatReading(r))
			for _, verr := range verrs {
				fmt.Printf("  anomaly: %s\n", verr.Message)
			}
			fmt.Println()

			readings++
			if watchCount > 0 && readings >= watchCount {
				if watchStatsInterval > 0 {
					fmt.Print(stats.String())
				}
				return nil
			}
		}

		if watchStatsInterval > 0 && time.Since(lastStats) >= watchStatsInterval {
			fmt.Print(stats.String())
			lastStats = time.Now()
		}
	}
}
