// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyservin/linka-firmware/pkg/pms"
)

var sensorReadTimeout time.Duration

var sensorCmd = &cobra.Command{
	Use:   "sensor",
	Short: "Send a single control command to the sensor",
	Long: `Sends one control frame to the sensor and exits.

Subcommands:
  sleep    Put the sensor into standby (fan and laser off)
  wake     Wake the sensor from standby
  active   Switch to active mode (sensor streams frames continuously)
  passive  Switch to passive mode (frames sent only on request)
  read     Request one frame (passive mode) and print it`,
}

var sensorSleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Put the sensor into standby",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSensor(func(s *pms.Sensor) error {
			if err := s.Sleep(); err != nil {
				return err
			}
			fmt.Println("Sleep command sent")
			return nil
		})
	},
}

var sensorWakeCmd = &cobra.Command{
	Use:   "wake",
	Short: "Wake the sensor from standby",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSensor(func(s *pms.Sensor) error {
			if err := s.WakeUp(); err != nil {
				return err
			}
			fmt.Println("Wake command sent (allow ~30s warm-up before trusting data)")
			return nil
		})
	},
}

var sensorActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Switch the sensor to active (streaming) mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSensor(func(s *pms.Sensor) error {
			if err := s.ActiveMode(); err != nil {
				return err
			}
			fmt.Println("Active mode command sent")
			return nil
		})
	},
}

var sensorPassiveCmd = &cobra.Command{
	Use:   "passive",
	Short: "Switch the sensor to passive (on-request) mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSensor(func(s *pms.Sensor) error {
			if err := s.PassiveMode(); err != nil {
				return err
			}
			fmt.Println("Passive mode command sent")
			return nil
		})
	},
}

var sensorReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Request and print one reading (passive mode)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSensor(func(s *pms.Sensor) error {
			if err := s.RequestRead(); err != nil {
				return err
			}
			r, err := s.ReadUntil(sensorReadTimeout)
			if errors.Is(err, pms.ErrReadTimeout) {
				return fmt.Errorf("no frame received within %s", sensorReadTimeout)
			}
			if err != nil {
				return err
			}
			fmt.Println(pms.FormatReading(r))
			return nil
		})
	},
}

func init() {
	sensorReadCmd.Flags().DurationVar(&sensorReadTimeout, "timeout", 3*time.Second, "How long to wait for the frame")

	sensorCmd.AddCommand(sensorSleepCmd)
	sensorCmd.AddCommand(sensorWakeCmd)
	sensorCmd.AddCommand(sensorActiveCmd)
	sensorCmd.AddCommand(sensorPassiveCmd)
	sensorCmd.AddCommand(sensorReadCmd)
	rootCmd.AddCommand(sensorCmd)
}

// withSensor opens the connection, runs fn against the sensor, and closes.
func withSensor(fn func(*pms.Sensor) error) error {
	conn, desc, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Connected: %s\n", desc)
	return fn(pms.NewSensor(conn))
}
