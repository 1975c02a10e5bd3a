// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/garyservin/linka-firmware/pkg/pms"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Config file flag
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "linka",
	Short: "Plantower PMS air quality sensor toolkit",
	Long: `Linka - read, monitor, and report Plantower PMS particulate matter sensors.

Decodes the PMS binary frame protocol over a serial link, manages the
sensor's sleep/warm-up duty cycle to prolong its life, and periodically
uploads readings to a collector over HTTP(S).

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the LINKA_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell
history.`,
	Version: "1.2.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", pms.DefaultBaudRate, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./linka.yaml)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
