// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyservin/linka-firmware/pkg/dutycycle"
	"github.com/garyservin/linka-firmware/pkg/pms"
	"github.com/garyservin/linka-firmware/pkg/report"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the duty-cycle monitoring daemon",
	Long: `Runs the full station loop: wake the sensor, wait out the warm-up
window, take one reading, put the sensor back to sleep, and upload the
reading to the collector. The cycle repeats at the configured report
period until interrupted.

Settings come from the config file (./linka.yaml or /etc/linka/), the
LINKA_* environment, and the connection flags; flags win. Uploading is
skipped entirely when no collector URL is configured.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	cfg.mergeFlags()

	logger, err := InitLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Sensor.Port == "" {
		return fmt.Errorf("no sensor port configured (use --port or sensor.port)")
	}

	conn, err := OpenSerialConnection(cfg.Sensor.Port, cfg.Sensor.Baud)
	if err != nil {
		return err
	}
	defer conn.Close()

	sensor := pms.NewSensor(conn)

	// Active mode streams frames on its own; in passive mode the
	// controller issues a request-read before each bounded decode.
	passive := cfg.Sensor.Mode == "passive"
	switch cfg.Sensor.Mode {
	case "passive":
		if err := sensor.PassiveMode(); err != nil {
			logger.Warn("passive mode command failed", zap.Error(err))
		}
	default:
		if err := sensor.ActiveMode(); err != nil {
			logger.Warn("active mode command failed", zap.Error(err))
		}
	}

	var publisher dutycycle.Publisher
	if cfg.Collector.URL != "" {
		password := ""
		if cfg.Collector.Username != "" {
			password, err = GetPassword()
			if err != nil {
				return err
			}
		}
		publisher = report.New(report.Config{
			URL:                cfg.Collector.URL,
			Username:           cfg.Collector.Username,
			Password:           password,
			DeviceID:           cfg.Collector.DeviceID,
			Sensor:             cfg.Collector.Sensor,
			Encoding:           report.Encoding(cfg.Collector.Encoding),
			Timeout:            cfg.Collector.Timeout,
			InsecureSkipVerify: cfg.Collector.InsecureSkipVerify,
		})
		logger.Info("collector configured",
			zap.String("url", cfg.Collector.URL),
			zap.String("encoding", cfg.Collector.Encoding),
		)
	} else {
		logger.Info("no collector configured, readings stay local")
	}

	ctrl := dutycycle.New(dutycycle.Config{
		WarmupPeriod: cfg.Sensor.WarmupPeriod,
		ReportPeriod: cfg.Sensor.ReportPeriod,
		ReadTimeout:  cfg.Sensor.ReadTimeout,
		PassiveMode:  passive,
	}, sensor, publisher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("monitor started",
		zap.String("port", cfg.Sensor.Port),
		zap.Duration("warmup", cfg.Sensor.WarmupPeriod),
		zap.Duration("report_period", cfg.Sensor.ReportPeriod),
	)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			// Leave the sensor asleep so the fan is not running unattended.
			if err := sensor.Sleep(); err != nil {
				logger.Warn("sleep command failed on shutdown", zap.Error(err))
			}
			return nil
		case now := <-ticker.C:
			ctrl.Tick(now)
		}
	}
}
