// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/garyservin/linka-firmware/pkg/pms"
)

// SensorConfig holds the sensor connection and cycle timing settings.
type SensorConfig struct {
	Port string `mapstructure:"port"`
	Baud int    `mapstructure:"baud"`

	// Mode selects "active" (sensor streams frames) or "passive"
	// (frames are requested one at a time).
	Mode string `mapstructure:"mode"`

	WarmupPeriod time.Duration `mapstructure:"warmup_period"`
	ReportPeriod time.Duration `mapstructure:"report_period"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
}

// CollectorConfig holds the upload endpoint settings.
type CollectorConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	DeviceID string `mapstructure:"device_id"`
	Sensor   string `mapstructure:"sensor"`

	// Encoding is "json" or "cbor".
	Encoding string `mapstructure:"encoding"`

	Timeout            time.Duration `mapstructure:"timeout"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
}

// LumberjackConfig holds log file rotation settings.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig holds the log level, format and optional file output.
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`  // debug, info, warn, error
	Format string           `mapstructure:"format"` // json or console
	File   LumberjackConfig `mapstructure:"file"`
}

// AppConfig is the full monitor daemon configuration.
type AppConfig struct {
	Sensor    SensorConfig    `mapstructure:"sensor"`
	Collector CollectorConfig `mapstructure:"collector"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// LoadConfig reads the optional config file and environment overrides.
// Environment variables use the LINKA_ prefix with underscores, e.g.
// LINKA_SENSOR_PORT or LINKA_COLLECTOR_URL. A missing config file is not
// an error; everything has a default or a flag.
func LoadConfig() (*AppConfig, error) {
	v := viper.New()

	// Defaults match the original deployment configuration.
	v.SetDefault("sensor.baud", pms.DefaultBaudRate)
	v.SetDefault("sensor.mode", "active")
	v.SetDefault("sensor.warmup_period", 30*time.Second)
	v.SetDefault("sensor.report_period", 120*time.Second)
	v.SetDefault("sensor.read_timeout", time.Second)

	v.SetDefault("collector.sensor", "PMS7003")
	v.SetDefault("collector.encoding", "json")
	v.SetDefault("collector.timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.max_size", 10)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age", 28)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("linka")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/linka")
	}

	v.SetEnvPrefix("LINKA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit --config that
		// cannot be read, or a malformed file, is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Sensor.Mode {
	case "active", "passive":
	default:
		return fmt.Errorf("invalid sensor mode %q (use active or passive)", c.Sensor.Mode)
	}

	switch c.Collector.Encoding {
	case "json", "cbor":
	default:
		return fmt.Errorf("invalid collector encoding %q (use json or cbor)", c.Collector.Encoding)
	}

	if c.Sensor.WarmupPeriod >= c.Sensor.ReportPeriod {
		return fmt.Errorf("warmup period (%s) must be shorter than report period (%s)",
			c.Sensor.WarmupPeriod, c.Sensor.ReportPeriod)
	}
	return nil
}

// mergeFlags lets command-line connection flags override the file/env
// configuration; flags win because they are the most explicit.
func (c *AppConfig) mergeFlags() {
	if portName != "" {
		c.Sensor.Port = portName
	}
	if baudRate != 0 && baudRate != pms.DefaultBaudRate {
		c.Sensor.Baud = baudRate
	}
	if c.Sensor.Baud == 0 {
		c.Sensor.Baud = pms.DefaultBaudRate
	}
}
