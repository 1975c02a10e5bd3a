// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

// Package dutycycle manages the sensor's sleep/warm-up/ready cycle.
//
// The sensor's laser and fan wear under continuous load; sleeping between
// reports extends service life, but data is only trustworthy after a
// warm-up window, hence the explicit WakingUp state between Asleep and
// Ready. The controller owns every piece of mutable state (power state,
// latest-reading snapshot) and is driven by a single caller through Tick;
// it is not safe for concurrent use and does not need to be.
package dutycycle

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/garyservin/linka-firmware/pkg/pms"
)

// State is the sensor power state.
type State int

const (
	// StateAsleep means the sensor has been commanded into standby.
	StateAsleep State = iota
	// StateWakingUp means the sensor is powered but its fan has not run
	// long enough for data to be trustworthy.
	StateWakingUp
	// StateReady means readings may be taken.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateAsleep:
		return "asleep"
	case StateWakingUp:
		return "waking-up"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Default cycle timing, from the original deployment configuration.
const (
	DefaultWarmupPeriod = 30 * time.Second
	DefaultReportPeriod = 120 * time.Second
	DefaultReadTimeout  = time.Second
)

// Sensor is the slice of the sensor surface the controller drives.
// *pms.Sensor satisfies it.
type Sensor interface {
	Sleep() error
	WakeUp() error
	RequestRead() error
	ReadUntil(timeout time.Duration) (*pms.Reading, error)
}

// Snapshot is the controller's public view of the latest data: the
// retained reading plus whether its count bins come from a real
// (non-degenerate) count measurement.
type Snapshot struct {
	Reading     pms.Reading
	CountsValid bool
}

// Publisher receives one snapshot per completed report cycle. Failures are
// logged and dropped; the next cycle supersedes any lost report.
type Publisher interface {
	Publish(snap Snapshot, timestamp time.Time) error
}

// Config holds the cycle timing. Warmup must be shorter than the report
// period; zero values fall back to the defaults.
type Config struct {
	WarmupPeriod time.Duration
	ReportPeriod time.Duration
	ReadTimeout  time.Duration

	// PassiveMode means the sensor only emits a frame on request, so the
	// controller issues a request-read before every bounded decode.
	PassiveMode bool
}

func (c *Config) applyDefaults() {
	if c.WarmupPeriod <= 0 {
		c.WarmupPeriod = DefaultWarmupPeriod
	}
	if c.ReportPeriod <= 0 {
		c.ReportPeriod = DefaultReportPeriod
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
}

// Controller owns the duty-cycle state machine and the latest-reading
// snapshot. All fields are mutated only from Tick.
type Controller struct {
	cfg       Config
	sensor    Sensor
	publisher Publisher
	logger    *zap.Logger

	state      State
	stateStart time.Time
	started    bool

	// wallClock supplies the publish timestamp; the now passed to Tick is
	// only ever compared, never formatted.
	wallClock func() time.Time

	latest          pms.Reading
	hasReading      bool
	hasCountReading bool
}

// New creates a controller in the WakingUp state: at startup the sensor is
// assumed cold and must warm up before the first reading. The publisher
// may be nil, in which case readings only update the snapshot. A nil
// logger disables logging.
func New(cfg Config, sensor Sensor, publisher Publisher, logger *zap.Logger) *Controller {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		cfg:       cfg,
		sensor:    sensor,
		publisher: publisher,
		logger:    logger,
		state:     StateWakingUp,
		wallClock: time.Now,
	}
}

// State returns the current power state.
func (c *Controller) State() State { return c.state }

// Snapshot returns the latest retained reading. The second return is false
// until the first successful decode.
func (c *Controller) Snapshot() (Snapshot, bool) {
	return Snapshot{Reading: c.latest, CountsValid: c.hasCountReading}, c.hasReading
}

// Tick advances the state machine. now must come from a monotonic clock;
// it is only used for elapsed-time comparisons. Each call performs at most
// one bounded blocking operation (the decode attempt in Ready).
func (c *Controller) Tick(now time.Time) {
	if !c.started {
		c.started = true
		c.stateStart = now
		// Cold start: the sensor may still be asleep from a previous run.
		if err := c.sensor.WakeUp(); err != nil {
			c.logger.Warn("wake command failed", zap.Error(err))
		}
	}

	switch c.state {
	case StateAsleep:
		if now.Sub(c.stateStart) >= c.cfg.ReportPeriod-c.cfg.WarmupPeriod {
			if err := c.sensor.WakeUp(); err != nil {
				c.logger.Warn("wake command failed", zap.Error(err))
			}
			c.setState(StateWakingUp, now)
		}

	case StateWakingUp:
		if now.Sub(c.stateStart) >= c.cfg.WarmupPeriod {
			c.setState(StateReady, now)
		}

	case StateReady:
		if c.cfg.PassiveMode {
			if err := c.sensor.RequestRead(); err != nil {
				c.logger.Warn("request-read command failed", zap.Error(err))
			}
		}
		r, err := c.sensor.ReadUntil(c.cfg.ReadTimeout)
		if err != nil {
			if errors.Is(err, pms.ErrReadTimeout) {
				// Expected and benign: no complete frame within the window.
				// Stay in Ready and retry next tick.
				c.logger.Debug("no frame this tick")
			} else {
				// The stream itself failed; keep retrying but say so.
				c.logger.Warn("sensor stream error", zap.Error(err))
			}
			return
		}

		c.adopt(r)
		if err := c.sensor.Sleep(); err != nil {
			c.logger.Warn("sleep command failed", zap.Error(err))
		}
		c.setState(StateAsleep, now)
		c.publish()
	}
}

func (c *Controller) setState(next State, now time.Time) {
	c.logger.Info("state transition",
		zap.Stringer("from", c.state),
		zap.Stringer("to", next),
	)
	c.state = next
	c.stateStart = now
}

// adopt merges a decoded reading into the snapshot. Mass concentrations
// are taken unconditionally; the six count bins are taken atomically and
// only when non-degenerate, so an all-zero count read never clobbers the
// last known real bins.
func (c *Controller) adopt(r *pms.Reading) {
	c.latest.PM1_0SP = r.PM1_0SP
	c.latest.PM2_5SP = r.PM2_5SP
	c.latest.PM10SP = r.PM10SP
	c.latest.PM1_0AE = r.PM1_0AE
	c.latest.PM2_5AE = r.PM2_5AE
	c.latest.PM10AE = r.PM10AE
	c.latest.Timestamp = r.Timestamp
	c.hasReading = true

	if r.HasCounts() {
		c.latest.PPD0_3 = r.PPD0_3
		c.latest.PPD0_5 = r.PPD0_5
		c.latest.PPD1_0 = r.PPD1_0
		c.latest.PPD2_5 = r.PPD2_5
		c.latest.PPD5_0 = r.PPD5_0
		c.latest.PPD10 = r.PPD10
		c.hasCountReading = true
	} else {
		c.logger.Debug("degenerate zero-count read, keeping previous bins")
	}

	c.logger.Info("reading taken",
		zap.Uint16("pm1_0", c.latest.PM1_0SP),
		zap.Uint16("pm2_5", c.latest.PM2_5SP),
		zap.Uint16("pm10", c.latest.PM10SP),
		zap.Bool("counts_valid", c.hasCountReading),
	)
}

func (c *Controller) publish() {
	if c.publisher == nil {
		return
	}
	snap, _ := c.Snapshot()
	ts := c.wallClock()
	if err := c.publisher.Publish(snap, ts); err != nil {
		// No retry, no queue: the next report cycle supersedes this one.
		c.logger.Error("publish failed", zap.Error(err))
		return
	}
	c.logger.Info("reading published", zap.Time("timestamp", ts))
}
