// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

// Package report uploads decoded readings to a remote collector over
// HTTP(S).
package report

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/garyservin/linka-firmware/pkg/dutycycle"
)

// TimestampLayout is the collector's wall-clock timestamp format.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Encoding selects the report body encoding.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingCBOR Encoding = "cbor"
)

// Payload is the wire shape of one report.
type Payload struct {
	ID         string `json:"id" cbor:"id"`
	DeviceID   string `json:"deviceId" cbor:"deviceId"`
	Sensor     string `json:"sensor" cbor:"sensor"`
	RecordedAt string `json:"recordedAt" cbor:"recordedAt"`

	PM1_0SP uint16 `json:"pm1dot0" cbor:"pm1dot0"`
	PM2_5SP uint16 `json:"pm2dot5" cbor:"pm2dot5"`
	PM10SP  uint16 `json:"pm10" cbor:"pm10"`

	PM1_0AE uint16 `json:"pm1dot0Atm" cbor:"pm1dot0Atm"`
	PM2_5AE uint16 `json:"pm2dot5Atm" cbor:"pm2dot5Atm"`
	PM10AE  uint16 `json:"pm10Atm" cbor:"pm10Atm"`

	PPD0_3 uint16 `json:"count0dot3" cbor:"count0dot3"`
	PPD0_5 uint16 `json:"count0dot5" cbor:"count0dot5"`
	PPD1_0 uint16 `json:"count1dot0" cbor:"count1dot0"`
	PPD2_5 uint16 `json:"count2dot5" cbor:"count2dot5"`
	PPD5_0 uint16 `json:"count5dot0" cbor:"count5dot0"`
	PPD10  uint16 `json:"count10" cbor:"count10"`

	CountsValid bool `json:"countsValid" cbor:"countsValid"`
}

// Config configures the collector client.
type Config struct {
	// URL is the collector endpoint readings are POSTed to.
	URL string

	// Username/Password enable HTTP Basic auth when both are set.
	Username string
	Password string

	// DeviceID identifies this station; Sensor names the sensor model.
	DeviceID string
	Sensor   string

	// Encoding selects the body encoding, EncodingJSON by default.
	Encoding Encoding

	// Timeout bounds one upload end to end.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// Publisher posts readings to the collector. It implements
// dutycycle.Publisher.
type Publisher struct {
	cfg    Config
	client *http.Client
}

// New creates a collector client from cfg.
func New(cfg Config) *Publisher {
	if cfg.Encoding == "" {
		cfg.Encoding = EncodingJSON
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	transport := &http.Transport{}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Publisher{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// Publish uploads one snapshot. A non-2xx response is an error; the caller
// decides whether to care (the duty-cycle controller logs and moves on).
func (p *Publisher) Publish(snap dutycycle.Snapshot, timestamp time.Time) error {
	payload := p.buildPayload(snap, timestamp)

	var (
		body        []byte
		contentType string
		err         error
	)
	switch p.cfg.Encoding {
	case EncodingCBOR:
		body, err = cbor.Marshal(payload)
		contentType = "application/cbor"
	default:
		body, err = json.Marshal(payload)
		contentType = "application/json"
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if p.cfg.Username != "" && p.cfg.Password != "" {
		req.SetBasicAuth(p.cfg.Username, p.cfg.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector returned %s", resp.Status)
	}
	return nil
}

func (p *Publisher) buildPayload(snap dutycycle.Snapshot, timestamp time.Time) Payload {
	r := snap.Reading
	return Payload{
		ID:         uuid.NewString(),
		DeviceID:   p.cfg.DeviceID,
		Sensor:     p.cfg.Sensor,
		RecordedAt: timestamp.UTC().Format(TimestampLayout),

		PM1_0SP: r.PM1_0SP,
		PM2_5SP: r.PM2_5SP,
		PM10SP:  r.PM10SP,

		PM1_0AE: r.PM1_0AE,
		PM2_5AE: r.PM2_5AE,
		PM10AE:  r.PM10AE,

		PPD0_3: r.PPD0_3,
		PPD0_5: r.PPD0_5,
		PPD1_0: r.PPD1_0,
		PPD2_5: r.PPD2_5,
		PPD5_0: r.PPD5_0,
		PPD10:  r.PPD10,

		CountsValid: snap.CountsValid,
	}
}
