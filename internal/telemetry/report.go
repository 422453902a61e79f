// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry carries orientation reports from the node to MQTT
// subscribers (web front end, OLED display).
package telemetry

import (
	"time"

	"github.com/relabs-tech/orientation_node/internal/imu"
	"github.com/relabs-tech/orientation_node/internal/orientation"
)

// Report is the JSON payload published for each classified sample.
type Report struct {
	Orientation orientation.Orientation `json:"orientation"`
	Label       string                  `json:"label"`
	Accel       imu.AccelSample         `json:"accel"`
	Pose        orientation.Pose        `json:"pose"`
	Millis      uint64                  `json:"millis"` // node clock, 0 without one
	Time        string                  `json:"time"`   // RFC3339
}

// NewReport fills a Report from one sample and its classification.
func NewReport(o orientation.Orientation, s imu.AccelSample, millis uint64, now time.Time) Report {
	return Report{
		Orientation: o,
		Label:       o.String(),
		Accel:       s,
		Pose:        orientation.ComputePoseFromAccel(s.X, s.Y, s.Z),
		Millis:      millis,
		Time:        now.Format(time.RFC3339),
	}
}
