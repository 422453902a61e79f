// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"errors"
	"fmt"
)

// ErrNotReady means the sensor has no new sample since the last read.
var ErrNotReady = errors.New("imu: no new sample")

// AccelSample is one accelerometer reading in g along the chassis axes.
type AccelSample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (s AccelSample) String() string {
	return fmt.Sprintf("x=%.3f y=%.3f z=%.3f", s.X, s.Y, s.Z)
}

// Reader returns the latest acceleration sample. It fails with ErrNotReady
// when no fresh sample is available, or with a wrapped bus error.
type Reader interface {
	ReadAccel() (AccelSample, error)
}
