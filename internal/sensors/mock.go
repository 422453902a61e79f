// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/orientation_node/internal/imu"
)

// faces is the gravity vector (in g) seen on each chassis face, in the order
// the mock walks through them.
var faces = []imu.AccelSample{
	{Z: 1},  // right side up
	{X: 1},  // USB up
	{Y: 1},  // LED up
	{Z: -1}, // upside down
	{X: -1}, // USB down
	{Y: -1}, // power LED up
}

type mockSource struct {
	start time.Time
	dwell time.Duration
	now   func() time.Time
}

// NewMockSource creates a sensor that rests on each face of the board for
// dwell, with a small wobble, then turns to the next one.
func NewMockSource(dwell time.Duration) imu.Reader {
	return newMockSource(dwell, time.Now)
}

func newMockSource(dwell time.Duration, now func() time.Time) *mockSource {
	if dwell <= 0 {
		dwell = 5 * time.Second
	}
	return &mockSource{start: now(), dwell: dwell, now: now}
}

func (m *mockSource) ReadAccel() (imu.AccelSample, error) {
	elapsed := m.now().Sub(m.start)
	face := faces[int(elapsed/m.dwell)%len(faces)]
	t := elapsed.Seconds()

	return imu.AccelSample{
		X: face.X + 0.05*math.Sin(t),
		Y: face.Y + 0.05*math.Cos(t*0.7),
		Z: face.Z + 0.05*math.Sin(t*1.3),
	}, nil
}
