// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package clock

import "time"

// Delayer is handed to anything that needs to pause, e.g. sensor bring-up.
type Delayer interface {
	Sleep(d time.Duration)
}

// SleepDelayer sleeps on the Go runtime timer.
type SleepDelayer struct{}

// Sleep implements Delayer.
func (SleepDelayer) Sleep(d time.Duration) {
	time.Sleep(d)
}
