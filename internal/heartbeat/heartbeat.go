// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package heartbeat blinks an indicator while the control loop is alive.
package heartbeat

import (
	"github.com/relabs-tech/orientation_node/internal/clock"
)

// DefaultInterval is the toggle period in milliseconds.
const DefaultInterval = 500

// LED is a single on/off indicator.
type LED interface {
	Set(on bool) error
	Close() error
}

// Heartbeat owns the last-toggle timestamp and the LED level.
type Heartbeat struct {
	led      LED
	interval uint64
	last     uint64
	on       bool
}

// New returns a Heartbeat with the LED off and the last toggle at 0.
func New(led LED, interval uint64) *Heartbeat {
	if interval == 0 {
		interval = DefaultInterval
	}
	return &Heartbeat{led: led, interval: interval}
}

// Update toggles the LED once more than the interval has elapsed since the
// last toggle, and records now as the new toggle time. The timestamp moves
// even when driving the LED fails, so a broken pin is reported once per
// interval rather than on every tick.
func (h *Heartbeat) Update(now uint64) (bool, error) {
	if clock.Elapsed(now, h.last) <= h.interval {
		return false, nil
	}
	h.last = now
	h.on = !h.on
	return true, h.led.Set(h.on)
}

// Last returns the time of the last toggle.
func (h *Heartbeat) Last() uint64 { return h.last }

// On reports the current LED level.
func (h *Heartbeat) On() bool { return h.on }

// NopLED is used when no indicator is wired.
type NopLED struct{}

func (NopLED) Set(bool) error { return nil }
func (NopLED) Close() error   { return nil }
