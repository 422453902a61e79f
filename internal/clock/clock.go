// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package clock provides the node's monotonic millisecond counter.
//
// The counter only advances when Tick is called, one step per period of the
// underlying TickSource. If the loop falls behind the source, Millis falls
// behind wall-clock time; nothing tries to catch up.
package clock

import "time"

// TickPeriod is the period of one tick. Millis is derived 1:1 from ticks.
const TickPeriod = time.Millisecond

// TickSource blocks until the next timer period has elapsed.
type TickSource interface {
	Wait()
}

// Clock counts ticks of a TickSource.
type Clock struct {
	src    TickSource
	millis uint64
}

// New returns a Clock at zero driven by src.
func New(src TickSource) *Clock {
	return &Clock{src: src}
}

// Tick waits for the next period and advances the counter by exactly one.
func (c *Clock) Tick() {
	c.src.Wait()
	c.millis++
}

// Millis returns the current counter value.
func (c *Clock) Millis() uint64 {
	return c.millis
}

// Elapsed returns now - since. Unsigned subtraction keeps this correct
// across a counter wrap.
func Elapsed(now, since uint64) uint64 {
	return now - since
}

// TickerSource is a TickSource backed by time.Ticker.
type TickerSource struct {
	t *time.Ticker
}

// NewTickerSource starts a ticker firing every period.
func NewTickerSource(period time.Duration) *TickerSource {
	return &TickerSource{t: time.NewTicker(period)}
}

// Wait blocks until the ticker fires.
func (s *TickerSource) Wait() {
	<-s.t.C
}

// Stop releases the ticker.
func (s *TickerSource) Stop() {
	s.t.Stop()
}
