// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package loop is the node's single scheduling loop: it advances the clock,
// blinks the heartbeat, services the serial link and answers commands.
package loop

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/relabs-tech/orientation_node/internal/clock"
	"github.com/relabs-tech/orientation_node/internal/command"
	"github.com/relabs-tech/orientation_node/internal/heartbeat"
	"github.com/relabs-tech/orientation_node/internal/imu"
	"github.com/relabs-tech/orientation_node/internal/orientation"
	"github.com/relabs-tech/orientation_node/internal/telemetry"
)

// Responses written on the serial link.
const (
	respPong    = "pong"
	respClock   = "rtc: "
	respUnknown = "unknown command"
)

// Publisher receives a Report for every classified sample.
type Publisher interface {
	Publish(telemetry.Report) error
}

// Options wires the loop's collaborators. Clock, Heartbeat and Publisher
// are optional.
type Options struct {
	// Clock is ticked once per Step. Without it the loop paces itself with
	// Delay and there is no heartbeat.
	Clock     *clock.Clock
	Heartbeat *heartbeat.Heartbeat

	Channel   *command.Channel
	Transport command.Transport
	Sensor    imu.Reader
	Publisher Publisher

	Delay        clock.Delayer
	PollInterval time.Duration

	// WatchInterval in milliseconds; the sensor is sampled that often and a
	// Report published whenever the orientation changes. 0 disables it.
	// Without a Clock the sensor is sampled on every Step instead.
	WatchInterval uint64

	// Now stamps Reports with wall time.
	Now func() time.Time
}

// Loop runs one Step per clock tick.
type Loop struct {
	opts Options
	out  []byte

	lastWatch       uint64
	held            imu.AccelSample // taken by watch, not yet reported to the host
	haveHeld        bool
	sampled         bool // sensor read during the current Step
	lastOrientation orientation.Orientation
	haveOrientation bool
	lastPollErr     string
}

// New returns a Loop. Channel, Transport and Sensor are required.
func New(opts Options) *Loop {
	if opts.Delay == nil {
		opts.Delay = clock.SleepDelayer{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Loop{opts: opts, out: make([]byte, 0, 64)}
}

// Run repeats Step until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.Step()
	}
}

// Step runs one iteration: tick, heartbeat, poll, dispatch, watch. The
// sensor is read at most once per Step.
func (l *Loop) Step() {
	if l.opts.Clock != nil {
		l.opts.Clock.Tick()
		if l.opts.Heartbeat != nil {
			if _, err := l.opts.Heartbeat.Update(l.opts.Clock.Millis()); err != nil {
				log.Printf("loop: heartbeat: %v", err)
			}
		}
	} else {
		l.opts.Delay.Sleep(l.opts.PollInterval)
	}
	l.sampled = false

	cmd, ok, err := l.opts.Channel.Poll(l.opts.Transport)
	switch {
	case err != nil:
		// A dead port fails every poll; say so once.
		if msg := err.Error(); msg != l.lastPollErr {
			log.Printf("loop: poll: %v", err)
			l.lastPollErr = msg
		}
	case ok:
		l.lastPollErr = ""
		l.dispatch(cmd)
	default:
		l.lastPollErr = ""
	}

	if !l.sampled {
		l.watch()
	}
}

func (l *Loop) millis() uint64 {
	if l.opts.Clock == nil {
		return 0
	}
	return l.opts.Clock.Millis()
}

func (l *Loop) dispatch(cmd command.Command) {
	switch cmd.Kind {
	case command.Ping:
		l.respond(append(l.out[:0], respPong...))
	case command.ReportClock:
		l.respond(strconv.AppendUint(append(l.out[:0], respClock...), l.millis(), 10))
	case command.ReportOrientation:
		s, ok := l.readForCommand()
		if !ok {
			return
		}
		o := orientation.Classify(s.X, s.Y, s.Z)
		l.respond(append(l.out[:0], o.String()...))
		l.record(o, s)
	default:
		l.respond(append(l.out[:0], respUnknown...))
	}
}

func (l *Loop) respond(line []byte) {
	l.out = append(line, '\n')
	if _, err := l.opts.Transport.Write(l.out); err != nil {
		log.Printf("loop: write: %v", err)
	}
}

// readForCommand answers from a fresh sample, or from the one watch already
// took when the sensor has nothing newer.
func (l *Loop) readForCommand() (imu.AccelSample, bool) {
	s, err := l.opts.Sensor.ReadAccel()
	l.sampled = true
	if errors.Is(err, imu.ErrNotReady) && l.haveHeld {
		l.haveHeld = false
		return l.held, true
	}
	l.haveHeld = false
	if err != nil {
		if !errors.Is(err, imu.ErrNotReady) {
			log.Printf("loop: sensor: %v", err)
		}
		return imu.AccelSample{}, false
	}
	return s, true
}

// read returns a fresh sample. Not-ready is silent; bus errors are logged.
func (l *Loop) read() (imu.AccelSample, bool) {
	s, err := l.opts.Sensor.ReadAccel()
	l.sampled = true
	if err != nil {
		if !errors.Is(err, imu.ErrNotReady) {
			log.Printf("loop: sensor: %v", err)
		}
		return imu.AccelSample{}, false
	}
	return s, true
}

func (l *Loop) watch() {
	if l.opts.WatchInterval == 0 {
		return
	}
	if l.opts.Clock != nil {
		now := l.opts.Clock.Millis()
		if clock.Elapsed(now, l.lastWatch) < l.opts.WatchInterval {
			return
		}
		l.lastWatch = now
	}

	s, ok := l.read()
	if !ok {
		return
	}
	l.held, l.haveHeld = s, true
	o := orientation.Classify(s.X, s.Y, s.Z)
	if l.haveOrientation && o == l.lastOrientation {
		return
	}
	l.record(o, s)
}

func (l *Loop) record(o orientation.Orientation, s imu.AccelSample) {
	l.lastOrientation = o
	l.haveOrientation = true
	if l.opts.Publisher == nil {
		return
	}
	if err := l.opts.Publisher.Publish(telemetry.NewReport(o, s, l.millis(), l.opts.Now())); err != nil {
		log.Printf("loop: publish: %v", err)
	}
}
