// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/orientation_node/internal/clock"
	"github.com/relabs-tech/orientation_node/internal/command"
	"github.com/relabs-tech/orientation_node/internal/config"
	"github.com/relabs-tech/orientation_node/internal/heartbeat"
	"github.com/relabs-tech/orientation_node/internal/imu"
	"github.com/relabs-tech/orientation_node/internal/loop"
	"github.com/relabs-tech/orientation_node/internal/sensors"
	"github.com/relabs-tech/orientation_node/internal/serialport"
	"github.com/relabs-tech/orientation_node/internal/telemetry"
)

// nodeParts are the already-opened collaborators of the control loop.
type nodeParts struct {
	transport command.Transport
	sensor    imu.Reader
	led       heartbeat.LED
	ticks     clock.TickSource
	publisher loop.Publisher
	delay     clock.Delayer
}

// newNodeLoop applies the configuration to the loop options.
func newNodeLoop(cfg *config.Config, p nodeParts) *loop.Loop {
	opts := loop.Options{
		Transport:     p.transport,
		Sensor:        p.sensor,
		Publisher:     p.publisher,
		Delay:         p.delay,
		PollInterval:  time.Duration(cfg.PollInterval) * time.Millisecond,
		WatchInterval: uint64(cfg.WatchInterval),
	}

	chOpts := command.Options{MaxLine: cfg.SerialMaxLine}
	if cfg.LineMode == config.LineModeSingle {
		chOpts.Mode = command.SingleShot
	}

	if cfg.ClockEnabled {
		opts.Clock = clock.New(p.ticks)
		opts.Heartbeat = heartbeat.New(p.led, uint64(cfg.HeartbeatInterval))
		chOpts.Vocabulary = command.DefaultVocabulary()
	} else {
		chOpts.Vocabulary = command.DefaultVocabulary().WithoutClock()
	}
	opts.Channel = command.NewChannel(chOpts)

	return loop.New(opts)
}

// RunNode opens the hardware named in the configuration and runs the control
// loop until SIGINT or SIGTERM.
func RunNode() error {
	cfg := config.Get()
	delay := clock.SleepDelayer{}

	sensor, sensorCloser, err := sensors.Open(cfg, delay)
	if err != nil {
		return fmt.Errorf("node: sensor: %w", err)
	}
	defer sensorCloser.Close()
	log.Printf("node: sensor %s ready", cfg.Sensor)

	port, err := serialport.Open(cfg.SerialPort, cfg.SerialBaudRate)
	if err != nil {
		return fmt.Errorf("node: %w", err)
	}
	link := serialport.NewShared(port, 0)
	defer link.Close()
	log.Printf("node: serial link on %s at %d baud (%s lines)", cfg.SerialPort, cfg.SerialBaudRate, cfg.LineMode)

	parts := nodeParts{
		transport: link,
		sensor:    sensor,
		led:       heartbeat.NopLED{},
		delay:     delay,
	}

	if cfg.ClockEnabled {
		led, err := heartbeat.Open(cfg)
		if err != nil {
			return fmt.Errorf("node: %w", err)
		}
		defer led.Close()
		parts.led = led

		ticker := clock.NewTickerSource(clock.TickPeriod)
		defer ticker.Stop()
		parts.ticks = ticker
		log.Printf("node: clock running, heartbeat on %s every %d ms", cfg.HeartbeatPin, cfg.HeartbeatInterval)
	} else {
		log.Printf("node: no clock, polling every %d ms", cfg.PollInterval)
	}

	if cfg.MQTTBroker != "" {
		client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDNode)
		if err != nil {
			return fmt.Errorf("node: %w", err)
		}
		pub := telemetry.NewPublisher(client, cfg.TopicOrientation)
		defer pub.Close()
		parts.publisher = pub
		log.Printf("node: publishing reports to %s on %s", cfg.TopicOrientation, cfg.MQTTBroker)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("node: control loop started")
	err = newNodeLoop(cfg, parts).Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Println("node: shutting down")
		if n := link.Dropped(); n > 0 {
			log.Printf("node: %d received bytes were dropped on overflow", n)
		}
		return nil
	}
	return err
}
