// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/orientation_node/internal/config"
	"github.com/relabs-tech/orientation_node/internal/telemetry"
)

func formatReport(r telemetry.Report) string {
	return fmt.Sprintf(
		"[%s] %-13s ROLL=%6.2f  PITCH=%6.2f  ax=%6.3f ay=%6.3f az=%6.3f  t=%dms",
		r.Time, r.Label, r.Pose.Roll, r.Pose.Pitch, r.Accel.X, r.Accel.Y, r.Accel.Z, r.Millis,
	)
}

// RunMonitor prints every Report published by the node until Ctrl+C.
func RunMonitor(out io.Writer) error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return errors.New("monitor: MQTT_BROKER is not set")
	}

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDMonitor)
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	log.Printf("monitor: connected to MQTT broker at %s", cfg.MQTTBroker)

	err = telemetry.Subscribe(client, cfg.TopicOrientation, func(r telemetry.Report) {
		fmt.Fprintln(out, formatReport(r))
	})
	if err != nil {
		client.Disconnect(250)
		return fmt.Errorf("monitor: %w", err)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("monitor: shutting down")
	client.Disconnect(250)
	return nil
}
