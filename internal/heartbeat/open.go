// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package heartbeat

import (
	"fmt"

	"github.com/relabs-tech/orientation_node/internal/config"
)

// Open returns the LED named by the heartbeat backend in cfg.
func Open(cfg *config.Config) (LED, error) {
	switch cfg.HeartbeatBackend {
	case config.HeartbeatPeriph:
		return OpenPeriph(cfg.HeartbeatPin)
	case config.HeartbeatGPIOCdev:
		return OpenGPIOCdev(cfg.HeartbeatPin)
	case config.HeartbeatNone:
		return NopLED{}, nil
	}
	return nil, fmt.Errorf("heartbeat: unknown backend %q", cfg.HeartbeatBackend)
}
