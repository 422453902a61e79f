// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build !linux

package heartbeat

import "fmt"

func OpenGPIOCdev(name string) (LED, error) {
	return nil, fmt.Errorf("heartbeat: gpiocdev backend needs linux (line %q)", name)
}
