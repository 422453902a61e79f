// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package heartbeat

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type periphLED struct {
	pin gpio.PinIO
}

// OpenPeriph drives the named pin through periph's GPIO registry.
func OpenPeriph(name string) (LED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("heartbeat: periph host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("heartbeat: pin %q not found", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("heartbeat: pin %s as output: %w", name, err)
	}
	return &periphLED{pin: pin}, nil
}

func (l *periphLED) Set(on bool) error {
	return l.pin.Out(gpio.Level(on))
}

func (l *periphLED) Close() error {
	if err := l.pin.Out(gpio.Low); err != nil {
		return err
	}
	return l.pin.Halt()
}
