// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build linux

package heartbeat

import (
	"fmt"
	"path/filepath"

	"github.com/warthog618/go-gpiocdev"
)

const cdevConsumer = "orientation-heartbeat"

type cdevLED struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// chipPaths lists the GPIO character devices in dir, each once.
func chipPaths(dir string) []string {
	paths, err := filepath.Glob(filepath.Join(dir, "gpiochip*"))
	if err != nil {
		return nil
	}
	return paths
}

// OpenGPIOCdev drives the named line (e.g. "GPIO17") through the Linux GPIO
// character device. The first chip that has the line wins.
func OpenGPIOCdev(name string) (LED, error) {
	paths := chipPaths("/dev")
	if len(paths) == 0 {
		return nil, fmt.Errorf("heartbeat: no gpiochip devices in /dev")
	}

	var lastErr error
	for _, path := range paths {
		led, err := requestLED(path, name)
		if err == nil {
			return led, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("heartbeat: gpio line %q: %w", name, lastErr)
}

func requestLED(path, name string) (*cdevLED, error) {
	chip, err := gpiocdev.NewChip(path, gpiocdev.WithConsumer(cdevConsumer))
	if err != nil {
		return nil, err
	}
	offset, err := chip.FindLine(name)
	if err == nil {
		var line *gpiocdev.Line
		line, err = chip.RequestLine(offset, gpiocdev.AsOutput(0))
		if err == nil {
			return &cdevLED{chip: chip, line: line}, nil
		}
	}
	chip.Close()
	return nil, fmt.Errorf("%s: %w", path, err)
}

func (l *cdevLED) Set(on bool) error {
	if on {
		return l.line.SetValue(1)
	}
	return l.line.SetValue(0)
}

func (l *cdevLED) Close() error {
	l.line.SetValue(0)
	err := l.line.Close()
	if cerr := l.chip.Close(); err == nil {
		err = cerr
	}
	return err
}
