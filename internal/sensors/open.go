// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/relabs-tech/orientation_node/internal/clock"
	"github.com/relabs-tech/orientation_node/internal/config"
	"github.com/relabs-tech/orientation_node/internal/imu"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open brings up the accelerometer named by cfg.Sensor. The returned Closer
// releases whatever bus the sensor holds.
func Open(cfg *config.Config, delay clock.Delayer) (imu.Reader, io.Closer, error) {
	switch cfg.Sensor {
	case config.SensorLSM6DS33:
		if _, err := host.Init(); err != nil {
			return nil, nil, fmt.Errorf("lsm6ds33: periph host init: %w", err)
		}
		bus, err := i2creg.Open(cfg.LSM6DS33I2CBus)
		if err != nil {
			return nil, nil, fmt.Errorf("lsm6ds33: open I2C bus %q: %w", cfg.LSM6DS33I2CBus, err)
		}
		dev, err := NewLSM6DS33(bus, cfg.LSM6DS33I2CAddr, cfg.IMUAccelRange, delay)
		if err != nil {
			bus.Close()
			return nil, nil, err
		}
		return dev, bus, nil

	case config.SensorMPU9250:
		r, err := NewMPU9250(cfg.MPU9250SPIDevice, cfg.MPU9250CSPin, cfg.IMUAccelRange)
		if err != nil {
			return nil, nil, err
		}
		return r, nopCloser{}, nil

	case config.SensorMock:
		log.Println("sensors: using mock accelerometer")
		return NewMockSource(time.Duration(cfg.MockDwell) * time.Millisecond), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("sensors: unknown sensor %q", cfg.Sensor)
	}
}
