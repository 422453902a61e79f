// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"github.com/relabs-tech/orientation_node/internal/imu"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

type mpu9250Source struct {
	imu     *mpu9250.MPU9250
	lsbPerG float64
}

// NewMPU9250 initializes an MPU9250 over SPI and returns its accelerometer
// as an imu.Reader. The chip has no data-ready gating here: every read
// returns the current output registers.
func NewMPU9250(spiDev, csPin string, accelRange byte) (imu.Reader, error) {
	if accelRange > 3 {
		return nil, fmt.Errorf("mpu9250: accel range %d out of 0-3", accelRange)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("mpu9250: periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("mpu9250: CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("mpu9250: SPI transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("mpu9250: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("mpu9250: initialization: %w", err)
	}

	if err := dev.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("mpu9250: set accel range: %w", err)
	}
	log.Printf("mpu9250: accelerometer range set to %d (±%dg)", accelRange, []int{2, 4, 8, 16}[accelRange])

	if res, err := dev.SelfTest(); err != nil {
		log.Printf("mpu9250: WARNING: self-test failed: %v", err)
	} else {
		log.Printf("mpu9250: self-test accel deviation X: %.2f%%, Y: %.2f%%, Z: %.2f%%",
			res.AccelDeviation.X, res.AccelDeviation.Y, res.AccelDeviation.Z)
	}

	return &mpu9250Source{
		imu:     dev,
		lsbPerG: float64(int(16384) >> accelRange),
	}, nil
}

// ReadAccel reads the three accelerometer axes and scales counts to g.
func (s *mpu9250Source) ReadAccel() (imu.AccelSample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return imu.AccelSample{}, fmt.Errorf("mpu9250: accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return imu.AccelSample{}, fmt.Errorf("mpu9250: accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return imu.AccelSample{}, fmt.Errorf("mpu9250: accel Z: %w", err)
	}

	return imu.AccelSample{
		X: float64(ax) / s.lsbPerG,
		Y: float64(ay) / s.lsbPerG,
		Z: float64(az) / s.lsbPerG,
	}, nil
}
