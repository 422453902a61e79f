// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/orientation_node/internal/clock"
	"github.com/relabs-tech/orientation_node/internal/imu"
	"periph.io/x/conn/v3/i2c"
)

// LSM6DS33 registers used by the node.
const (
	lsmRegWhoAmI  = 0x0F
	lsmRegCtrl1XL = 0x10
	lsmRegCtrl2G  = 0x11
	lsmRegCtrl3C  = 0x12
	lsmRegStatus  = 0x1E
	lsmRegOutXLXL = 0x28

	lsmWhoAmI = 0x69

	lsmODR104Hz = 0x40 // ODR bits [7:4] = 0100
	lsmCtrl3C   = 0x44 // BDU | IF_INC
	lsmXLDA     = 0x01 // STATUS_REG: new accelerometer data

	// DefaultLSM6DS33Addr is the address with SA0 pulled high.
	DefaultLSM6DS33Addr = 0x6A
)

// lsmRanges maps IMU_ACCEL_RANGE (0=±2g .. 3=±16g) to the FS_XL bits and the
// sensitivity in mg/LSB.
var lsmRanges = [4]struct {
	fs   byte
	mgLS float64
}{
	{fs: 0x00, mgLS: 0.061},
	{fs: 0x08, mgLS: 0.122},
	{fs: 0x0C, mgLS: 0.244},
	{fs: 0x04, mgLS: 0.488},
}

// LSM6DS33 reads the accelerometer of an ST LSM6DS33 over I2C.
type LSM6DS33 struct {
	dev   i2c.Dev
	scale float64 // g per LSB
	buf   [6]byte
}

// NewLSM6DS33 checks the chip identity and configures the accelerometer and
// gyroscope for 104 Hz output.
func NewLSM6DS33(bus i2c.Bus, addr uint16, accelRange byte, delay clock.Delayer) (*LSM6DS33, error) {
	if int(accelRange) >= len(lsmRanges) {
		return nil, fmt.Errorf("lsm6ds33: accel range %d out of 0-3", accelRange)
	}
	d := &LSM6DS33{
		dev:   i2c.Dev{Bus: bus, Addr: addr},
		scale: lsmRanges[accelRange].mgLS / 1000,
	}

	var id [1]byte
	if err := d.dev.Tx([]byte{lsmRegWhoAmI}, id[:]); err != nil {
		return nil, fmt.Errorf("lsm6ds33: read WHO_AM_I: %w", err)
	}
	if id[0] != lsmWhoAmI {
		return nil, fmt.Errorf("lsm6ds33: unexpected WHO_AM_I 0x%02X at 0x%02X", id[0], addr)
	}

	writes := []struct {
		reg, val byte
		what     string
	}{
		{lsmRegCtrl3C, lsmCtrl3C, "CTRL3_C"},
		{lsmRegCtrl1XL, lsmODR104Hz | lsmRanges[accelRange].fs, "accelerometer output rate"},
		{lsmRegCtrl2G, lsmODR104Hz, "gyroscope output rate"},
	}
	for _, w := range writes {
		if err := d.dev.Tx([]byte{w.reg, w.val}, nil); err != nil {
			return nil, fmt.Errorf("lsm6ds33: set %s: %w", w.what, err)
		}
	}

	// First sample lands one output period after enabling.
	delay.Sleep(10 * time.Millisecond)
	log.Printf("lsm6ds33: configured at 0x%02X, 104 Hz, ±%dg", addr, []int{2, 4, 8, 16}[accelRange])
	return d, nil
}

// ReadAccel returns ErrNotReady unless the XLDA status bit is set.
func (d *LSM6DS33) ReadAccel() (imu.AccelSample, error) {
	var status [1]byte
	if err := d.dev.Tx([]byte{lsmRegStatus}, status[:]); err != nil {
		return imu.AccelSample{}, fmt.Errorf("lsm6ds33: read status: %w", err)
	}
	if status[0]&lsmXLDA == 0 {
		return imu.AccelSample{}, imu.ErrNotReady
	}
	if err := d.dev.Tx([]byte{lsmRegOutXLXL}, d.buf[:]); err != nil {
		return imu.AccelSample{}, fmt.Errorf("lsm6ds33: read accel: %w", err)
	}
	return imu.AccelSample{
		X: float64(int16(binary.LittleEndian.Uint16(d.buf[0:2]))) * d.scale,
		Y: float64(int16(binary.LittleEndian.Uint16(d.buf[2:4]))) * d.scale,
		Z: float64(int16(binary.LittleEndian.Uint16(d.buf[4:6]))) * d.scale,
	}, nil
}
