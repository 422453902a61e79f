package sensors

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/orientation_node/internal/imu"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

type recordDelay struct {
	slept []time.Duration
}

func (d *recordDelay) Sleep(v time.Duration) { d.slept = append(d.slept, v) }

func initOps(addr uint16, ctrl1 byte) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: addr, W: []byte{lsmRegWhoAmI}, R: []byte{lsmWhoAmI}},
		{Addr: addr, W: []byte{lsmRegCtrl3C, lsmCtrl3C}},
		{Addr: addr, W: []byte{lsmRegCtrl1XL, ctrl1}},
		{Addr: addr, W: []byte{lsmRegCtrl2G, lsmODR104Hz}},
	}
}

func TestLSM6DS33_InitAndRead(t *testing.T) {
	ops := initOps(DefaultLSM6DS33Addr, 0x40)
	ops = append(ops,
		i2ctest.IO{Addr: DefaultLSM6DS33Addr, W: []byte{lsmRegStatus}, R: []byte{0x07}},
		// x = +16393 (~1 g), y = -1000, z = 0
		i2ctest.IO{Addr: DefaultLSM6DS33Addr, W: []byte{lsmRegOutXLXL}, R: []byte{0x09, 0x40, 0x18, 0xFC, 0x00, 0x00}},
	)
	bus := &i2ctest.Playback{Ops: ops}
	delay := &recordDelay{}

	d, err := NewLSM6DS33(bus, DefaultLSM6DS33Addr, 0, delay)
	if err != nil {
		t.Fatalf("NewLSM6DS33: %v", err)
	}
	if len(delay.slept) != 1 {
		t.Fatalf("sleeps=%v want one start-up delay", delay.slept)
	}

	s, err := d.ReadAccel()
	if err != nil {
		t.Fatalf("ReadAccel: %v", err)
	}
	if math.Abs(s.X-16393*0.061/1000) > 1e-9 {
		t.Fatalf("x=%v", s.X)
	}
	if math.Abs(s.Y-(-1000*0.061/1000)) > 1e-9 {
		t.Fatalf("y=%v", s.Y)
	}
	if s.Z != 0 {
		t.Fatalf("z=%v want 0", s.Z)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("playback not drained: %v", err)
	}
}

func TestLSM6DS33_NotReady(t *testing.T) {
	ops := initOps(DefaultLSM6DS33Addr, 0x40|0x0C)
	ops = append(ops, i2ctest.IO{Addr: DefaultLSM6DS33Addr, W: []byte{lsmRegStatus}, R: []byte{0x02}})
	bus := &i2ctest.Playback{Ops: ops}

	d, err := NewLSM6DS33(bus, DefaultLSM6DS33Addr, 2, &recordDelay{})
	if err != nil {
		t.Fatalf("NewLSM6DS33: %v", err)
	}
	if _, err := d.ReadAccel(); !errors.Is(err, imu.ErrNotReady) {
		t.Fatalf("err=%v want ErrNotReady", err)
	}
}

func TestLSM6DS33_WrongChip(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultLSM6DS33Addr, W: []byte{lsmRegWhoAmI}, R: []byte{0x6A}},
	}}
	_, err := NewLSM6DS33(bus, DefaultLSM6DS33Addr, 0, &recordDelay{})
	if err == nil || !strings.Contains(err.Error(), "WHO_AM_I") {
		t.Fatalf("err=%v want WHO_AM_I mismatch", err)
	}
}

func TestLSM6DS33_BadRange(t *testing.T) {
	if _, err := NewLSM6DS33(&i2ctest.Playback{}, DefaultLSM6DS33Addr, 4, &recordDelay{}); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestMockSource_WalksFaces(t *testing.T) {
	now := time.Unix(0, 0)
	m := newMockSource(time.Second, func() time.Time { return now })

	for i, want := range faces {
		now = time.Unix(int64(i), int64(500*time.Millisecond))
		s, err := m.ReadAccel()
		if err != nil {
			t.Fatalf("ReadAccel: %v", err)
		}
		if math.Abs(s.X-want.X) > 0.1 || math.Abs(s.Y-want.Y) > 0.1 || math.Abs(s.Z-want.Z) > 0.1 {
			t.Fatalf("face %d: got %v want near %v", i, s, want)
		}
	}
}
