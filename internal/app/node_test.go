package app

import (
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/orientation_node/internal/config"
	"github.com/relabs-tech/orientation_node/internal/heartbeat"
	"github.com/relabs-tech/orientation_node/internal/imu"
)

type scriptedLink struct {
	in  []string
	out strings.Builder
}

func (l *scriptedLink) Read(p []byte) (int, error) {
	if len(l.in) == 0 {
		return 0, nil
	}
	n := copy(p, l.in[0])
	l.in = l.in[1:]
	return n, nil
}

func (l *scriptedLink) Write(p []byte) (int, error) { return l.out.Write(p) }

type freeTicks struct{}

func (freeTicks) Wait() {}

type noSleep struct{ calls int }

func (d *noSleep) Sleep(time.Duration) { d.calls++ }

type flatSensor struct{}

func (flatSensor) ReadAccel() (imu.AccelSample, error) { return imu.AccelSample{Z: 0.99}, nil }

func TestNewNodeLoop_WithClock(t *testing.T) {
	cfg := config.Defaults()
	link := &scriptedLink{in: []string{"ti", "ck\n", "gyro\n"}}
	l := newNodeLoop(cfg, nodeParts{
		transport: link,
		sensor:    flatSensor{},
		led:       heartbeat.NopLED{},
		ticks:     freeTicks{},
	})
	for i := 0; i < 3; i++ {
		l.Step()
	}
	if got := link.out.String(); got != "rtc: 2\nRight side up\n" {
		t.Fatalf("got %q", got)
	}
}

func TestNewNodeLoop_ClocklessSingleShot(t *testing.T) {
	cfg := config.Defaults()
	cfg.ClockEnabled = false
	cfg.LineMode = config.LineModeSingle
	link := &scriptedLink{in: []string{"tick\n", "pi", "ng\n"}}
	delay := &noSleep{}
	l := newNodeLoop(cfg, nodeParts{
		transport: link,
		sensor:    flatSensor{},
		delay:     delay,
	})
	for i := 0; i < 3; i++ {
		l.Step()
	}
	want := "unknown command\nunknown command\nunknown command\n"
	if got := link.out.String(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if delay.calls != 3 {
		t.Fatalf("sleeps=%d want 3", delay.calls)
	}
}
