package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node_config.txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
# command link
SERIAL_PORT=/dev/ttyGS0
LINE_MODE = single

SENSOR=mock
LSM6DS33_I2C_ADDR=0x6B
IMU_ACCEL_RANGE=2
CLOCK_ENABLED=false
POLL_INTERVAL=10
MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_MONITOR=bench-monitor
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SerialPort != "/dev/ttyGS0" || cfg.LineMode != LineModeSingle {
		t.Fatalf("serial=%q mode=%q", cfg.SerialPort, cfg.LineMode)
	}
	if cfg.Sensor != SensorMock || cfg.LSM6DS33I2CAddr != 0x6B || cfg.IMUAccelRange != 2 {
		t.Fatalf("sensor=%q addr=0x%X range=%d", cfg.Sensor, cfg.LSM6DS33I2CAddr, cfg.IMUAccelRange)
	}
	if cfg.ClockEnabled || cfg.PollInterval != 10 {
		t.Fatalf("clock=%v poll=%d", cfg.ClockEnabled, cfg.PollInterval)
	}
	// untouched defaults
	if cfg.SerialMaxLine != 128 || cfg.HeartbeatInterval != 500 || cfg.SerialBaudRate != 115200 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" || cfg.TopicOrientation != "orientation/report" {
		t.Fatalf("mqtt=%q topic=%q", cfg.MQTTBroker, cfg.TopicOrientation)
	}
	if cfg.MQTTClientIDMonitor != "bench-monitor" || cfg.MQTTClientIDWeb != "orientation-web" {
		t.Fatalf("client ids monitor=%q web=%q", cfg.MQTTClientIDMonitor, cfg.MQTTClientIDWeb)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name, body, want string
	}{
		{"missing port", "SENSOR=mock\n", "SERIAL_PORT is required"},
		{"unknown key", "SERIAL_PORT=/dev/x\nFOO=1\n", `unknown config key: "FOO"`},
		{"no equals", "SERIAL_PORT=/dev/x\nJUNK\n", "invalid config line 2"},
		{"poll too slow", "SERIAL_PORT=/dev/x\nPOLL_INTERVAL=11\n", "POLL_INTERVAL must be 1-10"},
		{"bad mode", "SERIAL_PORT=/dev/x\nLINE_MODE=chunked\n", "LINE_MODE must be one of"},
		{"bad range", "SERIAL_PORT=/dev/x\nIMU_ACCEL_RANGE=4\n", "IMU_ACCEL_RANGE must be 0-3"},
		{"bad bool", "SERIAL_PORT=/dev/x\nCLOCK_ENABLED=maybe\n", "invalid CLOCK_ENABLED"},
		{"pin required", "SERIAL_PORT=/dev/x\nHEARTBEAT_PIN=\n", "HEARTBEAT_PIN is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v want containing %q", err, tc.want)
			}
		})
	}
}

func TestLoad_NoPinWithoutHeartbeat(t *testing.T) {
	_, err := Load(writeConfig(t, "SERIAL_PORT=/dev/x\nHEARTBEAT_BACKEND=none\nHEARTBEAT_PIN=\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoad_SampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "orientation_config.txt"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTClientIDMonitor != "orientation-monitor" {
		t.Fatalf("monitor client id %q", cfg.MQTTClientIDMonitor)
	}
	if cfg.SerialPort == "" || cfg.Sensor != SensorLSM6DS33 || cfg.LSM6DS33I2CAddr != 0x6A {
		t.Fatalf("unexpected sample config: %+v", cfg)
	}
}
