package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Line modes accepted by LINE_MODE.
const (
	LineModeBuffered = "buffered"
	LineModeSingle   = "single"
)

// Sensors accepted by SENSOR.
const (
	SensorLSM6DS33 = "lsm6ds33"
	SensorMPU9250  = "mpu9250"
	SensorMock     = "mock"
)

// Heartbeat backends accepted by HEARTBEAT_BACKEND.
const (
	HeartbeatPeriph   = "periph"
	HeartbeatGPIOCdev = "gpiocdev"
	HeartbeatNone     = "none"
)

// MaxPollInterval is the longest gap, in milliseconds, the host side of the
// serial link tolerates between two polls.
const MaxPollInterval = 10

// Config holds all application configuration values.
type Config struct {
	// Serial command link
	SerialPort     string
	SerialBaudRate int
	SerialMaxLine  int
	LineMode       string

	// Control loop timing (milliseconds)
	ClockEnabled      bool
	PollInterval      int // clock-less pacing only
	HeartbeatInterval int
	WatchInterval     int // 0 disables watch sampling

	// Heartbeat LED
	HeartbeatBackend string
	HeartbeatPin     string

	// Accelerometer
	Sensor           string
	LSM6DS33I2CBus   string
	LSM6DS33I2CAddr  uint16
	MPU9250SPIDevice string
	MPU9250CSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	MockDwell     int // milliseconds per face

	// MQTT (empty broker disables telemetry)
	MQTTBroker          string
	MQTTClientIDNode    string
	MQTTClientIDWeb     string
	MQTTClientIDDisplay string
	MQTTClientIDMonitor string
	TopicOrientation    string

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through Get.
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Defaults returns a Config with every optional key at its default.
func Defaults() *Config {
	return &Config{
		SerialBaudRate:        115200,
		SerialMaxLine:         128,
		LineMode:              LineModeBuffered,
		ClockEnabled:          true,
		PollInterval:          5,
		HeartbeatInterval:     500,
		HeartbeatBackend:      HeartbeatPeriph,
		HeartbeatPin:          "GPIO17",
		Sensor:                SensorLSM6DS33,
		LSM6DS33I2CAddr:       0x6A,
		MPU9250SPIDevice:      "/dev/spidev0.0",
		MPU9250CSPin:          "8",
		MockDwell:             5000,
		MQTTClientIDNode:      "orientation-node",
		MQTTClientIDWeb:       "orientation-web",
		MQTTClientIDDisplay:   "orientation-display",
		MQTTClientIDMonitor:   "orientation-monitor",
		TopicOrientation:      "orientation/report",
		WebServerPort:         8080,
		DisplayUpdateInterval: 250,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseInt(key, value string, min, max int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, min, max, v)
	}
	return v, nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = parseInt(key, value, 1, 4_000_000)
	case "SERIAL_MAX_LINE":
		c.SerialMaxLine, err = parseInt(key, value, 1, 4096)
	case "LINE_MODE":
		err = oneOf(key, value, LineModeBuffered, LineModeSingle)
		c.LineMode = value

	// Timing
	case "CLOCK_ENABLED":
		c.ClockEnabled, err = strconv.ParseBool(value)
		if err != nil {
			err = fmt.Errorf("invalid CLOCK_ENABLED %q: %w", value, err)
		}
	case "POLL_INTERVAL":
		c.PollInterval, err = parseInt(key, value, 1, MaxPollInterval)
	case "HEARTBEAT_INTERVAL":
		c.HeartbeatInterval, err = parseInt(key, value, 1, 3_600_000)
	case "WATCH_INTERVAL":
		c.WatchInterval, err = parseInt(key, value, 0, 3_600_000)

	// Heartbeat
	case "HEARTBEAT_BACKEND":
		err = oneOf(key, value, HeartbeatPeriph, HeartbeatGPIOCdev, HeartbeatNone)
		c.HeartbeatBackend = value
	case "HEARTBEAT_PIN":
		c.HeartbeatPin = value

	// Accelerometer
	case "SENSOR":
		err = oneOf(key, value, SensorLSM6DS33, SensorMPU9250, SensorMock)
		c.Sensor = value
	case "LSM6DS33_I2C_BUS":
		c.LSM6DS33I2CBus = value
	case "LSM6DS33_I2C_ADDR":
		addr, perr := strconv.ParseUint(value, 0, 16)
		if perr != nil {
			return fmt.Errorf("invalid LSM6DS33_I2C_ADDR %q: %w", value, perr)
		}
		c.LSM6DS33I2CAddr = uint16(addr)
	case "MPU9250_SPI_DEVICE":
		c.MPU9250SPIDevice = value
	case "MPU9250_CS_PIN":
		c.MPU9250CSPin = value
	case "IMU_ACCEL_RANGE":
		var v int
		v, err = parseInt(key, value, 0, 3)
		c.IMUAccelRange = byte(v)
	case "MOCK_DWELL":
		c.MockDwell, err = parseInt(key, value, 1, 3_600_000)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_NODE":
		c.MQTTClientIDNode = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_MONITOR":
		c.MQTTClientIDMonitor = value
	case "TOPIC_ORIENTATION":
		c.TopicOrientation = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value, 1, 65535)

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value, 1, 60_000)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required")
	}
	if c.HeartbeatBackend != HeartbeatNone && c.HeartbeatPin == "" {
		return fmt.Errorf("HEARTBEAT_PIN is required unless HEARTBEAT_BACKEND=none")
	}
	if c.TopicOrientation == "" {
		return fmt.Errorf("TOPIC_ORIENTATION must not be empty")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads; later calls return nil.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
