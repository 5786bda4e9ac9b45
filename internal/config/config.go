package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sensor sources.
const (
	SourceMQTT   = "mqtt"
	SourceIIO    = "iio"
	SourceSerial = "serial"
	SourceIMU    = "imu"
	SourceMock   = "mock"
	SourceNone   = "none"
)

// Animation sinks.
const (
	SinkWeb     = "web"
	SinkMQTT    = "mqtt"
	SinkDisplay = "display"
	SinkLog     = "log"
)

var (
	ErrUnknownSource = errors.New("unknown sensor source")
	ErrUnknownSink   = errors.New("unknown animation sink")
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDParallax string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string

	// Topics
	TopicRotationVector string
	TopicLifecycle      string
	TopicTranslation    string

	// Sensor
	SensorSource           string // mqtt, iio, serial, imu, mock or none
	SensorSamplingInterval int    // milliseconds
	IIODevicePath          string // empty: auto-discover
	SerialPort             string
	SerialBaudRate         int
	IMUSPIDevice           string
	IMUCSPin               string

	// Animation
	AnimationDuration         int // milliseconds
	AnimationDecelerateFactor float64
	AnimationSinks            []string
	TargetsFile               string

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
	DisplayScale          float64

	// Producer
	ProducerInterval int // milliseconds
}

// Package-level unexported variables for the singleton:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: InitGlobal runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for every key the file leaves out.
func Default() *Config {
	return &Config{
		MQTTBroker:                "tcp://localhost:1883",
		MQTTClientIDParallax:      "parallax",
		MQTTClientIDProducer:      "parallax-producer",
		MQTTClientIDConsole:       "parallax-console",
		TopicRotationVector:       "parallax/sensor/rotation_vector",
		TopicLifecycle:            "parallax/lifecycle",
		TopicTranslation:          "parallax/translation",
		SensorSource:              SourceMQTT,
		SensorSamplingInterval:    100,
		SerialBaudRate:            115200,
		AnimationDuration:         300,
		AnimationDecelerateFactor: 1,
		AnimationSinks:            []string{SinkWeb},
		WebServerPort:             8080,
		DisplayI2CAddr:            0x3C,
		DisplayUpdateInterval:     50,
		DisplayScale:              1,
		ProducerInterval:          50,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default. Blank lines and lines
// starting with # are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
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

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func positiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func positiveFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %g", key, f)
	}
	return f, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PARALLAX":
		c.MQTTClientIDParallax = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_ROTATION_VECTOR":
		c.TopicRotationVector = value
	case "TOPIC_LIFECYCLE":
		c.TopicLifecycle = value
	case "TOPIC_TRANSLATION":
		c.TopicTranslation = value

	// Sensor
	case "SENSOR_SOURCE":
		switch value {
		case SourceMQTT, SourceIIO, SourceSerial, SourceIMU, SourceMock, SourceNone:
			c.SensorSource = value
		default:
			return fmt.Errorf("%w: %q", ErrUnknownSource, value)
		}
	case "SENSOR_SAMPLING_INTERVAL":
		c.SensorSamplingInterval, err = positiveInt(key, value)
	case "IIO_DEVICE_PATH":
		c.IIODevicePath = value
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = positiveInt(key, value)
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value

	// Animation
	case "ANIMATION_DURATION":
		c.AnimationDuration, err = positiveInt(key, value)
	case "ANIMATION_DECELERATE_FACTOR":
		c.AnimationDecelerateFactor, err = positiveFloat(key, value)
	case "ANIMATION_SINKS":
		c.AnimationSinks, err = parseSinks(value)
	case "TARGETS_FILE":
		c.TargetsFile = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = positiveInt(key, value)

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		addr, perr := strconv.ParseUint(value, 0, 16)
		if perr != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, perr)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = positiveInt(key, value)
	case "DISPLAY_SCALE":
		c.DisplayScale, err = positiveFloat(key, value)

	// Producer
	case "PRODUCER_INTERVAL":
		c.ProducerInterval, err = positiveInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseSinks(value string) ([]string, error) {
	var sinks []string
	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		switch s {
		case "":
			continue
		case SinkWeb, SinkMQTT, SinkDisplay, SinkLog:
			sinks = append(sinks, s)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownSink, s)
		}
	}
	return sinks, nil
}

// validate checks that the fields the selected source and sinks rely on
// are set.
func (c *Config) validate() error {
	needsMQTT := c.SensorSource == SourceMQTT || c.HasSink(SinkMQTT) || c.TopicLifecycle != ""
	if needsMQTT && c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	switch c.SensorSource {
	case SourceMQTT:
		if c.TopicRotationVector == "" {
			return fmt.Errorf("TOPIC_ROTATION_VECTOR is required for SENSOR_SOURCE=mqtt")
		}
	case SourceSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for SENSOR_SOURCE=serial")
		}
	case SourceIMU:
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required for SENSOR_SOURCE=imu")
		}
	}
	if c.HasSink(SinkMQTT) && c.TopicTranslation == "" {
		return fmt.Errorf("TOPIC_TRANSLATION is required for the mqtt sink")
	}
	return nil
}

// HasSink reports whether sink is enabled.
func (c *Config) HasSink(sink string) bool {
	for _, s := range c.AnimationSinks {
		if s == sink {
			return true
		}
	}
	return false
}

// SamplingInterval is SENSOR_SAMPLING_INTERVAL as a duration.
func (c *Config) SamplingInterval() time.Duration {
	return time.Duration(c.SensorSamplingInterval) * time.Millisecond
}

// Duration is ANIMATION_DURATION as a duration.
func (c *Config) Duration() time.Duration {
	return time.Duration(c.AnimationDuration) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Only the first call has any effect.
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
