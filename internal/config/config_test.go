package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("# nothing but a comment\n\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 100*time.Millisecond, cfg.SamplingInterval())
	assert.Equal(t, 300*time.Millisecond, cfg.Duration())
	assert.Equal(t, 1.0, cfg.AnimationDecelerateFactor)
	assert.True(t, cfg.HasSink(SinkWeb))
}

func TestParseOverrides(t *testing.T) {
	in := `
MQTT_BROKER = tcp://broker:1883
SENSOR_SOURCE=serial
SERIAL_PORT=/dev/ttyUSB0
SERIAL_BAUD_RATE=9600
SENSOR_SAMPLING_INTERVAL=20
ANIMATION_DURATION=150
ANIMATION_DECELERATE_FACTOR=1.5
ANIMATION_SINKS=web, mqtt ,log
DISPLAY_I2C_ADDR=0x3D
TARGETS_FILE=targets.yaml
`
	cfg, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTTBroker)
	assert.Equal(t, SourceSerial, cfg.SensorSource)
	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
	assert.Equal(t, 9600, cfg.SerialBaudRate)
	assert.Equal(t, 20*time.Millisecond, cfg.SamplingInterval())
	assert.Equal(t, 150*time.Millisecond, cfg.Duration())
	assert.Equal(t, 1.5, cfg.AnimationDecelerateFactor)
	assert.Equal(t, []string{SinkWeb, SinkMQTT, SinkLog}, cfg.AnimationSinks)
	assert.False(t, cfg.HasSink(SinkDisplay))
	assert.Equal(t, uint16(0x3D), cfg.DisplayI2CAddr)
	assert.Equal(t, "targets.yaml", cfg.TargetsFile)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no equals", "MQTT_BROKER", "invalid config line 1"},
		{"unknown key", "NOPE=1", "unknown config key"},
		{"bad int", "WEB_SERVER_PORT=http", "invalid WEB_SERVER_PORT"},
		{"zero interval", "SENSOR_SAMPLING_INTERVAL=0", "must be positive"},
		{"bad addr", "DISPLAY_I2C_ADDR=zz", "invalid DISPLAY_I2C_ADDR"},
		{"serial without port", "SENSOR_SOURCE=serial", "SERIAL_PORT is required"},
		{"imu without device", "SENSOR_SOURCE=imu", "IMU_SPI_DEVICE is required"},
		{"mqtt without broker", "MQTT_BROKER=", "MQTT_BROKER is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseSentinels(t *testing.T) {
	_, err := Parse(strings.NewReader("SENSOR_SOURCE=carrier-pigeon"))
	assert.ErrorIs(t, err, ErrUnknownSource)

	_, err = Parse(strings.NewReader("ANIMATION_SINKS=web,hologram"))
	assert.ErrorIs(t, err, ErrUnknownSink)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInitGlobal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parallax_config.txt")
	require.NoError(t, os.WriteFile(path, []byte("SENSOR_SOURCE=mock\n"), 0o644))

	require.NoError(t, InitGlobal(path))
	require.NotNil(t, Get())
	assert.Equal(t, SourceMock, Get().SensorSource)

	// later calls keep the first configuration
	require.NoError(t, InitGlobal(filepath.Join(t.TempDir(), "other.txt")))
	assert.Equal(t, SourceMock, Get().SensorSource)
}

func TestLoadTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	data := `
targets:
  - element: background
    max_translation: 20
  - element: foreground
    max_translation: 60
  - element: foreground
    max_translation: 60
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	targets, err := LoadTargets(path)
	require.NoError(t, err)
	assert.Equal(t, []Target{
		{Element: "background", MaxTranslation: 20},
		{Element: "foreground", MaxTranslation: 60},
		{Element: "foreground", MaxTranslation: 60},
	}, targets)
}

func TestParseTargetsErrors(t *testing.T) {
	_, err := ParseTargets([]byte("targets: [1, 2"))
	assert.Error(t, err)

	_, err = ParseTargets([]byte("targets:\n  - max_translation: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element is required")

	targets, err := ParseTargets([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, targets)
}
