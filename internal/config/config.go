// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/relabs-tech/vio_computer/internal/publish"
	"github.com/relabs-tech/vio_computer/internal/vio"
)

// Camera sources selectable with CAMERA_SOURCE.
const (
	CameraSourceMQTT = "mqtt"
	CameraSourceMock = "mock"
)

// Display pages selectable with DISPLAY_CONTENT.
const (
	DisplayContentPosition = "position"
	DisplayContentAttitude = "attitude"
	DisplayContentVelocity = "velocity"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDVIO      string
	MQTTClientIDProducer string
	MQTTClientIDGPS      string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicCameraSample string
	TopicResync       string
	TopicPosition     string
	TopicAttitude     string
	TopicHeading      string
	TopicVelocity     string
	TopicConfidence   string

	// Camera mount
	CamPos          [3]float64 // cm from FC forward, right, down
	CamAttitude     [3]float64 // roll, pitch, yaw in radians
	CamGroundHeight float64    // cm above the ground

	// Timing
	CamUpdateFreq int // times per second to process camera data

	// Resync
	ContinuousSync bool // resync on every reference instead of only the first

	CameraSource string // "mqtt" or "mock"

	// GPS
	GPSSerialPort     string
	GPSBaudRate       int
	GPSResyncInterval int // milliseconds

	// Web Server
	WebServerPort int

	// OLED display
	DisplayI2CBus         string // periph bus name, empty for the first bus
	DisplayContent        string
	DisplayUpdateInterval int // milliseconds
}

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	return Config{
		MQTTClientIDVIO:      "vio-module",
		MQTTClientIDProducer: "vio-camera-producer",
		MQTTClientIDGPS:      "vio-gps-resync",
		MQTTClientIDConsole:  "vio-console-subscriber",
		MQTTClientIDWeb:      "vio-web-subscriber",
		MQTTClientIDDisplay:  "vio-display",

		TopicCameraSample: "avr/vio/camera/sample",
		TopicResync:       "avr/vio/resync",
		TopicPosition:     "avr/vio/position/ned",
		TopicAttitude:     "avr/vio/orientation/eul",
		TopicHeading:      "avr/vio/heading",
		TopicVelocity:     "avr/vio/velocity/ned",
		TopicConfidence:   "avr/vio/confidence",

		// cam x = body -y; cam y = body x, cam z = body z
		CamPos:          [3]float64{17, 0, 8.5},
		CamAttitude:     [3]float64{0, -math.Pi / 2, math.Pi / 2},
		CamGroundHeight: 10,

		CamUpdateFreq:  10,
		ContinuousSync: false,
		CameraSource:   CameraSourceMQTT,

		GPSBaudRate:       9600,
		GPSResyncInterval: 1000,

		WebServerPort: 8080,

		DisplayContent:        DisplayContentPosition,
		DisplayUpdateInterval: 500,
	}
}

// Load reads the configuration file and returns a Config. Keys missing
// from the file keep their Default value.
func Load(configPath string) (Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
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
			return Config{}, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return Config{}, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_VIO":
		c.MQTTClientIDVIO = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_CAMERA_SAMPLE":
		c.TopicCameraSample = value
	case "TOPIC_RESYNC":
		c.TopicResync = value
	case "TOPIC_POSITION":
		c.TopicPosition = value
	case "TOPIC_ATTITUDE":
		c.TopicAttitude = value
	case "TOPIC_HEADING":
		c.TopicHeading = value
	case "TOPIC_VELOCITY":
		c.TopicVelocity = value
	case "TOPIC_CONFIDENCE":
		c.TopicConfidence = value

	// Camera mount
	case "CAM_POS":
		c.CamPos, err = parseTriple(key, value)
	case "CAM_ATTITUDE":
		c.CamAttitude, err = parseTriple(key, value)
	case "CAM_GROUND_HEIGHT":
		c.CamGroundHeight, err = parseFloat(key, value)

	// Timing
	case "CAM_UPDATE_FREQ":
		freq, convErr := strconv.Atoi(value)
		if convErr != nil {
			return fmt.Errorf("invalid CAM_UPDATE_FREQ %q: %w", value, convErr)
		}
		if freq <= 0 || freq > 1000 {
			return fmt.Errorf("CAM_UPDATE_FREQ must be 1-1000 Hz, got %d", freq)
		}
		c.CamUpdateFreq = freq

	// Resync
	case "CONTINUOUS_SYNC":
		sync, convErr := strconv.ParseBool(value)
		if convErr != nil {
			return fmt.Errorf("invalid CONTINUOUS_SYNC %q: %w", value, convErr)
		}
		c.ContinuousSync = sync

	case "CAMERA_SOURCE":
		if value != CameraSourceMQTT && value != CameraSourceMock {
			return fmt.Errorf("CAMERA_SOURCE must be %q or %q, got %q", CameraSourceMQTT, CameraSourceMock, value)
		}
		c.CameraSource = value

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, convErr := strconv.Atoi(value)
		if convErr != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, convErr)
		}
		c.GPSBaudRate = rate
	case "GPS_RESYNC_INTERVAL":
		interval, convErr := strconv.Atoi(value)
		if convErr != nil {
			return fmt.Errorf("invalid GPS_RESYNC_INTERVAL %q: %w", value, convErr)
		}
		c.GPSResyncInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, convErr := strconv.Atoi(value)
		if convErr != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, convErr)
		}
		c.WebServerPort = port

	// OLED display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_CONTENT":
		switch value {
		case DisplayContentPosition, DisplayContentAttitude, DisplayContentVelocity:
			c.DisplayContent = value
		default:
			return fmt.Errorf("DISPLAY_CONTENT must be %s, %s or %s, got %q",
				DisplayContentPosition, DisplayContentAttitude, DisplayContentVelocity, value)
		}
	case "DISPLAY_UPDATE_INTERVAL":
		interval, convErr := strconv.Atoi(value)
		if convErr != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, convErr)
		}
		if interval <= 0 {
			return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", interval)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be finite, got %q", key, value)
	}
	return f, nil
}

// parseTriple reads "a, b, c". Values may be written as multiples of pi,
// e.g. "-pi/2".
func parseTriple(key, value string) ([3]float64, error) {
	var out [3]float64
	fields := strings.Split(value, ",")
	if len(fields) != 3 {
		return out, fmt.Errorf("%s needs 3 comma separated values, got %q", key, value)
	}
	for i, f := range fields {
		v, err := parseAngleExpr(strings.TrimSpace(f))
		if err != nil {
			return out, fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseAngleExpr accepts a plain number, "pi", "-pi", "pi/N" or "-pi/N".
func parseAngleExpr(s string) (float64, error) {
	sign := 1.0
	expr := s
	if strings.HasPrefix(expr, "-") {
		sign = -1
		expr = expr[1:]
	}
	if strings.HasPrefix(expr, "pi") {
		rest := strings.TrimPrefix(expr, "pi")
		if rest == "" {
			return sign * math.Pi, nil
		}
		if !strings.HasPrefix(rest, "/") {
			return 0, fmt.Errorf("unsupported expression %q", s)
		}
		div, err := strconv.ParseFloat(rest[1:], 64)
		if err != nil || div == 0 {
			return 0, fmt.Errorf("unsupported expression %q", s)
		}
		return sign * math.Pi / div, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value must be finite, got %q", s)
	}
	return v, nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicCameraSample == "" && c.CameraSource == CameraSourceMQTT {
		return fmt.Errorf("TOPIC_CAMERA_SAMPLE is required when CAMERA_SOURCE=mqtt")
	}
	if c.TopicResync == "" {
		return fmt.Errorf("TOPIC_RESYNC is required")
	}
	if c.GPSResyncInterval <= 0 {
		return fmt.Errorf("GPS_RESYNC_INTERVAL must be positive")
	}
	return nil
}

// Mount returns the camera mount calibration inputs.
func (c Config) Mount() vio.MountConfig {
	return vio.MountConfig{
		Position:     mgl64.Vec3(c.CamPos),
		Attitude:     mgl64.Vec3(c.CamAttitude),
		GroundHeight: c.CamGroundHeight,
	}
}

// Topics returns the navigation output topics.
func (c Config) Topics() publish.Topics {
	return publish.Topics{
		Position:   c.TopicPosition,
		Attitude:   c.TopicAttitude,
		Heading:    c.TopicHeading,
		Velocity:   c.TopicVelocity,
		Confidence: c.TopicConfidence,
	}
}

// UpdateInterval is the period of the camera processing loop.
func (c Config) UpdateInterval() time.Duration {
	return time.Second / time.Duration(c.CamUpdateFreq)
}

// ResyncInterval is the minimum spacing between GPS resync references.
func (c Config) ResyncInterval() time.Duration {
	return time.Duration(c.GPSResyncInterval) * time.Millisecond
}

// DisplayInterval is the OLED refresh period.
func (c Config) DisplayInterval() time.Duration {
	return time.Duration(c.DisplayUpdateInterval) * time.Millisecond
}
