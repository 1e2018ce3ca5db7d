// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vio_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
# broker on the companion computer
MQTT_BROKER=tcp://localhost:1883

CAM_POS = 15, 10, 10
CAM_ATTITUDE = 0, -pi/2, pi/2
CAM_GROUND_HEIGHT=10
CAM_UPDATE_FREQ=20
CONTINUOUS_SYNC=true
CAMERA_SOURCE=mock
TOPIC_HEADING=custom/heading
DISPLAY_CONTENT=velocity
DISPLAY_I2C_BUS=/dev/i2c-1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, [3]float64{15, 10, 10}, cfg.CamPos)
	assert.Equal(t, [3]float64{0, -math.Pi / 2, math.Pi / 2}, cfg.CamAttitude)
	assert.Equal(t, 10.0, cfg.CamGroundHeight)
	assert.Equal(t, 50*time.Millisecond, cfg.UpdateInterval())
	assert.True(t, cfg.ContinuousSync)
	assert.Equal(t, CameraSourceMock, cfg.CameraSource)
	assert.Equal(t, DisplayContentVelocity, cfg.DisplayContent)
	assert.Equal(t, "/dev/i2c-1", cfg.DisplayI2CBus)

	topics := cfg.Topics()
	assert.Equal(t, "custom/heading", topics.Heading)
	assert.Equal(t, "avr/vio/position/ned", topics.Position)

	mount := cfg.Mount()
	assert.Equal(t, 15.0, mount.Position[0])
	assert.Equal(t, -math.Pi/2, mount.Attitude[1])
	assert.Equal(t, 10.0, mount.GroundHeight)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "MQTT_BROKER=tcp://broker:1883\n"))
	require.NoError(t, err)

	assert.Equal(t, [3]float64{17, 0, 8.5}, cfg.CamPos)
	assert.False(t, cfg.ContinuousSync)
	assert.Equal(t, 100*time.Millisecond, cfg.UpdateInterval())
	assert.Equal(t, time.Second, cfg.ResyncInterval())
	assert.Equal(t, "avr/vio/resync", cfg.TopicResync)
	assert.Equal(t, DisplayContentPosition, cfg.DisplayContent)
	assert.Equal(t, 500*time.Millisecond, cfg.DisplayInterval())
	require.NoError(t, cfg.Mount().Validate())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing broker", "CAM_GROUND_HEIGHT=10\n", "MQTT_BROKER is required"},
		{"unknown key", "MQTT_BROKER=x\nFOO=bar\n", "config line 2: unknown config key"},
		{"no equals", "MQTT_BROKER\n", "invalid config line 1"},
		{"short triple", "MQTT_BROKER=x\nCAM_POS=1,2\n", "CAM_POS needs 3"},
		{"bad angle", "MQTT_BROKER=x\nCAM_ATTITUDE=0,tau,0\n", "invalid CAM_ATTITUDE"},
		{"nan height", "MQTT_BROKER=x\nCAM_GROUND_HEIGHT=NaN\n", "must be finite"},
		{"zero freq", "MQTT_BROKER=x\nCAM_UPDATE_FREQ=0\n", "CAM_UPDATE_FREQ must be"},
		{"bad bool", "MQTT_BROKER=x\nCONTINUOUS_SYNC=sometimes\n", "invalid CONTINUOUS_SYNC"},
		{"bad source", "MQTT_BROKER=x\nCAMERA_SOURCE=usb\n", "CAMERA_SOURCE must be"},
		{"bad display page", "MQTT_BROKER=x\nDISPLAY_CONTENT=imu\n", "DISPLAY_CONTENT must be"},
		{"zero display interval", "MQTT_BROKER=x\nDISPLAY_UPDATE_INTERVAL=0\n", "DISPLAY_UPDATE_INTERVAL must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config file")
}

func TestParseAngleExpr(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"1.5", 1.5},
		{"pi", math.Pi},
		{"-pi", -math.Pi},
		{"pi/4", math.Pi / 4},
		{"-pi/2", -math.Pi / 2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAngleExpr(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-15)
		})
	}

	for _, bad := range []string{"pi*2", "pi/0", "2pi", "inf"} {
		_, err := parseAngleExpr(bad)
		assert.Errorf(t, err, "expected error for %q", bad)
	}
}
