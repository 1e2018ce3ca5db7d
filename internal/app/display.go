// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/vio_computer/internal/config"
	"github.com/relabs-tech/vio_computer/internal/nav"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13
)

// renderPage draws one display page for the given content type.
func renderPage(content string, state nav.State, have bool) (*image1bit.VerticalLSB, error) {
	var lines []string
	switch content {
	case config.DisplayContentPosition:
		lines = []string{
			fmt.Sprintf("N:%8.1f cm", state.Position.N),
			fmt.Sprintf("E:%8.1f cm", state.Position.E),
			fmt.Sprintf("D:%8.1f cm", state.Position.D),
			fmt.Sprintf("HDG: %5.1f", state.Heading.Degrees),
		}
	case config.DisplayContentAttitude:
		lines = []string{
			fmt.Sprintf("R: %7.3f", state.Attitude.Psi),
			fmt.Sprintf("P: %7.3f", state.Attitude.Theta),
			fmt.Sprintf("Y: %7.3f", state.Attitude.Phi),
			fmt.Sprintf("CONF: %.2f", state.Confidence.Tracker),
		}
	case config.DisplayContentVelocity:
		lines = []string{
			fmt.Sprintf("VN:%7.1f", state.Velocity.N),
			fmt.Sprintf("VE:%7.1f", state.Velocity.E),
			fmt.Sprintf("VD:%7.1f", state.Velocity.D),
		}
	default:
		return nil, errors.Errorf("unknown display content type: %s", content)
	}
	if !have {
		lines = []string{"VIO " + content, "Waiting..."}
	}

	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, (i+1)*lineHeight)
		drawer.DrawString(line)
	}
	return img, nil
}

// RunDisplay shows the latest navigation state on an SSD1306 OLED.
func RunDisplay(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) error {
	logger = logger.Named("display")

	// validate the page before touching the hardware
	if _, err := renderPage(cfg.DisplayContent, nav.State{}, false); err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize periph")
	}
	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return errors.Wrap(err, "failed to open I2C bus")
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return errors.Wrap(err, "failed to initialize display")
	}
	defer dev.Halt()
	logger.Infow("display initialized", "bus", cfg.DisplayI2CBus, "content", cfg.DisplayContent)

	hub := newLiveHub(cfg.Topics(), logger)
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	if err := subscribeNavigation(client, hub, logger); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.DisplayInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		state, have := hub.snapshot()
		img, err := renderPage(cfg.DisplayContent, state, have)
		if err != nil {
			return err
		}
		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			logger.Warnw("error updating display", "error", err)
		}
	}
}
