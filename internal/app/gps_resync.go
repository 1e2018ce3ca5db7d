// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/relabs-tech/vio_computer/internal/config"
	"github.com/relabs-tech/vio_computer/internal/gps"
	"github.com/relabs-tech/vio_computer/internal/nav"
)

// RunGPSResync opens the GPS serial port, parses NMEA sentences, and
// publishes resync references as JSON on the resync topic.
func RunGPSResync(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) error {
	logger = logger.Named("gps")

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return errors.Wrapf(err, "open %s", cfg.GPSSerialPort)
	}
	defer port.Close()
	logger.Infow("GPS serial port opened", "port", serialOpts.PortName, "baud", serialOpts.BaudRate)

	go func() {
		<-ctx.Done()
		port.Close()
	}()

	publish := func(ref nav.ResyncReference) error {
		payload, err := json.Marshal(ref)
		if err != nil {
			return err
		}
		token := client.Publish(cfg.TopicResync, 0, false, payload)
		token.Wait()
		return token.Error()
	}

	err = streamResync(port, gps.NewTracker(), cfg.ResyncInterval(), time.Now, publish, logger)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// streamResync reads NMEA lines from r and hands a reference to publish at
// most once per interval.
func streamResync(
	r io.Reader,
	tracker *gps.Tracker,
	interval time.Duration,
	now func() time.Time,
	publish func(nav.ResyncReference) error,
	logger *zap.SugaredLogger,
) error {
	reader := bufio.NewReader(r)
	var last time.Time

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, "GPS read")
		}

		line = strings.TrimSpace(line)
		// NMEA sentences start with '$'
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy GPS or partial sentences
			logger.Debugw("NMEA parse error", "error", err, "line", line)
			continue
		}

		ref, ok := tracker.Update(sentence)
		if !ok {
			continue
		}
		t := now()
		if !last.IsZero() && t.Sub(last) < interval {
			continue
		}
		last = t

		if err := publish(ref); err != nil {
			logger.Warnw("resync publish error", "error", err)
			continue
		}
		logger.Debugw("published resync reference", "ref", ref, "fix", tracker.Fix())
	}
}
