// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/relabs-tech/vio_computer/internal/config"
	"github.com/relabs-tech/vio_computer/internal/nav"
	"github.com/relabs-tech/vio_computer/internal/publish"
)

// formatLine renders one navigation message as a console line.
func formatLine(topics publish.Topics, topic string, payload []byte) (string, error) {
	switch topic {
	case topics.Position:
		var p nav.Position
		if err := json.Unmarshal(payload, &p); err != nil {
			return "", errors.Wrap(err, "position unmarshal")
		}
		return fmt.Sprintf("[POS]  N=%9.2f  E=%9.2f  D=%9.2f cm", p.N, p.E, p.D), nil
	case topics.Attitude:
		var a nav.Attitude
		if err := json.Unmarshal(payload, &a); err != nil {
			return "", errors.Wrap(err, "attitude unmarshal")
		}
		return fmt.Sprintf("[ATT]  ROLL=%7.4f  PITCH=%7.4f  YAW=%7.4f rad", a.Psi, a.Theta, a.Phi), nil
	case topics.Heading:
		var h nav.Heading
		if err := json.Unmarshal(payload, &h); err != nil {
			return "", errors.Wrap(err, "heading unmarshal")
		}
		return fmt.Sprintf("[HDG]  %6.2f deg", h.Degrees), nil
	case topics.Velocity:
		var v nav.Velocity
		if err := json.Unmarshal(payload, &v); err != nil {
			return "", errors.Wrap(err, "velocity unmarshal")
		}
		return fmt.Sprintf("[VEL]  N=%9.2f  E=%9.2f  D=%9.2f cm/s", v.N, v.E, v.D), nil
	case topics.Confidence:
		var c nav.Confidence
		if err := json.Unmarshal(payload, &c); err != nil {
			return "", errors.Wrap(err, "confidence unmarshal")
		}
		return fmt.Sprintf("[CONF] tracker=%.2f", c.Tracker), nil
	}
	return "", errors.Errorf("unexpected topic %q", topic)
}

// RunConsoleMQTT prints every navigation message to out until ctx is done.
func RunConsoleMQTT(ctx context.Context, cfg config.Config, out io.Writer, logger *zap.SugaredLogger) error {
	logger = logger.Named("console")
	topics := cfg.Topics()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	for _, topic := range []string{topics.Position, topics.Attitude, topics.Heading, topics.Velocity, topics.Confidence} {
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			line, err := formatLine(topics, msg.Topic(), msg.Payload())
			if err != nil {
				logger.Warnw("message error", "error", err)
				return
			}
			fmt.Fprintln(out, line)
		})
		token.Wait()
		if err := token.Error(); err != nil {
			return errors.Wrapf(err, "subscribe %s", topic)
		}
		logger.Infow("subscribed", "topic", topic)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
