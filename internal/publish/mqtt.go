// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package publish

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
)

// MQTTSender publishes JSON payloads through a paho client.
type MQTTSender struct {
	client   mqtt.Client
	qos      byte
	retained bool
	timeout  time.Duration
}

// NewMQTTSender wraps client. Messages go out at QoS 0, retained, like the
// rest of the inertial topics.
func NewMQTTSender(client mqtt.Client) *MQTTSender {
	return &MQTTSender{client: client, qos: 0, retained: true, timeout: time.Second}
}

// Send marshals payload to JSON and publishes it on topic.
func (s *MQTTSender) Send(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "marshal %s", topic)
	}
	token := s.client.Publish(topic, s.qos, s.retained, data)
	if !token.WaitTimeout(s.timeout) {
		return errors.Errorf("publish %s: timed out after %s", topic, s.timeout)
	}
	if err := token.Error(); err != nil {
		return errors.Wrapf(err, "publish %s", topic)
	}
	return nil
}
