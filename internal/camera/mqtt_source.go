// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package camera

import (
	"encoding/json"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MQTTSource holds the most recent sample published by the camera driver.
// Each sample is handed out once; Next returns ErrNoSample until a newer one
// arrives.
type MQTTSource struct {
	logger *zap.SugaredLogger

	mu     sync.Mutex
	latest Sample
	fresh  bool
}

// NewMQTTSource subscribes to topic on client and starts collecting samples.
func NewMQTTSource(client mqtt.Client, topic string, logger *zap.SugaredLogger) (*MQTTSource, error) {
	s := &MQTTSource{logger: logger}
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		s.handle(msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, errors.Wrapf(err, "subscribe %s", topic)
	}
	logger.Infow("subscribed to camera samples", "topic", topic)
	return s, nil
}

func (s *MQTTSource) handle(payload []byte) {
	var sample Sample
	if err := json.Unmarshal(payload, &sample); err != nil {
		s.logger.Warnw("camera sample unmarshal error", "error", err)
		return
	}
	s.mu.Lock()
	s.latest = sample
	s.fresh = true
	s.mu.Unlock()
}

// Next returns the latest unread sample.
func (s *MQTTSource) Next() (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fresh {
		return Sample{}, ErrNoSample
	}
	s.fresh = false
	return s.latest, nil
}
