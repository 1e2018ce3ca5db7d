// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/vio_computer/internal/camera"
	"github.com/relabs-tech/vio_computer/internal/config"
)

// RunCameraProducer publishes mock camera samples on the raw camera topic
// at the camera update rate. It stands in for the camera driver on a bench.
func RunCameraProducer(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) error {
	logger = logger.Named("producer")

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	src := camera.NewMockSource()
	ticker := time.NewTicker(cfg.UpdateInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			sample, err := src.Next()
			if err != nil {
				logger.Warnw("error from mock source", "error", err)
				continue
			}

			payload, err := json.Marshal(sample)
			if err != nil {
				logger.Warnw("json marshal error", "error", err)
				continue
			}

			token := client.Publish(cfg.TopicCameraSample, 0, false, payload)
			token.Wait()
			if token.Error() != nil {
				logger.Warnw("MQTT publish error", "topic", cfg.TopicCameraSample, "error", token.Error())
				continue
			}

			logger.Debugw("published camera sample", "time", t.Format(time.RFC3339), "sample", sample)
		}
	}
}
