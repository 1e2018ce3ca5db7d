// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/relabs-tech/vio_computer/internal/camera"
	"github.com/relabs-tech/vio_computer/internal/config"
	"github.com/relabs-tech/vio_computer/internal/nav"
	"github.com/relabs-tech/vio_computer/internal/publish"
	"github.com/relabs-tech/vio_computer/internal/vio"
)

// Transformer converts camera samples to navigation estimates.
type Transformer interface {
	Transform(camera.Sample) (vio.Estimate, error)
}

// Syncer re-anchors the estimate to a ground-truth reference.
type Syncer interface {
	Sync(nav.ResyncReference) error
}

// EstimatePublisher sends one estimate out.
type EstimatePublisher interface {
	Publish(est vio.Estimate, confidence float64) error
}

// Module is the VIO processing loop: camera samples in, navigation messages
// out, with resync references applied as they arrive.
type Module struct {
	logger      *zap.SugaredLogger
	source      camera.Source
	transformer Transformer
	syncer      Syncer
	publisher   EstimatePublisher

	continuousSync bool
	synced         atomic.Bool
}

// NewModule wires the module. With continuousSync false only the first
// successful resync is applied.
func NewModule(
	source camera.Source,
	transformer Transformer,
	syncer Syncer,
	publisher EstimatePublisher,
	continuousSync bool,
	logger *zap.SugaredLogger,
) *Module {
	return &Module{
		logger:         logger,
		source:         source,
		transformer:    transformer,
		syncer:         syncer,
		publisher:      publisher,
		continuousSync: continuousSync,
	}
}

// HandleResync applies ref unless a resync already happened and continuous
// sync is off. A failed resync does not count, so a reference that arrives
// before the first camera frame leaves the single shot unused.
func (m *Module) HandleResync(ref nav.ResyncReference) error {
	if m.synced.Load() && !m.continuousSync {
		return nil
	}
	if err := m.syncer.Sync(ref); err != nil {
		return errors.Wrap(err, "resync")
	}
	m.synced.Store(true)
	return nil
}

// ProcessTick transforms and publishes the latest camera sample, if any.
func (m *Module) ProcessTick() error {
	sample, err := m.source.Next()
	if errors.Is(err, camera.ErrNoSample) {
		m.logger.Debug("waiting on camera data")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "camera")
	}

	est, err := m.transformer.Transform(sample)
	if err != nil {
		return errors.Wrap(err, "transform")
	}
	return m.publisher.Publish(est, sample.TrackerConfidence)
}

// Run calls ProcessTick every interval until ctx is done. A failing tick
// is logged and the loop carries on.
func (m *Module) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.ProcessTick(); err != nil {
				m.logger.Warnw("tick failed", "error", err)
			}
		}
	}
}

// RunVIO connects to MQTT, subscribes to resync references, and runs the
// camera processing loop until ctx is cancelled.
func RunVIO(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) error {
	logger = logger.Named("vio")

	engine, err := vio.NewEngine(cfg.Mount(), logger)
	if err != nil {
		return err
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDVIO, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	var source camera.Source
	switch cfg.CameraSource {
	case config.CameraSourceMock:
		logger.Info("using mock camera source")
		source = camera.NewMockSource()
	default:
		source, err = camera.NewMQTTSource(client, cfg.TopicCameraSample, logger)
		if err != nil {
			return err
		}
	}

	pub := publish.New(publish.NewMQTTSender(client), cfg.Topics())
	module := NewModule(source, engine, engine, pub, cfg.ContinuousSync, logger)

	token := client.Subscribe(cfg.TopicResync, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ref nav.ResyncReference
		if err := json.Unmarshal(msg.Payload(), &ref); err != nil {
			logger.Warnw("resync unmarshal error", "error", err)
			return
		}
		if err := module.HandleResync(ref); err != nil {
			logger.Warnw("resync failed", "error", err)
		}
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return errors.Wrapf(err, "subscribe %s", cfg.TopicResync)
	}
	logger.Infow("subscribed to resync references", "topic", cfg.TopicResync)

	logger.Infow("starting camera loop", "frequency_hz", cfg.CamUpdateFreq, "continuous_sync", cfg.ContinuousSync)
	return module.Run(ctx, cfg.UpdateInterval())
}
