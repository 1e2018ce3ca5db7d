// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package vio turns tracking-camera samples into navigation-frame estimates.
//
// An Engine owns one Registry of frame transforms. Calibrate fills the
// static mount entries once; Transform runs for every camera sample; Sync
// re-anchors the estimate whenever a ground-truth fix arrives. Transform and
// Sync may be called from different goroutines.
package vio

import (
	"go.uber.org/zap"

	"github.com/relabs-tech/vio_computer/internal/camera"
	"github.com/relabs-tech/vio_computer/internal/nav"
)

// Engine bundles the registry with the transformer and resynchronizer that
// share it.
type Engine struct {
	reg         *Registry
	transformer *Transformer
	resync      *Resynchronizer
}

// NewEngine calibrates a fresh registry from cfg. An invalid mount
// configuration is returned as ErrInvalidMountConfig.
func NewEngine(cfg MountConfig, logger *zap.SugaredLogger) (*Engine, error) {
	reg := NewRegistry()
	if err := Calibrate(reg, cfg); err != nil {
		return nil, err
	}
	return &Engine{
		reg:         reg,
		transformer: NewTransformer(reg),
		resync:      NewResynchronizer(reg, logger),
	}, nil
}

// Transform converts one camera sample. See Transformer.Transform.
func (e *Engine) Transform(s camera.Sample) (Estimate, error) {
	return e.transformer.Transform(s)
}

// Sync recomputes the drift correction. See Resynchronizer.Sync.
func (e *Engine) Sync(ref nav.ResyncReference) error {
	return e.resync.Sync(ref)
}

// Registry exposes the underlying transform store.
func (e *Engine) Registry() *Registry {
	return e.reg
}
