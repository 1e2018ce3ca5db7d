// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package vio

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Slot names one of the transforms held by a Registry.
type Slot int

const (
	MountBodyToCamera Slot = iota
	MountCameraToBody
	NavToCameraRef
	CameraRefToCameraBody
	NavToBody
	SyncedNavToBody
	DriftCorrection

	numSlots
)

var slotNames = [numSlots]string{
	MountBodyToCamera:     "mount_body_to_camera",
	MountCameraToBody:     "mount_camera_to_body",
	NavToCameraRef:        "nav_to_camera_ref",
	CameraRefToCameraBody: "camera_ref_to_camera_body",
	NavToBody:             "nav_to_body",
	SyncedNavToBody:       "synced_nav_to_body",
	DriftCorrection:       "drift_correction",
}

func (s Slot) String() string {
	if s < 0 || s >= numSlots {
		return "unknown"
	}
	return slotNames[s]
}

// Registry is the single mutable store of frame transforms. Every read and
// write goes through one lock so a reader never sees a half-written matrix.
type Registry struct {
	mu   sync.RWMutex
	tm   [numSlots]mgl64.Mat4
	have [numSlots]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Set replaces the transform in slot unconditionally.
func (r *Registry) Set(slot Slot, h mgl64.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tm[slot] = h
	r.have[slot] = true
}

// Get returns the transform in slot, or ErrMissingTransform if it was never set.
func (r *Registry) Get(slot Slot) (mgl64.Mat4, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.have[slot] {
		return mgl64.Mat4{}, errors.Wrap(ErrMissingTransform, slot.String())
	}
	return r.tm[slot], nil
}

// Load returns the transforms in slots, in order, read under one lock so
// they all come from the same moment.
func (r *Registry) Load(slots ...Slot) ([]mgl64.Mat4, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mgl64.Mat4, len(slots))
	for i, s := range slots {
		if !r.have[s] {
			return nil, errors.Wrap(ErrMissingTransform, s.String())
		}
		out[i] = r.tm[s]
	}
	return out, nil
}
