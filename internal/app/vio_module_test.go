// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relabs-tech/vio_computer/internal/camera"
	"github.com/relabs-tech/vio_computer/internal/nav"
	"github.com/relabs-tech/vio_computer/internal/publish"
	"github.com/relabs-tech/vio_computer/internal/vio"
)

type fakeSource struct {
	samples []camera.Sample
	err     error
}

func (f *fakeSource) Next() (camera.Sample, error) {
	if f.err != nil {
		return camera.Sample{}, f.err
	}
	if len(f.samples) == 0 {
		return camera.Sample{}, camera.ErrNoSample
	}
	s := f.samples[0]
	f.samples = f.samples[1:]
	return s, nil
}

type fakeTransformer struct {
	calls int
	est   vio.Estimate
}

func (f *fakeTransformer) Transform(camera.Sample) (vio.Estimate, error) {
	f.calls++
	return f.est, nil
}

type fakeSyncer struct {
	calls int
	err   error
}

func (f *fakeSyncer) Sync(nav.ResyncReference) error {
	f.calls++
	return f.err
}

type publishCall struct {
	est        vio.Estimate
	confidence float64
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []publishCall
}

func (f *fakePublisher) Publish(est vio.Estimate, confidence float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, publishCall{est, confidence})
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestModule(src camera.Source, tr Transformer, sy Syncer, pub EstimatePublisher, continuous bool) *Module {
	return NewModule(src, tr, sy, pub, continuous, zap.NewNop().Sugar())
}

func TestHandleResyncContinuousOff(t *testing.T) {
	sy := &fakeSyncer{}
	m := newTestModule(&fakeSource{}, &fakeTransformer{}, sy, &fakePublisher{}, false)

	require.NoError(t, m.HandleResync(nav.ResyncReference{}))
	require.NoError(t, m.HandleResync(nav.ResyncReference{}))
	assert.Equal(t, 1, sy.calls)
}

func TestHandleResyncContinuousOn(t *testing.T) {
	sy := &fakeSyncer{}
	m := newTestModule(&fakeSource{}, &fakeTransformer{}, sy, &fakePublisher{}, true)

	require.NoError(t, m.HandleResync(nav.ResyncReference{}))
	require.NoError(t, m.HandleResync(nav.ResyncReference{}))
	assert.Equal(t, 2, sy.calls)
}

func TestHandleResyncFailureKeepsSingleShot(t *testing.T) {
	sy := &fakeSyncer{err: vio.ErrNoPriorFrame}
	m := newTestModule(&fakeSource{}, &fakeTransformer{}, sy, &fakePublisher{}, false)

	err := m.HandleResync(nav.ResyncReference{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, vio.ErrNoPriorFrame))

	sy.err = nil
	require.NoError(t, m.HandleResync(nav.ResyncReference{}))
	require.NoError(t, m.HandleResync(nav.ResyncReference{}))
	assert.Equal(t, 2, sy.calls)
}

func TestProcessTickEmptySource(t *testing.T) {
	tr := &fakeTransformer{}
	pub := &fakePublisher{}
	m := newTestModule(&fakeSource{}, tr, &fakeSyncer{}, pub, false)

	require.NoError(t, m.ProcessTick())
	assert.Equal(t, 0, tr.calls)
	assert.Equal(t, 0, pub.count())
}

func TestProcessTick(t *testing.T) {
	est := vio.Estimate{
		Position: mgl64.Vec3{1, 2, 3},
		Velocity: mgl64.Vec3{4, 5, 6},
		Euler:    mgl64.Vec3{7, 8, 9},
	}
	tr := &fakeTransformer{est: est}
	pub := &fakePublisher{}
	src := &fakeSource{samples: []camera.Sample{{TrackerConfidence: 0.8}}}
	m := newTestModule(src, tr, &fakeSyncer{}, pub, false)

	require.NoError(t, m.ProcessTick())
	assert.Equal(t, 1, tr.calls)
	require.Equal(t, 1, pub.count())
	assert.Equal(t, publishCall{est, 0.8}, pub.calls[0])
}

func TestProcessTickSourceError(t *testing.T) {
	tr := &fakeTransformer{}
	m := newTestModule(&fakeSource{err: fmt.Errorf("usb unplugged")}, tr, &fakeSyncer{}, &fakePublisher{}, false)

	err := m.ProcessTick()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usb unplugged")
	assert.Equal(t, 0, tr.calls)
}

// recordingSender collects published topics for the end-to-end tests.
type recordingSender struct {
	mu     sync.Mutex
	topics []string
}

func (r *recordingSender) Send(topic string, _ interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return nil
}

func TestProcessTickWithEngine(t *testing.T) {
	engine, err := vio.NewEngine(vio.MountConfig{
		Position:     mgl64.Vec3{15, 10, 10},
		Attitude:     mgl64.Vec3{0, -math.Pi / 2, math.Pi / 2},
		GroundHeight: 10,
	}, zap.NewNop().Sugar())
	require.NoError(t, err)

	topics := publish.Topics{Position: "p", Attitude: "a", Heading: "h", Velocity: "v", Confidence: "c"}
	rec := &recordingSender{}
	src := &fakeSource{samples: []camera.Sample{
		{TrackerConfidence: 1},
		{Translation: [3]float64{math.NaN(), 0, 0}, TrackerConfidence: 1},
	}}
	m := newTestModule(src, engine, engine, publish.New(rec, topics), false)

	require.Error(t, m.HandleResync(nav.ResyncReference{}))

	require.NoError(t, m.ProcessTick())
	assert.Equal(t, []string{"p", "a", "h", "v", "c"}, rec.topics)

	// position NaN: the whole group is dropped and the error surfaces
	err = m.ProcessTick()
	require.Error(t, err)
	assert.True(t, errors.Is(err, publish.ErrNonFiniteValue))
	assert.Len(t, rec.topics, 5)

	require.NoError(t, m.HandleResync(nav.ResyncReference{N: 1, E: 2, D: 3}))
}

func TestRunStopsOnCancel(t *testing.T) {
	pub := &fakePublisher{}
	src := &fakeSource{samples: []camera.Sample{{}, {}, {}}}
	m := newTestModule(src, &fakeTransformer{}, &fakeSyncer{}, pub, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()

	require.Eventually(t, func() bool { return pub.count() == 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
