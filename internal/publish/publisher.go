// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package publish validates navigation estimates and sends them out as one
// message per quantity.
package publish

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/relabs-tech/vio_computer/internal/nav"
	"github.com/relabs-tech/vio_computer/internal/vio"
)

// ErrNonFiniteValue means a derived quantity contained NaN or Inf and was
// not published.
var ErrNonFiniteValue = errors.New("non-finite value")

// Sender delivers one payload to one topic.
type Sender interface {
	Send(topic string, payload interface{}) error
}

// Topics names the output topic for each published quantity.
type Topics struct {
	Position   string
	Attitude   string
	Heading    string
	Velocity   string
	Confidence string
}

// Publisher turns estimates into messages.
type Publisher struct {
	sender Sender
	topics Topics
}

// New returns a Publisher sending through s.
func New(s Sender, topics Topics) *Publisher {
	return &Publisher{sender: s, topics: topics}
}

// Publish sends position, attitude, heading, velocity and confidence, in
// that order. A non-finite position suppresses everything; a non-finite
// attitude suppresses attitude and everything after it; a non-finite
// velocity suppresses velocity and confidence. Transport errors on one
// topic do not stop the others and are returned combined.
func (p *Publisher) Publish(est vio.Estimate, confidence float64) error {
	pos := est.Position
	if !finite(pos[:]...) {
		return errors.Wrapf(ErrNonFiniteValue, "position %v", pos)
	}
	sendErr := p.sender.Send(p.topics.Position, nav.Position{N: pos[0], E: pos[1], D: pos[2]})

	rpy := est.Euler
	if !finite(rpy[:]...) {
		return multierr.Append(sendErr, errors.Wrapf(ErrNonFiniteValue, "attitude %v", rpy))
	}
	sendErr = multierr.Append(sendErr,
		p.sender.Send(p.topics.Attitude, nav.Attitude{Psi: rpy[0], Theta: rpy[1], Phi: rpy[2]}))
	sendErr = multierr.Append(sendErr,
		p.sender.Send(p.topics.Heading, nav.Heading{Degrees: est.Heading()}))

	vel := est.Velocity
	if !finite(vel[:]...) {
		return multierr.Append(sendErr, errors.Wrapf(ErrNonFiniteValue, "velocity %v", vel))
	}
	sendErr = multierr.Append(sendErr,
		p.sender.Send(p.topics.Velocity, nav.Velocity{N: vel[0], E: vel[1], D: vel[2]}))

	if !finite(confidence) {
		return multierr.Append(sendErr, errors.Wrapf(ErrNonFiniteValue, "confidence %v", confidence))
	}
	return multierr.Append(sendErr,
		p.sender.Send(p.topics.Confidence, nav.Confidence{Tracker: confidence}))
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
