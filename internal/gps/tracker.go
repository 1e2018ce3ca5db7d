// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"math"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/vio_computer/internal/nav"
)

// earthRadius is the mean Earth radius in meters.
const earthRadius = 6371008.8

// Tracker turns a stream of NMEA sentences into resync references in a
// local NED frame anchored at the first valid fix. Distances use an
// equirectangular approximation, which is fine over a flying field.
type Tracker struct {
	current Fix

	haveAlt bool

	home        Fix
	haveHome    bool
	haveHomeAlt bool

	trueHeading     float64
	haveTrueHeading bool
}

// NewTracker returns a Tracker with no home point yet.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update folds one sentence into the tracker. It returns a reference, and
// true, for every valid RMC fix; other sentences only update state.
func (t *Tracker) Update(s nmea.Sentence) (nav.ResyncReference, bool) {
	switch s.DataType() {
	case nmea.TypeGGA:
		m := s.(nmea.GGA)
		if m.FixQuality == nmea.Invalid {
			return nav.ResyncReference{}, false
		}
		t.current.Altitude = m.Altitude
		t.haveAlt = true
		if t.haveHome && !t.haveHomeAlt {
			t.home.Altitude = m.Altitude
			t.haveHomeAlt = true
		}

	case nmea.TypeHDT:
		m := s.(nmea.HDT)
		t.trueHeading = m.Heading
		t.haveTrueHeading = true

	case nmea.TypeRMC:
		m := s.(nmea.RMC)
		t.current.Time = m.Time.String()
		t.current.Date = m.Date.String()
		t.current.Validity = string(m.Validity)
		if m.Validity != nmea.ValidRMC {
			return nav.ResyncReference{}, false
		}
		t.current.Latitude = m.Latitude
		t.current.Longitude = m.Longitude
		t.current.SpeedKnots = m.Speed
		t.current.CourseDeg = m.Course

		if !t.haveHome {
			t.home = t.current
			t.haveHome = true
			t.haveHomeAlt = t.haveAlt
		}
		return t.reference(), true
	}
	return nav.ResyncReference{}, false
}

// Fix returns the latest combined fix.
func (t *Tracker) Fix() Fix {
	return t.current
}

// reference converts the current fix to NED centimeters from home.
func (t *Tracker) reference() nav.ResyncReference {
	lat0 := degToRad(t.home.Latitude)
	north := degToRad(t.current.Latitude-t.home.Latitude) * earthRadius
	east := degToRad(t.current.Longitude-t.home.Longitude) * earthRadius * math.Cos(lat0)

	var down float64
	if t.haveHomeAlt {
		down = -(t.current.Altitude - t.home.Altitude)
	}

	heading := t.current.CourseDeg
	if t.haveTrueHeading {
		heading = t.trueHeading
		// one HDT per reference; fall back to course if the compass goes quiet
		t.haveTrueHeading = false
	}

	return nav.ResyncReference{
		N:       north * 100,
		E:       east * 100,
		D:       down * 100,
		Heading: heading,
	}
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}
