// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package geofence evaluates position samples against circular zones and
// derives enter/exit/dwell events from membership changes.
package geofence

import (
	"time"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
	"github.com/ghaith435/DrobSaudia-sub001/internal/tracker"
)

// DefaultRadiusMeters is the effective radius for zones configured with a
// non-positive radius.
const DefaultRadiusMeters = 50.0

// Zone is a circular geographic region keyed by a stable identifier.
type Zone struct {
	ID           string
	Name         string
	Lat          float64
	Lon          float64
	RadiusMeters float64
	Active       bool
}

// EffectiveRadius returns the configured radius, falling back to fallback
// when the zone's radius is zero or negative.
func (z Zone) EffectiveRadius(fallback float64) float64 {
	if z.RadiusMeters > 0 {
		return z.RadiusMeters
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultRadiusMeters
}

// Contains reports whether the sample lies within the zone's effective radius.
func (z Zone) Contains(s tracker.Sample, fallbackRadius float64) bool {
	d := geo.DistanceMeters(s.Coordinate.Lat, s.Coordinate.Lon, z.Lat, z.Lon)
	return d <= z.EffectiveRadius(fallbackRadius)
}

// EventKind classifies a geofence transition.
type EventKind int

const (
	// Enter is emitted when a sample moves a zone into the membership set.
	Enter EventKind = iota
	// Exit is emitted when a zone leaves the membership set.
	Exit
	// Dwell is emitted once after continuous membership exceeds the engine's
	// dwell threshold. Never emitted when the threshold is zero.
	Dwell
)

func (k EventKind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	case Dwell:
		return "dwell"
	}
	return "unknown"
}

// Event describes a single zone transition derived from one sample.
type Event struct {
	Kind   EventKind
	Zone   Zone
	At     time.Time
	Sample tracker.Sample
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultRadius overrides the fallback radius applied to zones with a
// non-positive radius.
func WithDefaultRadius(meters float64) Option {
	return func(e *Engine) {
		if meters > 0 {
			e.defaultRadius = meters
		}
	}
}

// WithDwellAfter enables dwell events after the given continuous time-in-zone.
// A zero duration leaves dwell detection off.
func WithDwellAfter(d time.Duration) Option {
	return func(e *Engine) { e.dwellAfter = d }
}

// Engine computes zone membership per sample and diffs it against the previous
// evaluation. All of its state belongs to exactly one tour session; a new
// session must construct a fresh engine so membership never leaks across
// sessions.
type Engine struct {
	zones         []Zone
	defaultRadius float64
	dwellAfter    time.Duration

	prev         map[string]struct{}
	enteredAt    map[string]time.Time
	dwellEmitted map[string]struct{}
	activeZoneID string
}

// NewEngine creates an engine over the given zones. Zone order is preserved:
// when multiple zones are entered by the same sample, the last one in slice
// order becomes the active zone.
func NewEngine(zones []Zone, opts ...Option) *Engine {
	e := &Engine{
		zones:         zones,
		defaultRadius: DefaultRadiusMeters,
		prev:          make(map[string]struct{}),
		enteredAt:     make(map[string]time.Time),
		dwellEmitted:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ActiveZoneID returns the identifier of the most recently entered zone, or
// an empty string when the traveler is in no zone.
func (e *Engine) ActiveZoneID() string {
	return e.activeZoneID
}

// Evaluate computes the membership set for the sample, diffs it against the
// previous evaluation and returns the resulting events. Inactive zones are
// skipped entirely. The call is synchronous and does no I/O.
func (e *Engine) Evaluate(s tracker.Sample) []Event {
	var events []Event
	current := make(map[string]struct{}, len(e.prev))

	for _, zone := range e.zones {
		if !zone.Active {
			continue
		}
		if !zone.Contains(s, e.defaultRadius) {
			if _, was := e.prev[zone.ID]; was {
				events = append(events, Event{Kind: Exit, Zone: zone, At: s.At, Sample: s})
				delete(e.enteredAt, zone.ID)
				delete(e.dwellEmitted, zone.ID)
				if e.activeZoneID == zone.ID {
					e.activeZoneID = ""
				}
			}
			continue
		}

		current[zone.ID] = struct{}{}
		if _, was := e.prev[zone.ID]; !was {
			events = append(events, Event{Kind: Enter, Zone: zone, At: s.At, Sample: s})
			e.enteredAt[zone.ID] = s.At
			e.activeZoneID = zone.ID
			continue
		}

		// Continuously inside: no duplicate Enter, but possibly a Dwell.
		if e.dwellAfter <= 0 {
			continue
		}
		if _, done := e.dwellEmitted[zone.ID]; done {
			continue
		}
		if entered, ok := e.enteredAt[zone.ID]; ok && s.At.Sub(entered) >= e.dwellAfter {
			events = append(events, Event{Kind: Dwell, Zone: zone, At: s.At, Sample: s})
			e.dwellEmitted[zone.ID] = struct{}{}
		}
	}

	e.prev = current
	return events
}
