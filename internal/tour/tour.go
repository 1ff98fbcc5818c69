// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package tour implements the guided-tour session state machine: waypoint
// progression, visit tracking and the side effects fired on arrival.
package tour

import (
	"context"
	"errors"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geofence"
)

var (
	// ErrSessionAlreadyActive is returned when a tour is started while another
	// session is still active.
	ErrSessionAlreadyActive = errors.New("tour: a session is already active")
	// ErrNoWaypoints is returned when a tour has an empty waypoint list.
	ErrNoWaypoints = errors.New("tour: tour has no waypoints")
	// ErrNotActive is returned for operations that require an active session.
	ErrNotActive = errors.New("tour: session is not active")
)

// Waypoint is a tour-defined point of interest. Order within the tour is
// significant: visiting the last waypoint completes the tour.
type Waypoint struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	RadiusMeters    float64 `json:"radius_meters"`
	DurationMinutes int     `json:"duration_minutes"`
	Narration       string  `json:"narration"`
}

// Source returns the ordered waypoint list for a tour. This core only reads
// tour data; the catalog and its persistence live in the surrounding
// application.
type Source interface {
	Waypoints(ctx context.Context, tourID string) ([]Waypoint, error)
}

// Status describes the lifecycle state of a session. Transitions are one-way:
// NotStarted -> Active -> Completed or Ended.
type Status int

const (
	NotStarted Status = iota
	Active
	Completed
	Ended
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Active:
		return "active"
	case Completed:
		return "completed"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == Completed || s == Ended
}

// ZonesFor builds one geofence zone per waypoint, keyed 1:1 by waypoint ID
// and preserving waypoint order.
func ZonesFor(waypoints []Waypoint) []geofence.Zone {
	zones := make([]geofence.Zone, 0, len(waypoints))
	for _, wp := range waypoints {
		zones = append(zones, geofence.Zone{
			ID:           wp.ID,
			Name:         wp.Name,
			Lat:          wp.Lat,
			Lon:          wp.Lon,
			RadiusMeters: wp.RadiusMeters,
			Active:       true,
		})
	}
	return zones
}
