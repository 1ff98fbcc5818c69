// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package position defines the position provider contract and the canonical
// fix type produced by all providers.
package position

import (
	"context"
	"errors"
	"time"
)

// DefaultOnceDeadline is the safety-net deadline providers apply to one-shot
// requests when the caller's context carries none.
const DefaultOnceDeadline = 10 * time.Second

var (
	// ErrPermissionDenied indicates the platform refused access to location data.
	ErrPermissionDenied = errors.New("position: permission denied")
	// ErrPositionUnavailable indicates no position could be determined.
	ErrPositionUnavailable = errors.New("position: position unavailable")
	// ErrTimeout indicates a position request did not complete in time.
	ErrTimeout = errors.New("position: request timed out")
)

// Fix is a single raw position report from a provider.
type Fix struct {
	Lat            float64
	Lon            float64
	AccuracyMeters float64
	HeadingDegrees float64
	SpeedMps       float64
	Source         string
	At             time.Time
}

// Provider supplies position fixes, either as a continuous push stream or as
// a single one-shot request.
type Provider interface {
	Name() string
	// Stream starts a continuous subscription. The fix channel is closed when
	// the subscription ends, whether by context cancellation or by a
	// provider-side failure. A terminal failure is reported on the error
	// channel (buffered, at most one send) before the fix channel closes.
	Stream(ctx context.Context) (<-chan Fix, <-chan error)
	// Once requests a single fix. It honors the context deadline and returns
	// ErrTimeout when it expires.
	Once(ctx context.Context) (Fix, error)
}
