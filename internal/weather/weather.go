// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package weather fetches current conditions for the tour area.
package weather

import (
	"context"
	"time"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
)

// Provider is implemented by each weather API backend.
type Provider interface {
	Name() string
	Current(ctx context.Context, coords geo.Coordinate) (Conditions, error)
}

// Conditions is a snapshot of the weather at one location.
type Conditions struct {
	FetchedAt   time.Time
	Coordinates geo.Coordinate

	Temperature   float64
	WindSpeed     float64
	WindDirection float64
	WeatherCode   int
	Units         Units
}

type Units struct {
	Temperature string
	WindSpeed   string
}

// Stale reports whether the snapshot is older than the given maximum age.
func (c Conditions) Stale(maxAge time.Duration) bool {
	return c.FetchedAt.IsZero() || time.Since(c.FetchedAt) > maxAge
}
