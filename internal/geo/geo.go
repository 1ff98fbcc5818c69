// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package geo provides coordinate types and great-circle distance math.
package geo

import (
	"math"
)

const (
	// EarthRadius is the mean Earth radius in meters.
	EarthRadius = 6371000.0
	// TruncPrecision is the number of decimal places coordinates are truncated to.
	TruncPrecision = 6
)

// Coordinate represents a geographic coordinate (WGS 84).
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid checks if the coordinate is within the valid latitude/longitude range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DistanceTo returns the great-circle distance in meters between c and other.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return DistanceMeters(c.Lat, c.Lon, other.Lat, other.Lon)
}

// DistanceMeters calculates the great-circle distance in meters between two
// latitude/longitude pairs using the Haversine formula. Accurate to well
// within normal GPS error over the short ranges geofencing cares about.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Truncate cuts x to the given number of decimal places.
func Truncate(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Trunc(x*p) / p
}
