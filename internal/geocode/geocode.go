// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package geocode resolves coordinates to human-readable addresses and tour
// area names.
package geocode

import (
	"context"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
)

type Address struct {
	AddressFound bool
	CacheHit     bool
	Latitude     float64
	Longitude    float64
	DisplayName  string
	Country      string
	State        string
	Municipality string
	CityDistrict string
	Postcode     string
	City         string
	Suburb       string
	Street       string
	HouseNumber  string
}

// Location is the result of a forward address search.
type Location struct {
	Found    bool
	CacheHit bool
	Lat      float64
	Lon      float64
}

type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, coords geo.Coordinate) (Address, error)
	Search(ctx context.Context, address string) (Location, error)
}

// Area returns the most specific non-empty locality of the address, used as
// the tour area label.
func (a Address) Area() string {
	switch {
	case a.Suburb != "":
		return a.Suburb
	case a.CityDistrict != "":
		return a.CityDistrict
	case a.City != "":
		return a.City
	case a.State != "":
		return a.State
	}
	return a.Country
}
