// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
)

const (
	testHitTTL  = 200 * time.Millisecond
	testMissTTL = 200 * time.Millisecond
)

var testCoords = geo.Coordinate{Lat: 24.631209, Lon: 46.713231}

var testAddress = Address{
	DisplayName:  "Masmak Fortress, Al Imam Turki Ibn Abdullah Ibn Muhammad, Ad Dirah, Riyadh, Saudi Arabia",
	Country:      "Saudi Arabia",
	State:        "Riyadh Province",
	Municipality: "Riyadh",
	CityDistrict: "Ad Dirah",
	Postcode:     "12634",
	City:         "Riyadh",
	Street:       "Al Imam Turki Ibn Abdullah Ibn Muhammad",
}

type mockCoder struct{}

func (c *mockCoder) Name() string { return "mock" }

func (c *mockCoder) Reverse(_ context.Context, coords geo.Coordinate) (Address, error) {
	addr := testAddress
	addr.Latitude = coords.Lat
	addr.Longitude = coords.Lon
	if coords.Lat == testCoords.Lat && coords.Lon == testCoords.Lon {
		addr.AddressFound = true
	}
	if coords.Lat == 1 && coords.Lon == -1 {
		return addr, errors.New("lookup intentionally failed")
	}
	return addr, nil
}

func (c *mockCoder) Search(_ context.Context, address string) (Location, error) {
	loc := Location{Lat: testCoords.Lat, Lon: testCoords.Lon}
	if strings.Contains(address, "Masmak") {
		loc.Found = true
	}
	if address == "invalid" {
		return Location{}, errors.New("lookup intentionally failed")
	}
	return loc, nil
}

func TestNewCachedGeocoder(t *testing.T) {
	t.Run("a new geocoder should be returned", func(t *testing.T) {
		coder := NewCachedGeocoder(&mockCoder{}, testHitTTL, testMissTTL)
		if coder == nil {
			t.Fatal("expected a non-nil geocoder")
		}
		if coder.Name() != "geocoder cache using mock" {
			t.Errorf("expected geocoder name to be 'geocoder cache using mock', got %q", coder.Name())
		}
	})
}

func TestCachedGeocoder_Reverse(t *testing.T) {
	coder := NewCachedGeocoder(&mockCoder{}, testHitTTL, testMissTTL)
	t.Run("a fresh address should be returned", func(t *testing.T) {
		addr, err := coder.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
		if addr.CacheHit {
			t.Fatal("expected cache miss")
		}
		if !strings.EqualFold(addr.DisplayName, testAddress.DisplayName) {
			t.Errorf("expected address to be %q, got %q", testAddress.DisplayName, addr.DisplayName)
		}
	})
	t.Run("fetching results twice should hit the cache", func(t *testing.T) {
		addr, err := coder.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatal(err)
		}
		addr, err = coder.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.CacheHit {
			t.Error("expected cached result")
		}
	})
	t.Run("fetching a very close address should still hit the cache", func(t *testing.T) {
		if _, err := coder.Reverse(t.Context(), testCoords); err != nil {
			t.Fatal(err)
		}
		addr, err := coder.Reverse(t.Context(), geo.Coordinate{Lat: testCoords.Lat + 0.002, Lon: testCoords.Lon - 0.002})
		if err != nil {
			t.Fatal(err)
		}
		if !addr.CacheHit {
			t.Error("expected cached result")
		}
	})
	t.Run("fetching an unknown address causes a cache miss", func(t *testing.T) {
		addr, err := coder.Reverse(t.Context(), geo.Coordinate{Lat: 2, Lon: -2})
		if err != nil {
			t.Fatal(err)
		}
		if addr.AddressFound {
			t.Fatal("expected address to be not found")
		}
		if addr.CacheHit {
			t.Error("expected cache miss")
		}
	})
	t.Run("failing lookup should return an error", func(t *testing.T) {
		if _, err := coder.Reverse(t.Context(), geo.Coordinate{Lat: 1, Lon: -1}); err == nil {
			t.Fatal("expected an error")
		}
	})
	t.Run("cache should not trigger on expired TTL", func(t *testing.T) {
		if _, err := coder.Reverse(t.Context(), testCoords); err != nil {
			t.Fatal(err)
		}
		time.Sleep(testHitTTL * 2)
		addr, err := coder.Reverse(t.Context(), testCoords)
		if err != nil {
			t.Fatal(err)
		}
		if addr.CacheHit {
			t.Error("expected cache miss")
		}
	})
}

func TestCachedGeocoder_Search(t *testing.T) {
	coder := NewCachedGeocoder(&mockCoder{}, testHitTTL, testMissTTL)
	t.Run("fresh coordinates should be returned", func(t *testing.T) {
		loc, err := coder.Search(t.Context(), "Masmak Fortress, Riyadh")
		if err != nil {
			t.Fatal(err)
		}
		if !loc.Found {
			t.Fatal("expected coordinates to be found")
		}
		if loc.CacheHit {
			t.Fatal("expected cache miss")
		}
		if loc.Lat != testCoords.Lat || loc.Lon != testCoords.Lon {
			t.Errorf("unexpected coordinates: %f/%f", loc.Lat, loc.Lon)
		}
	})
	t.Run("fetching results twice should hit the cache", func(t *testing.T) {
		if _, err := coder.Search(t.Context(), "Masmak Fortress, Riyadh"); err != nil {
			t.Fatal(err)
		}
		loc, err := coder.Search(t.Context(), "Masmak Fortress, Riyadh")
		if err != nil {
			t.Fatal(err)
		}
		if !loc.CacheHit {
			t.Error("expected cached result")
		}
	})
	t.Run("fetching an unknown address causes a cache miss", func(t *testing.T) {
		loc, err := coder.Search(t.Context(), "unknown")
		if err != nil {
			t.Fatal(err)
		}
		if loc.Found {
			t.Fatal("expected address to be not found")
		}
		if loc.CacheHit {
			t.Error("expected cache miss")
		}
	})
	t.Run("failing lookup should return an error", func(t *testing.T) {
		if _, err := coder.Search(t.Context(), "invalid"); err == nil {
			t.Fatal("expected an error")
		}
	})
	t.Run("cache should not trigger on expired TTL", func(t *testing.T) {
		if _, err := coder.Search(t.Context(), "Masmak Fortress, Riyadh"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(testHitTTL * 2)
		loc, err := coder.Search(t.Context(), "Masmak Fortress, Riyadh")
		if err != nil {
			t.Fatal(err)
		}
		if loc.CacheHit {
			t.Error("expected cache miss")
		}
	})
}

func TestAddress_Area(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want string
	}{
		{"suburb wins", Address{Suburb: "Ad Dirah", City: "Riyadh"}, "Ad Dirah"},
		{"city district next", Address{CityDistrict: "Al Olaya", City: "Riyadh"}, "Al Olaya"},
		{"city next", Address{City: "Riyadh", State: "Riyadh Province"}, "Riyadh"},
		{"state next", Address{State: "Riyadh Province", Country: "Saudi Arabia"}, "Riyadh Province"},
		{"country last", Address{Country: "Saudi Arabia"}, "Saudi Arabia"},
		{"empty address", Address{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.Area(); got != tt.want {
				t.Errorf("expected area %q, got %q", tt.want, got)
			}
		})
	}
}
