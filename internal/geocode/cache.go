// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
)

// coordPrecision is the precision used to quantize coordinates (0.01 degrees ≈ 1.1 km)
const coordPrecision = 1e-2

type cacheKey struct {
	Provider string
	LatQ     int32
	LonQ     int32
}

type cacheEntry struct {
	Address Address
	Expiry  time.Time
}

type searchEntry struct {
	Location Location
	Expiry   time.Time
}

type CachedGeocoder struct {
	coder   Geocoder
	ttlHit  time.Duration
	ttlMiss time.Duration

	mu     sync.RWMutex
	cache  map[cacheKey]cacheEntry
	search map[string]searchEntry
}

func NewCachedGeocoder(coder Geocoder, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	return &CachedGeocoder{
		coder:   coder,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
		cache:   make(map[cacheKey]cacheEntry),
		search:  make(map[string]searchEntry),
	}
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Reverse(ctx context.Context, coords geo.Coordinate) (Address, error) {
	key := newKey(c.coder.Name(), coords.Lat, coords.Lon)

	c.mu.RLock()
	entry, ok := c.cache[key]
	if ok && time.Now().Before(entry.Expiry) {
		addr := entry.Address
		c.mu.RUnlock()
		addr.CacheHit = true
		return addr, nil
	}
	c.mu.RUnlock()

	addr, err := c.coder.Reverse(ctx, coords)
	if err != nil {
		return addr, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttlHit
	if !addr.AddressFound {
		ttl = c.ttlMiss
	}
	c.cache[key] = cacheEntry{
		Address: addr,
		Expiry:  time.Now().Add(ttl),
	}

	return addr, nil
}

func (c *CachedGeocoder) Search(ctx context.Context, address string) (Location, error) {
	key := c.coder.Name() + "\x00" + address

	c.mu.RLock()
	entry, ok := c.search[key]
	if ok && time.Now().Before(entry.Expiry) {
		loc := entry.Location
		c.mu.RUnlock()
		loc.CacheHit = true
		return loc, nil
	}
	c.mu.RUnlock()

	loc, err := c.coder.Search(ctx, address)
	if err != nil {
		return loc, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttlHit
	if !loc.Found {
		ttl = c.ttlMiss
	}
	c.search[key] = searchEntry{
		Location: loc,
		Expiry:   time.Now().Add(ttl),
	}

	return loc, nil
}

func quantizeCoord(val float64) int32 {
	return int32(math.Round(val / coordPrecision))
}

func newKey(provider string, lat, lon float64) cacheKey {
	return cacheKey{
		Provider: provider,
		LatQ:     quantizeCoord(lat),
		LonQ:     quantizeCoord(lon),
	}
}
