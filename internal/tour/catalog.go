// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package tour

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// ErrTourNotFound is returned when a requested tour is not in the catalog.
var ErrTourNotFound = fmt.Errorf("tour: tour not found")

// Definition is a named tour as stored in the catalog file.
type Definition struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	BadgeID   string     `json:"badge_id"`
	Waypoints []Waypoint `json:"waypoints"`
}

// Catalog is a file-backed tour source. The file holds a JSON array of tour
// definitions and is read once at load time.
type Catalog struct {
	tours map[string]Definition
	order []string
}

// LoadCatalog reads a tour catalog from a JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tour catalog %q: %w", path, err)
	}
	var defs []Definition
	if err = json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse tour catalog %q: %w", path, err)
	}

	catalog := &Catalog{tours: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("tour catalog %q: tour without id", path)
		}
		if _, exists := catalog.tours[def.ID]; exists {
			return nil, fmt.Errorf("tour catalog %q: duplicate tour id %q", path, def.ID)
		}
		seen := make(map[string]struct{}, len(def.Waypoints))
		for i, wp := range def.Waypoints {
			if wp.ID == "" {
				return nil, fmt.Errorf("tour catalog %q: tour %q waypoint %d without id", path, def.ID, i)
			}
			if _, dup := seen[wp.ID]; dup {
				return nil, fmt.Errorf("tour catalog %q: tour %q duplicate waypoint id %q", path, def.ID, wp.ID)
			}
			seen[wp.ID] = struct{}{}
		}
		catalog.tours[def.ID] = def
		catalog.order = append(catalog.order, def.ID)
	}
	return catalog, nil
}

// Waypoints implements Source.
func (c *Catalog) Waypoints(_ context.Context, tourID string) ([]Waypoint, error) {
	def, ok := c.tours[tourID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTourNotFound, tourID)
	}
	return def.Waypoints, nil
}

// Tour returns the full definition of a tour.
func (c *Catalog) Tour(tourID string) (Definition, error) {
	def, ok := c.tours[tourID]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrTourNotFound, tourID)
	}
	return def, nil
}

// Tours lists all tour definitions in file order.
func (c *Catalog) Tours() []Definition {
	defs := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		defs = append(defs, c.tours[id])
	}
	return defs
}
