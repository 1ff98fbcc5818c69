// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
)

// ConsoleNarrator writes narration lines to a writer instead of speaking
// them. It is the fallback narrator when no speech backend is available and
// doubles as the test narrator.
type ConsoleNarrator struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleNarrator creates a narrator writing to w.
func NewConsoleNarrator(w io.Writer) *ConsoleNarrator {
	return &ConsoleNarrator{w: w}
}

// Speak writes the narration as a single prefixed line.
func (n *ConsoleNarrator) Speak(_ context.Context, text, languageTag string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintf(n.w, "[%s] %s\n", languageTag, text); err != nil {
		return fmt.Errorf("failed to write narration: %w", err)
	}
	return nil
}

// Stop is a no-op: console narration finishes synchronously.
func (n *ConsoleNarrator) Stop() {}

// IsSpeaking always reports false for the same reason.
func (n *ConsoleNarrator) IsSpeaking() bool { return false }

// ConsoleNavigator writes an OpenStreetMap directions URL to a writer so the
// traveler can open it on any device.
type ConsoleNavigator struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleNavigator creates a navigator writing to w.
func NewConsoleNavigator(w io.Writer) *ConsoleNavigator {
	return &ConsoleNavigator{w: w}
}

// OpenDirections writes a routing URL from origin to destination. A nil
// origin produces a plain destination link.
func (n *ConsoleNavigator) OpenDirections(origin *geo.Coordinate, destination geo.Coordinate) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	link := fmt.Sprintf("https://www.openstreetmap.org/?mlat=%f&mlon=%f", destination.Lat, destination.Lon)
	if origin != nil {
		query := url.Values{}
		query.Set("engine", "fossgis_osrm_foot")
		query.Set("route", fmt.Sprintf("%f,%f;%f,%f", origin.Lat, origin.Lon, destination.Lat, destination.Lon))
		link = "https://www.openstreetmap.org/directions?" + query.Encode()
	}
	if _, err := fmt.Fprintln(n.w, link); err != nil {
		return fmt.Errorf("failed to write directions link: %w", err)
	}
	return nil
}
