// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package dispatch bridges waypoint transitions to the narration, reward and
// navigation collaborators.
package dispatch

import (
	"context"
	"sync"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
	"github.com/ghaith435/DrobSaudia-sub001/internal/logger"
)

// Narrator plays back spoken narration. Implementations live outside this
// core; the engine only fires and cancels playback.
type Narrator interface {
	Speak(ctx context.Context, text, languageTag string) error
	Stop()
	IsSpeaking() bool
}

// Rewarder receives the single tour-completion signal.
type Rewarder interface {
	NotifyTourCompleted(tourID, badgeID string)
}

// Navigator opens turn-by-turn directions in the surrounding application.
type Navigator interface {
	OpenDirections(origin *geo.Coordinate, destination geo.Coordinate) error
}

// Dispatcher serializes narration playback with a last-triggered-wins policy:
// a new narration always cancels any narration still playing. Reward and
// navigation calls are passed through.
type Dispatcher struct {
	narrator  Narrator
	rewarder  Rewarder
	navigator Navigator
	log       *logger.Logger
	language  string

	mu sync.Mutex
}

// New creates a Dispatcher. Nil collaborators are tolerated and turn the
// corresponding dispatch into a no-op, so the engine keeps working when the
// surrounding application wires only a subset.
func New(narrator Narrator, rewarder Rewarder, navigator Navigator, language string, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		narrator:  narrator,
		rewarder:  rewarder,
		navigator: navigator,
		language:  language,
		log:       log,
	}
}

// Narrate requests playback of the given text, stopping any narration still
// in flight first.
func (d *Dispatcher) Narrate(ctx context.Context, text string) {
	if d.narrator == nil || text == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.narrator.IsSpeaking() {
		d.narrator.Stop()
	}
	if err := d.narrator.Speak(ctx, text, d.language); err != nil {
		d.log.Error("narration playback failed", logger.Err(err))
	}
}

// CancelNarration stops any in-flight narration.
func (d *Dispatcher) CancelNarration() {
	if d.narrator == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.narrator.Stop()
}

// RewardCompletion forwards the tour completion signal. The at-most-once
// guarantee is enforced by the caller's one-way Completed transition.
func (d *Dispatcher) RewardCompletion(tourID, badgeID string) {
	if d.rewarder == nil {
		return
	}
	d.rewarder.NotifyTourCompleted(tourID, badgeID)
}

// OpenDirections passes a directions request through to the navigation
// collaborator.
func (d *Dispatcher) OpenDirections(origin *geo.Coordinate, destination geo.Coordinate) error {
	if d.navigator == nil {
		return nil
	}
	return d.navigator.OpenDirections(origin, destination)
}
