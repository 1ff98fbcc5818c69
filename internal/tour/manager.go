// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package tour

import (
	"context"
	"sync"

	"github.com/ghaith435/DrobSaudia-sub001/internal/dispatch"
	"github.com/ghaith435/DrobSaudia-sub001/internal/logger"
	"github.com/ghaith435/DrobSaudia-sub001/internal/tracker"
)

// TrackerFactory builds a fresh tracker for one session. Trackers are never
// shared between sessions: subscription lifetime equals session lifetime.
type TrackerFactory func() *tracker.Tracker

// Manager enforces the one-active-session-per-traveler rule. Starting a tour
// while another session is active is rejected; taking over is a separate,
// explicit operation.
type Manager struct {
	source     Source
	newTracker TrackerFactory
	dispatcher *dispatch.Dispatcher
	log        *logger.Logger

	// startMu serializes session starts so two concurrent StartTour calls
	// cannot both pass the single-active-session check.
	startMu sync.Mutex

	mu     sync.Mutex
	active *Session
}

// NewManager creates a session manager over the given tour source.
func NewManager(source Source, newTracker TrackerFactory, dispatcher *dispatch.Dispatcher, log *logger.Logger) *Manager {
	return &Manager{
		source:     source,
		newTracker: newTracker,
		dispatcher: dispatcher,
		log:        log,
	}
}

// StartTour loads the tour's waypoints, creates a fresh session with its own
// tracker and starts it. It returns ErrSessionAlreadyActive while another
// session is active.
func (m *Manager) StartTour(ctx context.Context, tourID string, opts ...SessionOption) (*Session, error) {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	if m.active != nil && m.active.Status() == Active {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyActive
	}
	m.mu.Unlock()

	return m.start(ctx, tourID, opts...)
}

// ReplaceTour ends any active session, releasing its tracker subscription,
// and then starts the requested tour.
func (m *Manager) ReplaceTour(ctx context.Context, tourID string, opts ...SessionOption) (*Session, error) {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	prev := m.active
	m.mu.Unlock()
	if prev != nil {
		prev.End()
	}
	return m.start(ctx, tourID, opts...)
}

func (m *Manager) start(ctx context.Context, tourID string, opts ...SessionOption) (*Session, error) {
	waypoints, err := m.source.Waypoints(ctx, tourID)
	if err != nil {
		return nil, err
	}

	session, err := NewSession(tourID, waypoints, m.newTracker(), m.dispatcher, m.log, opts...)
	if err != nil {
		return nil, err
	}
	if err = session.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.active = session
	m.mu.Unlock()
	return session, nil
}

// Active returns the current session, which may be in a terminal state, or
// nil if no tour was ever started.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// EndActive ends the active session, if any, and returns it.
func (m *Manager) EndActive() *Session {
	m.mu.Lock()
	session := m.active
	m.mu.Unlock()
	if session != nil {
		session.End()
	}
	return session
}
