// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package tour

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghaith435/DrobSaudia-sub001/internal/dispatch"
	"github.com/ghaith435/DrobSaudia-sub001/internal/geofence"
	"github.com/ghaith435/DrobSaudia-sub001/internal/logger"
	"github.com/ghaith435/DrobSaudia-sub001/internal/tracker"
)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithBadge sets the badge awarded on completion.
func WithBadge(badgeID string) SessionOption {
	return func(s *Session) { s.badgeID = badgeID }
}

// Session owns one tour run: the ordered waypoint list, the manual navigation
// cursor, the visited set and the lifecycle status. It consumes geofence
// events and dispatches narration and the completion reward. A session is
// single-use; a new tour requires a new Session with a fresh geofence engine.
type Session struct {
	id         string
	tourID     string
	badgeID    string
	waypoints  []Waypoint
	trk        *tracker.Tracker
	dispatcher *dispatch.Dispatcher
	log        *logger.Logger

	mu        sync.Mutex
	current   int
	visited   map[string]struct{}
	visitLog  []Visit
	status    Status
	startedAt time.Time
	endedAt   time.Time
	done      chan struct{}
}

// Visit records a single waypoint arrival, in visit order.
type Visit struct {
	WaypointID string
	At         time.Time
}

// NewSession creates a session for the given tour. The tracker must be a
// fresh instance scoped to this session.
func NewSession(tourID string, waypoints []Waypoint, trk *tracker.Tracker,
	dispatcher *dispatch.Dispatcher, log *logger.Logger, opts ...SessionOption,
) (*Session, error) {
	if len(waypoints) == 0 {
		return nil, ErrNoWaypoints
	}
	s := &Session{
		id:         uuid.NewString(),
		tourID:     tourID,
		badgeID:    tourID + "-finisher",
		waypoints:  waypoints,
		trk:        trk,
		dispatcher: dispatcher,
		log:        log,
		visited:    make(map[string]struct{}),
		status:     NotStarted,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// TourID returns the tour this session runs.
func (s *Session) TourID() string { return s.tourID }

// BadgeID returns the badge awarded when this session completes.
func (s *Session) BadgeID() string { return s.badgeID }

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Done returns a channel that is closed once the session reaches a terminal
// status, whether by completion or by End.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Waypoints returns the ordered waypoint list.
func (s *Session) Waypoints() []Waypoint { return s.waypoints }

// Zones returns the geofence zones for this session's waypoints.
func (s *Session) Zones() []geofence.Zone { return ZonesFor(s.waypoints) }

// Tracker returns the session-scoped location tracker.
func (s *Session) Tracker() *tracker.Tracker { return s.trk }

// Start transitions NotStarted -> Active, begins continuous tracking and
// narrates the tour introduction. Starting a session twice is an error.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.status != NotStarted {
		s.mu.Unlock()
		return ErrNotActive
	}
	s.status = Active
	s.startedAt = time.Now()
	intro := s.waypoints[0]
	s.mu.Unlock()

	if err := s.trk.Start(ctx, tracker.Continuous); err != nil {
		return err
	}
	s.log.Info("tour session started", slog.String("session", s.id),
		slog.String("tour", s.tourID), slog.Int("waypoints", len(s.waypoints)))
	s.dispatcher.Narrate(ctx, intro.Narration)
	return nil
}

// HandleEvent consumes one geofence event. Only Enter events for a waypoint
// of this tour advance progress; anything else is ignored, so malformed or
// stale zone input can never corrupt the session.
func (s *Session) HandleEvent(ctx context.Context, ev geofence.Event) {
	if ev.Kind != geofence.Enter {
		return
	}
	s.MarkVisited(ctx, ev.Zone.ID)
}

// MarkVisited records a waypoint visit, manually or via proximity. The
// visited-set check makes it idempotent: GPS jitter re-entering a zone can
// never narrate twice or double-fire the completion reward. Visiting the
// last waypoint in tour order completes the tour.
func (s *Session) MarkVisited(ctx context.Context, waypointID string) {
	s.mu.Lock()
	if s.status != Active {
		s.mu.Unlock()
		return
	}
	wp, ok := s.waypointByID(waypointID)
	if !ok {
		s.mu.Unlock()
		s.log.Debug("ignoring visit for unknown waypoint", slog.String("waypoint", waypointID))
		return
	}
	if _, seen := s.visited[waypointID]; seen {
		s.mu.Unlock()
		return
	}
	s.visited[waypointID] = struct{}{}
	s.visitLog = append(s.visitLog, Visit{WaypointID: waypointID, At: time.Now()})

	completed := waypointID == s.waypoints[len(s.waypoints)-1].ID
	if completed {
		s.status = Completed
		s.endedAt = time.Now()
		close(s.done)
	}
	s.mu.Unlock()

	s.log.Info("waypoint visited", slog.String("session", s.id), slog.String("waypoint", waypointID))
	s.dispatcher.Narrate(ctx, wp.Narration)

	if completed {
		s.trk.Stop()
		s.dispatcher.RewardCompletion(s.tourID, s.badgeID)
		s.log.Info("tour completed", slog.String("session", s.id), slog.String("tour", s.tourID))
	}
}

// Next advances the manual navigation cursor. It never touches the visited
// set: the cursor is a UI affordance independent of physical proximity.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.waypoints)-1 {
		s.current++
	}
}

// Prev moves the manual navigation cursor back.
func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 0 {
		s.current--
	}
}

// Current returns the waypoint under the manual navigation cursor.
func (s *Session) Current() Waypoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waypoints[s.current]
}

// CurrentIndex returns the manual navigation cursor.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Visited reports whether the given waypoint has been visited.
func (s *Session) Visited(waypointID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.visited[waypointID]
	return ok
}

// VisitedCount returns the number of visited waypoints.
func (s *Session) VisitedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visited)
}

// Visits returns the visit log in arrival order.
func (s *Session) Visits() []Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	visits := make([]Visit, len(s.visitLog))
	copy(visits, s.visitLog)
	return visits
}

// NextUnvisited returns the first waypoint in tour order that has not been
// visited yet.
func (s *Session) NextUnvisited() (Waypoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, wp := range s.waypoints {
		if _, seen := s.visited[wp.ID]; !seen {
			return wp, true
		}
	}
	return Waypoint{}, false
}

// End aborts the session: Active -> Ended. It stops tracking and cancels any
// in-flight narration. Ending a terminal session is a no-op.
func (s *Session) End() {
	s.mu.Lock()
	if s.status != Active {
		s.mu.Unlock()
		return
	}
	s.status = Ended
	s.endedAt = time.Now()
	close(s.done)
	s.mu.Unlock()

	s.trk.Stop()
	s.dispatcher.CancelNarration()
	s.log.Info("tour session ended", slog.String("session", s.id), slog.String("tour", s.tourID))
}

// StartedAt returns when the session became Active.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// EndedAt returns when the session reached a terminal status.
func (s *Session) EndedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// waypointByID must be called with s.mu held.
func (s *Session) waypointByID(id string) (Waypoint, bool) {
	for _, wp := range s.waypoints {
		if wp.ID == id {
			return wp, true
		}
	}
	return Waypoint{}, false
}
