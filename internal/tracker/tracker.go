// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package tracker owns the subscription lifecycle to a position provider and
// fans normalized samples out to subscribers.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
	"github.com/ghaith435/DrobSaudia-sub001/internal/logger"
	"github.com/ghaith435/DrobSaudia-sub001/internal/position"
)

const (
	// DefaultOneShotTimeout bounds a one-shot position request.
	DefaultOneShotTimeout = 10 * time.Second

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Mode selects how the tracker acquires fixes.
type Mode int

const (
	// OneShot requests a single fix and stops.
	OneShot Mode = iota
	// Continuous keeps a push subscription open until Stop or a provider error.
	Continuous
)

// Sample is a normalized position fix. Produced only by the tracker and
// immutable once published.
type Sample struct {
	geo.Coordinate
	AccuracyMeters float64
	HeadingDegrees float64
	SpeedMps       float64
	Source         string
	At             time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithOneShotTimeout overrides the one-shot request timeout.
func WithOneShotTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.oneShotTimeout = d
		}
	}
}

// WithResubscribe enables bounded-backoff resubscription after a continuous
// subscription fails. Off by default: a provider error halts tracking and is
// surfaced via Err.
func WithResubscribe() Option {
	return func(t *Tracker) { t.resubscribe = true }
}

// Tracker holds at most one outstanding provider subscription and publishes
// the most recent sample to every subscriber. Subscriber channels are
// single-slot, latest-value-wins: a slow consumer only ever sees the newest
// sample, never a backlog.
type Tracker struct {
	provider       position.Provider
	log            *logger.Logger
	oneShotTimeout time.Duration
	resubscribe    bool

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	tracking bool
	lastErr  error
	latest   Sample
	haveFix  bool

	subMu sync.Mutex
	subs  map[chan Sample]struct{}
}

// New creates a Tracker over the given provider.
func New(provider position.Provider, log *logger.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		provider:       provider,
		log:            log,
		oneShotTimeout: DefaultOneShotTimeout,
		subs:           make(map[chan Sample]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Subscribe registers a subscriber and returns its sample channel together
// with an unsubscribe function. If a fix has already been acquired, it is
// delivered immediately.
func (t *Tracker) Subscribe() (<-chan Sample, func()) {
	ch := make(chan Sample, 1)
	t.subMu.Lock()
	t.subs[ch] = struct{}{}
	t.subMu.Unlock()

	t.mu.Lock()
	if t.haveFix {
		ch <- t.latest
	}
	t.mu.Unlock()

	unsub := func() {
		t.subMu.Lock()
		if _, ok := t.subs[ch]; ok {
			delete(t.subs, ch)
			close(ch)
		}
		t.subMu.Unlock()
	}
	return ch, unsub
}

// Start begins acquiring fixes in the given mode. Starting while already
// tracking first tears down the previous subscription, so no duplicate
// callbacks can ever be delivered. In OneShot mode the call blocks until a
// fix arrives or the request times out.
func (t *Tracker) Start(ctx context.Context, mode Mode) error {
	t.Stop()

	switch mode {
	case OneShot:
		return t.once(ctx)
	case Continuous:
		return t.stream(ctx)
	}
	return errors.New("tracker: unknown mode")
}

func (t *Tracker) once(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, t.oneShotTimeout)
	defer cancel()

	fix, err := t.provider.Once(reqCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = position.ErrTimeout
		}
		t.setErr(err)
		return err
	}

	t.setErr(nil)
	t.publish(fix)
	return nil
}

func (t *Tracker) stream(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.mu.Lock()
	t.cancel = cancel
	t.done = done
	t.tracking = true
	t.lastErr = nil
	t.mu.Unlock()

	go t.run(runCtx, done)
	return nil
}

// run consumes the provider stream until the context ends or the provider
// fails. With resubscription enabled, failures trigger a bounded exponential
// backoff before the stream is reacquired.
func (t *Tracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer t.markStopped()

	backoff := initialBackoff
	for {
		fixes, errs := t.provider.Stream(ctx)
		for fix := range fixes {
			t.publish(fix)
			backoff = initialBackoff
		}

		if ctx.Err() != nil {
			return
		}

		err := position.ErrPositionUnavailable
		select {
		case perr, ok := <-errs:
			if ok && perr != nil {
				err = perr
			}
		default:
		}
		t.setErr(err)
		t.log.Warn("position subscription ended", slog.String("provider", t.provider.Name()), logger.Err(err))

		if !t.resubscribe {
			return
		}
		if !sleepOrDone(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

// Stop releases the active subscription. It is idempotent and safe to call
// at any time, including from within sample delivery.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Tracking reports whether a continuous subscription is currently active.
func (t *Tracker) Tracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tracking
}

// Err returns the tracker's error state: the error that halted the most
// recent acquisition, or nil.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// Latest returns the most recently published sample, if any.
func (t *Tracker) Latest() (Sample, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.haveFix
}

func (t *Tracker) markStopped() {
	t.mu.Lock()
	t.tracking = false
	t.mu.Unlock()
}

func (t *Tracker) setErr(err error) {
	t.mu.Lock()
	t.lastErr = err
	t.mu.Unlock()
}

// publish normalizes a fix and delivers it to all subscribers. Delivery never
// blocks: a full subscriber slot is drained first so the newest sample wins.
func (t *Tracker) publish(fix position.Fix) {
	coord := geo.Coordinate{
		Lat: geo.Truncate(fix.Lat, geo.TruncPrecision),
		Lon: geo.Truncate(fix.Lon, geo.TruncPrecision),
	}
	if !coord.Valid() {
		t.log.Debug("discarding fix with invalid coordinates",
			slog.Float64("lat", fix.Lat), slog.Float64("lon", fix.Lon))
		return
	}

	sample := Sample{
		Coordinate:     coord,
		AccuracyMeters: fix.AccuracyMeters,
		HeadingDegrees: fix.HeadingDegrees,
		SpeedMps:       fix.SpeedMps,
		Source:         fix.Source,
		At:             fix.At,
	}
	if sample.At.IsZero() {
		sample.At = time.Now()
	}

	t.mu.Lock()
	t.latest = sample
	t.haveFix = true
	t.mu.Unlock()

	t.subMu.Lock()
	for ch := range t.subs {
		select {
		case ch <- sample:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- sample:
			default:
			}
		}
	}
	t.subMu.Unlock()
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d *= 2; d > maxBackoff {
		return maxBackoff
	}
	return d
}
