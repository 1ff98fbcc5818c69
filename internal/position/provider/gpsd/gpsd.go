// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package gpsd provides a position provider backed by a local gpsd daemon.
package gpsd

import (
	"context"
	"fmt"
	"math"
	"net"
	"time"

	gpsdclient "github.com/stratoberry/go-gpsd"

	"github.com/ghaith435/DrobSaudia-sub001/internal/position"
)

const (
	DefaultHost = "localhost"
	DefaultPort = "2947"

	// ~10 m typical consumer GPS in open sky
	fallbackAccuracy3DFix = 10
	fallbackAccuracy2DFix = 25
	fallbackAccuracyNoFix = 1e6
)

// Provider streams TPV reports from gpsd and answers one-shot requests via a
// raw POLL/WATCH exchange.
type Provider struct {
	name string
	addr string
}

// New creates a gpsd provider for the given host and port. Empty values fall
// back to the local default daemon address.
func New(host, port string) *Provider {
	if host == "" {
		host = DefaultHost
	}
	if port == "" {
		port = DefaultPort
	}
	return &Provider{
		name: "gpsd",
		addr: net.JoinHostPort(host, port),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// Stream opens a watch session against gpsd and forwards every TPV report
// with at least a 2D fix. When the connection ends or cannot be established,
// the failure is reported and the fix channel is closed; reacquisition is the
// caller's policy, not the provider's.
func (p *Provider) Stream(ctx context.Context) (<-chan position.Fix, <-chan error) {
	out := make(chan position.Fix)
	errs := make(chan error, 1)

	go func() {
		defer close(out)

		session, err := gpsdclient.Dial(p.addr)
		if err != nil {
			errs <- fmt.Errorf("%w: failed to connect to gpsd at %q: %s",
				position.ErrPositionUnavailable, p.addr, err)
			return
		}

		session.AddFilter("TPV", func(r interface{}) {
			tpv, ok := r.(*gpsdclient.TPVReport)
			if !ok {
				return
			}

			// Need at least a 2D fix
			if tpv.Mode < gpsdclient.Mode2D {
				return
			}

			fix := position.Fix{
				Lat:            tpv.Lat,
				Lon:            tpv.Lon,
				AccuracyMeters: horizontalAccuracy(tpv.Epx, tpv.Epy, int(tpv.Mode)),
				HeadingDegrees: tpv.Track,
				SpeedMps:       tpv.Speed,
				Source:         p.name,
				At:             tpv.Time,
			}

			select {
			case <-ctx.Done():
				// Caller is done; just stop sending.
			case out <- fix:
			}
		})

		// Watch() returns a channel that closes when the watch ends
		// (e.g. connection lost).
		done := session.Watch()

		select {
		case <-ctx.Done():
			// Context canceled; the process exiting tears down the gpsd
			// connection, go-gpsd itself has no Close().
		case <-done:
			errs <- fmt.Errorf("%w: gpsd watch ended", position.ErrPositionUnavailable)
		}
	}()

	return out, errs
}

// Once connects to gpsd, requests a WATCH and returns the first TPV entry
// seen. The connection is closed before returning.
func (p *Provider) Once(ctx context.Context) (position.Fix, error) {
	var zero position.Fix

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return zero, fmt.Errorf("%w: dial gpsd: %s", position.ErrPositionUnavailable, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	// Respect the context deadline if present, otherwise add a safety net so
	// we don't hang forever.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(position.DefaultOnceDeadline))
	}

	fix, err := pollTPV(ctx, conn)
	if err != nil {
		return zero, err
	}
	fix.Source = p.name
	return fix, nil
}

func horizontalAccuracy(epx, epy float64, mode int) float64 {
	if epx > 0 && epy > 0 {
		// sqrt(epx² + epy²)
		return math.Hypot(epx, epy)
	}
	switch mode {
	case 3:
		return fallbackAccuracy3DFix
	case 2:
		return fallbackAccuracy2DFix
	default:
		return fallbackAccuracyNoFix
	}
}
