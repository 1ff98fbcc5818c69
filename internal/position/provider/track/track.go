// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package track provides a position provider that replays a recorded track
// file. Field-recorded tours can be replayed against the engine without
// leaving the desk.
package track

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ghaith435/DrobSaudia-sub001/internal/position"
)

const (
	// DefaultCadence is the pause between replayed fixes.
	DefaultCadence = time.Second

	replayAccuracy = 5.0
)

// ErrNoCoordinates indicates the track file holds no parsable fixes.
var ErrNoCoordinates = fmt.Errorf("no valid coordinates found in track file")

// Provider replays "lat,lon[,accuracy]" lines from a file at a fixed cadence.
// Lines starting with # are comments.
type Provider struct {
	name    string
	path    string
	cadence time.Duration
	loadFn  func() ([]position.Fix, error)
}

// New creates a track replay provider for the given file.
func New(path string, cadence time.Duration) *Provider {
	if cadence <= 0 {
		cadence = DefaultCadence
	}
	provider := &Provider{
		name:    "track",
		path:    path,
		cadence: cadence,
	}
	provider.loadFn = provider.readFile
	return provider
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// Stream replays the recorded fixes in order, one per cadence tick, and
// closes the stream when the track is exhausted.
func (p *Provider) Stream(ctx context.Context) (<-chan position.Fix, <-chan error) {
	out := make(chan position.Fix)
	errs := make(chan error, 1)

	go func() {
		defer close(out)

		fixes, err := p.loadFn()
		if err != nil {
			errs <- fmt.Errorf("%w: %s", position.ErrPositionUnavailable, err)
			return
		}

		for i, fix := range fixes {
			if i > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.cadence):
				}
			}

			fix.At = time.Now()
			select {
			case <-ctx.Done():
				return
			case out <- fix:
			}
		}
	}()

	return out, errs
}

// Once returns the first fix of the track.
func (p *Provider) Once(ctx context.Context) (position.Fix, error) {
	if err := ctx.Err(); err != nil {
		return position.Fix{}, err
	}
	fixes, err := p.loadFn()
	if err != nil {
		return position.Fix{}, fmt.Errorf("%w: %s", position.ErrPositionUnavailable, err)
	}
	fix := fixes[0]
	fix.At = time.Now()
	return fix, nil
}

// readFile parses the track file into an ordered fix list.
func (p *Provider) readFile() ([]position.Fix, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read track file %q: %w", p.path, err)
	}

	var fixes []position.Fix
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			continue
		}
		acc := replayAccuracy
		if len(fields) > 2 {
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64); err == nil && parsed > 0 {
				acc = parsed
			}
		}
		fixes = append(fixes, position.Fix{
			Lat:            lat,
			Lon:            lon,
			AccuracyMeters: acc,
			Source:         p.name,
		})
	}

	if len(fixes) == 0 {
		return nil, ErrNoCoordinates
	}
	return fixes, nil
}
