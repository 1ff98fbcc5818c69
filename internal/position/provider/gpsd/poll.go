// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/ghaith435/DrobSaudia-sub001/internal/position"
)

// tpvResponse matches the subset of gpsd's TPV report we care about.
type tpvResponse struct {
	Class string  `json:"class"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Mode  int     `json:"mode"`
	Track float64 `json:"track"`
	Speed float64 `json:"speed"`
	Epx   float64 `json:"epx"`
	Epy   float64 `json:"epy"`
	Eph   float64 `json:"eph"`
}

// pollTPV requests a WATCH on an established gpsd connection and scans for
// the first TPV response with at least a 2D fix.
func pollTPV(ctx context.Context, conn io.ReadWriter) (position.Fix, error) {
	var zero position.Fix

	if _, err := fmt.Fprint(conn, `?WATCH={"enable":true,"json":true}`+"\n"); err != nil {
		return zero, fmt.Errorf("%w: write WATCH: %s", position.ErrPositionUnavailable, err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		var resp tpvResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}
		if resp.Class != "TPV" || resp.Mode < 2 {
			continue
		}

		acc := resp.Eph
		if acc <= 0 {
			if resp.Epx > 0 && resp.Epy > 0 {
				acc = math.Hypot(resp.Epx, resp.Epy)
			} else {
				acc = horizontalAccuracy(0, 0, resp.Mode)
			}
		}

		return position.Fix{
			Lat:            resp.Lat,
			Lon:            resp.Lon,
			AccuracyMeters: acc,
			HeadingDegrees: resp.Track,
			SpeedMps:       resp.Speed,
		}, nil
	}

	if err := scanner.Err(); err != nil {
		return zero, fmt.Errorf("%w: failed to scan gpsd response: %s", position.ErrPositionUnavailable, err)
	}
	return zero, fmt.Errorf("%w: no TPV response received from gpsd", position.ErrPositionUnavailable)
}
