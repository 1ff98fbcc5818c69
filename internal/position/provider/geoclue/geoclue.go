// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package geoclue provides a position provider backed by the GeoClue2 D-Bus
// service.
package geoclue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/ghaith435/DrobSaudia-sub001/internal/position"
)

const (
	busName     = "org.freedesktop.GeoClue2"
	managerPath = "/org/freedesktop/GeoClue2/Manager"
	managerIfc  = "org.freedesktop.GeoClue2.Manager"
	clientIfc   = "org.freedesktop.GeoClue2.Client"
	locationIfc = "org.freedesktop.GeoClue2.Location"

	// GClueAccuracyLevelExact
	accuracyLevelExact = uint32(8)
)

// DesktopID identifies this application towards the GeoClue2 agent.
const DesktopID = "drobtour"

// Provider acquires fixes from GeoClue2 over the system bus.
type Provider struct {
	name      string
	desktopID string
}

// New creates a GeoClue2 provider.
func New() *Provider {
	return &Provider{name: "geoclue", desktopID: DesktopID}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// Stream registers a GeoClue2 client and forwards every LocationUpdated
// signal as a fix until the context ends or the bus connection fails.
func (p *Provider) Stream(ctx context.Context) (<-chan position.Fix, <-chan error) {
	out := make(chan position.Fix)
	errs := make(chan error, 1)

	go func() {
		defer close(out)

		conn, clientPath, err := p.register(ctx)
		if err != nil {
			errs <- err
			return
		}
		defer func() {
			_ = conn.Object(busName, clientPath).Call(clientIfc+".Stop", 0).Err
			_ = conn.Close()
		}()

		if err = conn.AddMatchSignal(
			dbus.WithMatchObjectPath(clientPath),
			dbus.WithMatchInterface(clientIfc),
			dbus.WithMatchMember("LocationUpdated"),
		); err != nil {
			errs <- fmt.Errorf("%w: failed to match LocationUpdated: %s", position.ErrPositionUnavailable, err)
			return
		}

		signals := make(chan *dbus.Signal, 8)
		conn.Signal(signals)

		if err = conn.Object(busName, clientPath).Call(clientIfc+".Start", 0).Err; err != nil {
			errs <- mapDBusError(err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					errs <- fmt.Errorf("%w: system bus connection lost", position.ErrPositionUnavailable)
					return
				}
				if sig == nil || len(sig.Body) != 2 {
					continue
				}
				newPath, ok := sig.Body[1].(dbus.ObjectPath)
				if !ok {
					continue
				}
				fix, err := p.readLocation(conn, newPath)
				if err != nil {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- fix:
				}
			}
		}
	}()

	return out, errs
}

// Once registers a client, waits for the first location update and tears the
// client down again.
func (p *Provider) Once(ctx context.Context) (position.Fix, error) {
	var zero position.Fix

	fixes, errs := p.Stream(ctx)
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, position.ErrTimeout
		}
		return zero, ctx.Err()
	case err := <-errs:
		return zero, err
	case fix, ok := <-fixes:
		if !ok {
			return zero, position.ErrPositionUnavailable
		}
		return fix, nil
	}
}

// register connects to the system bus and obtains a configured GeoClue2
// client object.
func (p *Provider) register(ctx context.Context) (*dbus.Conn, dbus.ObjectPath, error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to connect to system bus: %s", position.ErrPositionUnavailable, err)
	}

	var clientPath dbus.ObjectPath
	if err = conn.Object(busName, managerPath).Call(managerIfc+".GetClient", 0).Store(&clientPath); err != nil {
		_ = conn.Close()
		return nil, "", mapDBusError(err)
	}

	client := conn.Object(busName, clientPath)
	if err = client.SetProperty(clientIfc+".DesktopId", dbus.MakeVariant(p.desktopID)); err != nil {
		_ = conn.Close()
		return nil, "", mapDBusError(err)
	}
	if err = client.SetProperty(clientIfc+".RequestedAccuracyLevel", dbus.MakeVariant(accuracyLevelExact)); err != nil {
		_ = conn.Close()
		return nil, "", mapDBusError(err)
	}

	return conn, clientPath, nil
}

// readLocation fetches the coordinate properties of a GeoClue2 location
// object.
func (p *Provider) readLocation(conn *dbus.Conn, path dbus.ObjectPath) (position.Fix, error) {
	var zero position.Fix
	loc := conn.Object(busName, path)

	lat, err := locationProp(loc, "Latitude")
	if err != nil {
		return zero, err
	}
	lon, err := locationProp(loc, "Longitude")
	if err != nil {
		return zero, err
	}
	acc, err := locationProp(loc, "Accuracy")
	if err != nil {
		return zero, err
	}
	// Heading and speed are optional and report negative values when unknown.
	heading, _ := locationProp(loc, "Heading")
	speed, _ := locationProp(loc, "Speed")
	if heading < 0 {
		heading = 0
	}
	if speed < 0 {
		speed = 0
	}

	return position.Fix{
		Lat:            lat,
		Lon:            lon,
		AccuracyMeters: acc,
		HeadingDegrees: heading,
		SpeedMps:       speed,
		Source:         p.name,
		At:             time.Now(),
	}, nil
}

func locationProp(obj dbus.BusObject, prop string) (float64, error) {
	variant, err := obj.GetProperty(locationIfc + "." + prop)
	if err != nil {
		return 0, err
	}
	value, ok := variant.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected type for %s", prop)
	}
	return value, nil
}

// mapDBusError translates GeoClue2 agent denials into the typed permission
// error; everything else is a position failure.
func mapDBusError(err error) error {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) && strings.Contains(dbusErr.Name, "AccessDenied") {
		return fmt.Errorf("%w: %s", position.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %s", position.ErrPositionUnavailable, err)
}
