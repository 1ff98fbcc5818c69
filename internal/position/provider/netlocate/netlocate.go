// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package netlocate provides a coarse position provider that resolves nearby
// wifi access points against a BeaconDB/Ichnaea-style geolocation API. It is
// a fallback for urban tours when no GNSS fix is available.
package netlocate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mdlayher/wifi"

	"github.com/ghaith435/DrobSaudia-sub001/internal/http"
	"github.com/ghaith435/DrobSaudia-sub001/internal/position"
)

const (
	apiEndpoint   = "https://api.beacondb.net/v1/geolocate"
	lookupTimeout = time.Second * 5
	wifiScanTime  = time.Minute * 2
	lookupPeriod  = time.Minute
)

// Provider resolves wifi surroundings to a position.
type Provider struct {
	name     string
	http     *http.Client
	wlan     *wifi.Client
	period   time.Duration
	locateFn func(ctx context.Context) (position.Fix, error)

	apLock sync.RWMutex
	aps    []wirelessNetwork
}

type apiResult struct {
	Location struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

type wirelessNetwork struct {
	LastSeen       int64  `json:"age"`
	MACAddress     string `json:"macAddress"`
	SignalStrength int32  `json:"signalStrength"`
}

// New creates a netlocate provider using the given HTTP client.
func New(httpClient *http.Client) (*Provider, error) {
	if httpClient == nil {
		return nil, errors.New("http client is required")
	}
	wlan, err := wifi.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create wifi client: %w", err)
	}

	provider := &Provider{
		name:   "netlocate",
		http:   httpClient,
		wlan:   wlan,
		period: lookupPeriod,
	}
	provider.locateFn = provider.locate
	return provider, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// Stream periodically resolves the wifi surroundings and emits a fix per
// lookup. Lookup failures are skipped silently; the wifi scan loop keeps the
// access point list fresh in the background.
func (p *Provider) Stream(ctx context.Context) (<-chan position.Fix, <-chan error) {
	out := make(chan position.Fix)
	errs := make(chan error, 1)

	go p.monitorWifiAccessPoints(ctx)
	go func() {
		defer close(out)
		firstRun := true

		for {
			if !firstRun {
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.period):
				}
			}
			firstRun = false

			fix, err := p.locateFn(ctx)
			if err != nil {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- fix:
			}
		}
	}()

	return out, errs
}

// Once performs a single scan-and-resolve cycle.
func (p *Provider) Once(ctx context.Context) (position.Fix, error) {
	list, err := p.wifiAccessPoints()
	if err == nil && len(list) > 0 {
		p.apLock.Lock()
		p.aps = list
		p.apLock.Unlock()
	}

	fix, err := p.locateFn(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return position.Fix{}, position.ErrTimeout
		}
		return position.Fix{}, fmt.Errorf("%w: %s", position.ErrPositionUnavailable, err)
	}
	return fix, nil
}

func (p *Provider) monitorWifiAccessPoints(ctx context.Context) {
	firstRun := true
	for {
		if !firstRun {
			select {
			case <-ctx.Done():
				return
			case <-time.After(wifiScanTime):
			}
		}
		firstRun = false

		list, err := p.wifiAccessPoints()
		if err != nil {
			continue
		}
		p.apLock.Lock()
		p.aps = list
		p.apLock.Unlock()
	}
}

func (p *Provider) wifiAccessPoints() ([]wirelessNetwork, error) {
	var checkIfaces []*wifi.Interface
	var list []wirelessNetwork

	ifaces, err := p.wlan.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Type != wifi.InterfaceTypeStation {
			continue
		}
		checkIfaces = append(checkIfaces, iface)
	}
	if len(checkIfaces) == 0 {
		return nil, nil
	}

	for _, iface := range checkIfaces {
		aps, err := p.wlan.AccessPoints(iface)
		if err != nil {
			continue
		}
		for _, ap := range aps {
			if ap.SSID == "" || ap.SSID[0] == '\x00' || strings.HasSuffix(ap.SSID, "_nomap") {
				continue
			}
			list = append(list, wirelessNetwork{
				SignalStrength: ap.Signal / 100,
				MACAddress:     ap.BSSID.String(),
				LastSeen:       ap.LastSeen.Milliseconds(),
			})
		}
	}

	return list, nil
}

func (p *Provider) locate(ctx context.Context) (position.Fix, error) {
	p.apLock.RLock()
	wifiList := p.aps
	p.apLock.RUnlock()

	type request struct {
		ConsiderIP   bool              `json:"considerIp"`
		Accesspoints []wirelessNetwork `json:"wifiAccessPoints,omitempty"`
	}
	req := request{
		ConsiderIP:   true,
		Accesspoints: wifiList,
	}
	bodyBuffer := bytes.NewBuffer(nil)
	if err := json.NewEncoder(bodyBuffer).Encode(req); err != nil {
		return position.Fix{}, fmt.Errorf("failed to encode wifi list to JSON: %w", err)
	}

	ctxHTTP, cancelHTTP := context.WithTimeout(ctx, lookupTimeout)
	defer cancelHTTP()
	result := new(apiResult)
	if _, err := p.http.Post(ctxHTTP, apiEndpoint, result, bodyBuffer,
		map[string]string{"Content-Type": "application/json"}); err != nil {
		return position.Fix{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}

	return position.Fix{
		Lat:            result.Location.Latitude,
		Lon:            result.Location.Longitude,
		AccuracyMeters: result.Accuracy,
		Source:         p.name,
		At:             time.Now(),
	}, nil
}
