// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geocode"
	"github.com/ghaith435/DrobSaudia-sub001/internal/geocode/provider/nominatim"
	"github.com/ghaith435/DrobSaudia-sub001/internal/http"
	"github.com/ghaith435/DrobSaudia-sub001/internal/position"
	"github.com/ghaith435/DrobSaudia-sub001/internal/position/provider/geoclue"
	"github.com/ghaith435/DrobSaudia-sub001/internal/position/provider/gpsd"
	"github.com/ghaith435/DrobSaudia-sub001/internal/position/provider/netlocate"
	"github.com/ghaith435/DrobSaudia-sub001/internal/position/provider/track"
	"github.com/ghaith435/DrobSaudia-sub001/internal/weather"
	"github.com/ghaith435/DrobSaudia-sub001/internal/weather/provider/openmeteo"
)

func (s *Service) selectPositionProvider() (position.Provider, error) {
	switch strings.ToLower(s.config.Tracking.Provider) {
	case "gpsd":
		return gpsd.New(s.config.Tracking.GpsdHost,
			strconv.FormatUint(uint64(s.config.Tracking.GpsdPort), 10)), nil
	case "geoclue":
		return geoclue.New(), nil
	case "netlocate":
		provider, err := netlocate.New(http.New(s.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create netlocate position provider: %w", err)
		}
		return provider, nil
	case "track":
		return track.New(s.config.Tracking.TrackFile, s.config.Tracking.TrackCadence), nil
	default:
		return nil, fmt.Errorf("unsupported position provider: %s", s.config.Tracking.Provider)
	}
}

func (s *Service) selectGeocoder() geocode.Geocoder {
	lang := language.Make(s.config.Locale)
	return geocode.NewCachedGeocoder(nominatim.New(http.New(s.logger), lang),
		cacheHitTTL, cacheMissTTL)
}

func selectWeatherProvider() (weather.Provider, error) {
	provider, err := openmeteo.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create weather provider: %w", err)
	}
	return provider, nil
}
