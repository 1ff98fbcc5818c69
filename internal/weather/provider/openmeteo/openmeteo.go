// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package openmeteo implements a weather provider backed by the Open-Meteo
// API.
package openmeteo

import (
	"context"
	"fmt"
	"time"

	"github.com/hectormalot/omgo"

	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
	"github.com/ghaith435/DrobSaudia-sub001/internal/weather"
)

const name = "open-meteo"

type OpenMeteo struct {
	client omgo.Client
}

func New() (*OpenMeteo, error) {
	client, err := omgo.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo client: %w", err)
	}
	return &OpenMeteo{client: client}, nil
}

func (o *OpenMeteo) Name() string {
	return name
}

func (o *OpenMeteo) Current(ctx context.Context, coords geo.Coordinate) (weather.Conditions, error) {
	loc, err := omgo.NewLocation(coords.Lat, coords.Lon)
	if err != nil {
		return weather.Conditions{}, fmt.Errorf("failed to create Open-Meteo location from coordinates: %w", err)
	}

	opts := &omgo.Options{
		Timezone:        "auto",
		TemperatureUnit: "celsius",
		WindspeedUnit:   "kmh",
	}
	current, err := o.client.CurrentWeather(ctx, loc, opts)
	if err != nil {
		return weather.Conditions{}, fmt.Errorf("failed to get current weather data: %w", err)
	}

	return weather.Conditions{
		FetchedAt:     time.Now(),
		Coordinates:   coords,
		Temperature:   current.Temperature,
		WindSpeed:     current.WindSpeed,
		WindDirection: current.WindDirection,
		WeatherCode:   int(current.WeatherCode),
		Units: weather.Units{
			Temperature: "°C",
			WindSpeed:   "km/h",
		},
	}, nil
}
