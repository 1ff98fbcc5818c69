// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"github.com/vorlif/spreak/localize"

	"github.com/ghaith435/DrobSaudia-sub001/internal/tour"
)

// statusIcons maps session lifecycle states to their bar icons.
var statusIcons = map[tour.Status]string{
	tour.NotStarted: "🧭",
	tour.Active:     "🚶",
	tour.Completed:  "🏁",
	tour.Ended:      "⏹️",
}

// moonPhaseIcons maps moon phase names to emoji representations.
var moonPhaseIcons = map[string]string{
	"New Moon":        "🌑",
	"Waxing Crescent": "🌒",
	"First Quarter":   "🌓",
	"Waxing Gibbous":  "🌔",
	"Full Moon":       "🌕",
	"Waning Gibbous":  "🌖",
	"Third Quarter":   "🌗",
	"Waning Crescent": "🌘",
}

// wmoWeatherCodes maps WMO weather code integers to their descriptions.
var wmoWeatherCodes = map[int]localize.MsgID{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// conditionIcon returns the emoji for a WMO weather code, day or night.
func conditionIcon(code int, day bool) string {
	switch code {
	case 0, 1:
		if day {
			return "☀️"
		}
		return "🌙"
	case 2:
		if day {
			return "⛅"
		}
		return "☁️"
	case 3:
		return "☁️"
	case 45, 48:
		return "🌫️"
	case 51, 61, 80:
		if day {
			return "🌦️"
		}
		return "🌧️"
	case 53, 55, 63, 65, 81, 82:
		return "🌧️"
	case 56, 57, 66, 67, 71, 73, 75, 77, 85, 86:
		return "🌨️"
	case 95:
		return "🌩️"
	case 96, 99:
		return "⛈️"
	}
	return ""
}
