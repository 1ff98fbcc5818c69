// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package config loads the tour engine configuration from file and
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv      = "DROBTOUR"
	DefaultTextTpl = "{{.StatusIcon}} {{.TourName}} {{.VisitedCount}}/{{.WaypointCount}}"
	DefaultDetailTpl = "Tour: {{.TourName}}\nNext stop: {{.NextWaypoint}} ({{hum .NextDistance}}m)\n" +
		"Visited: {{.VisitedCount}} of {{.WaypointCount}}\nWeather: {{.ConditionIcon}} {{.Temperature}}°C\n" +
		"Sunset: {{timeFormat .SunsetTime \"15:04\"}}\nMoon: {{.MoonphaseIcon}} {{.Moonphase}}"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Tracking struct {
		// Allowed values: gpsd, geoclue, netlocate, track
		Provider       string        `fig:"provider" default:"geoclue"`
		GpsdHost       string        `fig:"gpsd_host" default:"localhost"`
		GpsdPort       uint          `fig:"gpsd_port" default:"2947"`
		TrackFile      string        `fig:"track_file"`
		TrackCadence   time.Duration `fig:"track_cadence" default:"1s"`
		OneShotTimeout time.Duration `fig:"oneshot_timeout" default:"10s"`
		Resubscribe    bool          `fig:"resubscribe"`
	} `fig:"tracking"`

	Geofence struct {
		DefaultRadiusMeters float64       `fig:"default_radius_meters" default:"50"`
		DwellAfter          time.Duration `fig:"dwell_after"`
	} `fig:"geofence"`

	Tours struct {
		File string `fig:"file"`
	} `fig:"tours"`

	Narration struct {
		Disable bool `fig:"disable"`
	} `fig:"narration"`

	Archive struct {
		File string `fig:"file"`
	} `fig:"archive"`

	Intervals struct {
		Progress      time.Duration `fig:"progress" default:"30s"`
		WeatherUpdate time.Duration `fig:"weather_update" default:"15m"`
	} `fig:"intervals"`

	Templates struct {
		Text   string `fig:"text"`
		Detail string `fig:"detail"`
	} `fig:"templates"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	switch c.Tracking.Provider {
	case "gpsd", "geoclue", "netlocate", "track":
	default:
		return fmt.Errorf("invalid tracking provider: %s", c.Tracking.Provider)
	}
	if c.Tracking.Provider == "track" && c.Tracking.TrackFile == "" {
		return fmt.Errorf("tracking provider %q requires a track file", c.Tracking.Provider)
	}
	if c.Tracking.OneShotTimeout <= 0 {
		return fmt.Errorf("invalid oneshot timeout: %s", c.Tracking.OneShotTimeout)
	}
	if c.Geofence.DefaultRadiusMeters <= 0 {
		return fmt.Errorf("invalid default geofence radius: %f", c.Geofence.DefaultRadiusMeters)
	}
	if c.Geofence.DwellAfter < 0 {
		return fmt.Errorf("invalid dwell threshold: %s", c.Geofence.DwellAfter)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.Detail == "" {
		c.Templates.Detail = DefaultDetailTpl
	}
	if c.Archive.File == "" {
		home, _ := os.UserHomeDir()
		c.Archive.File = filepath.Join(home, ".local", "share", "drobtour", "sessions.db")
	}
	if c.Tours.File == "" {
		home, _ := os.UserHomeDir()
		c.Tours.File = filepath.Join(home, ".config", "drobtour", "tours.json")
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
