// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package presenter renders tour progress as JSON status lines for desktop
// bars and similar consumers.
package presenter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/vorlif/humanize"
	arlocale "github.com/vorlif/humanize/locale/ar"
	"github.com/vorlif/spreak"
	"github.com/wneessen/go-moonphase"
	"golang.org/x/text/language"

	"github.com/ghaith435/DrobSaudia-sub001/internal/config"
	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
	"github.com/ghaith435/DrobSaudia-sub001/internal/geocode"
	"github.com/ghaith435/DrobSaudia-sub001/internal/tour"
	"github.com/ghaith435/DrobSaudia-sub001/internal/tracker"
	"github.com/ghaith435/DrobSaudia-sub001/internal/weather"
)

// OutputClass is the CSS class attached to every rendered status line.
const OutputClass = "drobtour"

// Output is the rendered status line, encoded as one JSON object per line.
type Output struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// WaypointView is a single waypoint as seen by the templates.
type WaypointView struct {
	ID             string
	Name           string
	Visited        bool
	DistanceMeters float64
}

// TemplateContext is the data handed to the text and detail templates.
type TemplateContext struct {
	SessionID  string
	TourID     string
	TourName   string
	Status     string
	StatusIcon string

	Latitude  float64
	Longitude float64
	Area      string
	Address   geocode.Address

	WaypointCount int
	VisitedCount  int
	Waypoints     []WaypointView
	NextWaypoint  string
	NextDistance  float64

	UpdateTime    time.Time
	SunriseTime   time.Time
	SunsetTime    time.Time
	IsDaytime     bool
	Moonphase     string
	MoonphaseIcon string

	Temperature            float64
	TempUnit               string
	WindSpeed              float64
	WindSpeedUnit          string
	Condition              string
	ConditionIcon          string
	ConditionIconWithSpace string
}

type Presenter struct {
	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
	text      *template.Template
	detail    *template.Template
}

// New creates a presenter from the configured templates. Both templates are
// parsed and rendered once against a zero context so broken configuration
// fails at startup, not mid-tour.
func New(conf *config.Config, localizer *spreak.Localizer) (*Presenter, error) {
	collection := humanize.MustNew(humanize.WithLocale(arlocale.New()))

	tag := language.Make(conf.Locale)
	if tag == language.Und {
		tag = language.English
	}

	pres := &Presenter{
		localizer: localizer,
		humanizer: collection.CreateHumanizer(tag),
	}

	var err error
	pres.text, err = template.New("text").Funcs(pres.templateFuncMap()).Parse(conf.Templates.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	pres.detail, err = template.New("detail").Funcs(pres.templateFuncMap()).Parse(conf.Templates.Detail)
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail template: %w", err)
	}

	if err = pres.text.Execute(io.Discard, TemplateContext{}); err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}
	if err = pres.detail.Execute(io.Discard, TemplateContext{}); err != nil {
		return nil, fmt.Errorf("failed to render detail template: %w", err)
	}

	return pres, nil
}

// BuildContext collects session progress, position, address and weather into
// one template context. Session and sample may be nil when no tour is active
// or no fix has arrived yet.
func (p *Presenter) BuildContext(session *tour.Session, tourName string, sample *tracker.Sample,
	addr geocode.Address, cond weather.Conditions,
) TemplateContext {
	tplCtx := TemplateContext{
		UpdateTime: time.Now(),
		Area:       addr.Area(),
		Address:    addr,
	}

	if sample != nil {
		tplCtx.Latitude = sample.Lat
		tplCtx.Longitude = sample.Lon
		p.fillCelestial(&tplCtx, sample.Coordinate)
	}
	p.fillWeather(&tplCtx, cond)

	if session == nil {
		tplCtx.TourName = p.localizer.Get("No active tour")
		tplCtx.StatusIcon = statusIcons[tour.NotStarted]
		return tplCtx
	}

	tplCtx.SessionID = session.ID()
	tplCtx.TourID = session.TourID()
	tplCtx.TourName = tourName
	if tourName == "" {
		tplCtx.TourName = session.TourID()
	}
	status := session.Status()
	tplCtx.Status = status.String()
	tplCtx.StatusIcon = statusIcons[status]

	waypoints := session.Waypoints()
	tplCtx.WaypointCount = len(waypoints)
	tplCtx.VisitedCount = session.VisitedCount()
	for _, wp := range waypoints {
		view := WaypointView{
			ID:      wp.ID,
			Name:    wp.Name,
			Visited: session.Visited(wp.ID),
		}
		if sample != nil {
			view.DistanceMeters = sample.DistanceTo(geo.Coordinate{Lat: wp.Lat, Lon: wp.Lon})
		}
		tplCtx.Waypoints = append(tplCtx.Waypoints, view)
	}
	if next, ok := session.NextUnvisited(); ok {
		tplCtx.NextWaypoint = next.Name
		if sample != nil {
			tplCtx.NextDistance = sample.DistanceTo(geo.Coordinate{Lat: next.Lat, Lon: next.Lon})
		}
	}

	return tplCtx
}

// Render executes both templates against the context.
func (p *Presenter) Render(tplCtx TemplateContext) (Output, error) {
	textBuf := bytes.NewBuffer(nil)
	if err := p.text.Execute(textBuf, tplCtx); err != nil {
		return Output{}, fmt.Errorf("failed to render text template: %w", err)
	}
	detailBuf := bytes.NewBuffer(nil)
	if err := p.detail.Execute(detailBuf, tplCtx); err != nil {
		return Output{}, fmt.Errorf("failed to render detail template: %w", err)
	}
	return Output{
		Text:    textBuf.String(),
		Tooltip: detailBuf.String(),
		Class:   OutputClass,
	}, nil
}

// Write renders the context and writes it as a single JSON line.
func (p *Presenter) Write(w io.Writer, tplCtx TemplateContext) error {
	output, err := p.Render(tplCtx)
	if err != nil {
		return err
	}
	if err = json.NewEncoder(w).Encode(output); err != nil {
		return fmt.Errorf("failed to encode status line: %w", err)
	}
	return nil
}

func (p *Presenter) fillCelestial(tplCtx *TemplateContext, coords geo.Coordinate) {
	now := tplCtx.UpdateTime
	tplCtx.SunriseTime, tplCtx.SunsetTime = sunrise.SunriseSunset(coords.Lat, coords.Lon,
		now.Year(), now.Month(), now.Day())
	tplCtx.IsDaytime = now.After(tplCtx.SunriseTime) && now.Before(tplCtx.SunsetTime)

	phase := moonphase.New(now)
	tplCtx.Moonphase = p.localizer.Get(phase.PhaseName())
	tplCtx.MoonphaseIcon = moonPhaseIcons[phase.PhaseName()]
}

func (p *Presenter) fillWeather(tplCtx *TemplateContext, cond weather.Conditions) {
	if cond.FetchedAt.IsZero() {
		return
	}
	tplCtx.Temperature = cond.Temperature
	tplCtx.TempUnit = cond.Units.Temperature
	tplCtx.WindSpeed = cond.WindSpeed
	tplCtx.WindSpeedUnit = cond.Units.WindSpeed
	if msgID, ok := wmoWeatherCodes[cond.WeatherCode]; ok {
		tplCtx.Condition = p.localizer.Get(msgID)
	}
	tplCtx.ConditionIcon = conditionIcon(cond.WeatherCode, tplCtx.IsDaytime)
	tplCtx.ConditionIconWithSpace = EmojiWithSpace(tplCtx.ConditionIcon)
}
