// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package service wires configuration, position tracking, geofencing, tour
// sessions and progress output into the long-running tour engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"

	"github.com/ghaith435/DrobSaudia-sub001/internal/archive"
	"github.com/ghaith435/DrobSaudia-sub001/internal/config"
	"github.com/ghaith435/DrobSaudia-sub001/internal/dispatch"
	"github.com/ghaith435/DrobSaudia-sub001/internal/geo"
	"github.com/ghaith435/DrobSaudia-sub001/internal/geocode"
	"github.com/ghaith435/DrobSaudia-sub001/internal/geofence"
	"github.com/ghaith435/DrobSaudia-sub001/internal/i18n"
	"github.com/ghaith435/DrobSaudia-sub001/internal/logger"
	"github.com/ghaith435/DrobSaudia-sub001/internal/presenter"
	"github.com/ghaith435/DrobSaudia-sub001/internal/tour"
	"github.com/ghaith435/DrobSaudia-sub001/internal/tracker"
	"github.com/ghaith435/DrobSaudia-sub001/internal/weather"
)

const (
	cacheHitTTL  = 6 * time.Hour
	cacheMissTTL = 15 * time.Minute

	geocodeTimeout = 10 * time.Second
)

type Service struct {
	config     *config.Config
	logger     *logger.Logger
	localizer  *spreak.Localizer
	catalog    *tour.Catalog
	manager    *tour.Manager
	dispatcher *dispatch.Dispatcher
	presenter  *presenter.Presenter
	geocoder   geocode.Geocoder
	weatherer  weather.Provider
	archive    *archive.Archive
	scheduler  gocron.Scheduler
	out        io.Writer

	// SignalSrc delivers user signals; swapped out in tests.
	SignalSrc signalSource

	stateLock  sync.RWMutex
	sample     *tracker.Sample
	address    geocode.Address
	conditions weather.Conditions
}

func New(conf *config.Config, log *logger.Logger) (*Service, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	localizer, err := i18n.New(conf.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to create i18n provider: %w", err)
	}

	pres, err := presenter.New(conf, localizer)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	catalog, err := tour.LoadCatalog(conf.Tours.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load tour catalog: %w", err)
	}

	sessions, err := archive.Open(conf.Archive.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open session archive: %w", err)
	}

	weatherer, err := selectWeatherProvider()
	if err != nil {
		return nil, err
	}

	service := &Service{
		config:    conf,
		logger:    log,
		localizer: localizer,
		catalog:   catalog,
		presenter: pres,
		archive:   sessions,
		weatherer: weatherer,
		scheduler: scheduler,
		out:       os.Stdout,
		SignalSrc: stdLibSignalSource{},
	}
	service.geocoder = service.selectGeocoder()
	service.dispatcher = service.createDispatcher()

	provider, err := service.selectPositionProvider()
	if err != nil {
		return nil, err
	}
	factory := func() *tracker.Tracker {
		opts := []tracker.Option{tracker.WithOneShotTimeout(conf.Tracking.OneShotTimeout)}
		if conf.Tracking.Resubscribe {
			opts = append(opts, tracker.WithResubscribe())
		}
		return tracker.New(provider, log, opts...)
	}
	service.manager = tour.NewManager(catalog, factory, service.dispatcher, log)

	return service, nil
}

// Run starts the scheduled jobs and, if tourID is non-empty, the requested
// tour. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context, tourID string) error {
	if err := s.createScheduledJob(ctx, s.config.Intervals.Progress, s.printProgress,
		"progress_output_job"); err != nil {
		return err
	}
	if err := s.createScheduledJob(ctx, s.config.Intervals.WeatherUpdate, s.fetchWeather,
		"weather_update_job"); err != nil {
		return err
	}
	s.scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	defer s.SignalSrc.Stop(sigChan)
	go s.HandleSignals(ctx, sigChan)

	go s.monitorSleepResume(ctx)

	if tourID != "" {
		if err := s.StartTour(ctx, tourID); err != nil {
			if shutdownErr := s.scheduler.Shutdown(); shutdownErr != nil {
				s.logger.Error("failed to shut down scheduler", logger.Err(shutdownErr))
			}
			return err
		}
	}

	<-ctx.Done()

	if session := s.manager.EndActive(); session != nil {
		s.archiveSession(session)
	}
	if err := s.archive.Close(); err != nil {
		s.logger.Error("failed to close session archive", logger.Err(err))
	}
	return s.scheduler.Shutdown()
}

// StartTour begins a new tour session and spawns its evaluation loop. A
// second call while a session is active returns ErrSessionAlreadyActive.
func (s *Service) StartTour(ctx context.Context, tourID string) (err error) {
	def, err := s.catalog.Tour(tourID)
	if err != nil {
		return err
	}

	var opts []tour.SessionOption
	if def.BadgeID != "" {
		opts = append(opts, tour.WithBadge(def.BadgeID))
	}
	session, err := s.manager.StartTour(ctx, tourID, opts...)
	if err != nil {
		return err
	}

	go s.watchSession(ctx, session)
	return nil
}

// ReplaceTour ends any active session and starts the requested tour in its
// place. The replaced session's watch loop archives it on the way out.
func (s *Service) ReplaceTour(ctx context.Context, tourID string) error {
	def, err := s.catalog.Tour(tourID)
	if err != nil {
		return err
	}

	var opts []tour.SessionOption
	if def.BadgeID != "" {
		opts = append(opts, tour.WithBadge(def.BadgeID))
	}
	session, err := s.manager.ReplaceTour(ctx, tourID, opts...)
	if err != nil {
		return err
	}

	go s.watchSession(ctx, session)
	return nil
}

// EndTour aborts the active session, if any.
func (s *Service) EndTour(ctx context.Context) {
	session := s.manager.EndActive()
	if session == nil {
		return
	}
	s.archiveSession(session)
	s.printProgress(ctx)
}

// watchSession consumes position samples for one session, evaluates geofence
// transitions and forwards the resulting events until the session reaches a
// terminal state.
func (s *Service) watchSession(ctx context.Context, session *tour.Session) {
	sub, unsub := session.Tracker().Subscribe()
	defer unsub()

	engineOpts := []geofence.Option{geofence.WithDefaultRadius(s.config.Geofence.DefaultRadiusMeters)}
	if s.config.Geofence.DwellAfter > 0 {
		engineOpts = append(engineOpts, geofence.WithDwellAfter(s.config.Geofence.DwellAfter))
	}
	engine := geofence.NewEngine(session.Zones(), engineOpts...)

	for {
		select {
		case <-ctx.Done():
			return
		case <-session.Done():
			// Ended or replaced from outside this loop. Archiving twice is
			// safe, records are keyed by session ID.
			s.archiveSession(session)
			return
		case sample, ok := <-sub:
			if !ok {
				if err := session.Tracker().Err(); err != nil {
					s.logger.Error("position tracking ended", logger.Err(err),
						slog.String("session", session.ID()))
				}
				if session.Status().Terminal() {
					s.archiveSession(session)
				}
				return
			}
			s.applySample(ctx, sample)
			for _, event := range engine.Evaluate(sample) {
				session.HandleEvent(ctx, event)
			}
			if session.Status().Terminal() {
				s.archiveSession(session)
				s.printProgress(ctx)
				return
			}
		}
	}
}

// applySample stores the latest sample and refreshes the resolved address.
// The cached geocoder quantizes coordinates, so staying in the same block
// costs no API call.
func (s *Service) applySample(ctx context.Context, sample tracker.Sample) {
	s.stateLock.Lock()
	s.sample = &sample
	s.stateLock.Unlock()

	ctxGeo, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()
	addr, err := s.geocoder.Reverse(ctxGeo, sample.Coordinate)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Debug("failed to resolve address", logger.Err(err))
		}
		return
	}

	s.stateLock.Lock()
	s.address = addr
	s.stateLock.Unlock()
}

// fetchWeather refreshes the current conditions for the latest position.
func (s *Service) fetchWeather(ctx context.Context) {
	s.stateLock.RLock()
	sample := s.sample
	s.stateLock.RUnlock()
	if sample == nil {
		return
	}

	conditions, err := s.weatherer.Current(ctx, sample.Coordinate)
	if err != nil {
		s.logger.Error("failed to fetch weather conditions", logger.Err(err))
		return
	}

	s.stateLock.Lock()
	s.conditions = conditions
	s.stateLock.Unlock()
}

// printProgress renders the current tour progress as one JSON status line.
func (s *Service) printProgress(_ context.Context) {
	s.stateLock.RLock()
	sample := s.sample
	addr := s.address
	conditions := s.conditions
	s.stateLock.RUnlock()

	session := s.manager.Active()
	var tourName string
	if session != nil {
		if def, err := s.catalog.Tour(session.TourID()); err == nil {
			tourName = def.Name
		}
	}

	tplCtx := s.presenter.BuildContext(session, tourName, sample, addr, conditions)
	if err := s.presenter.Write(s.out, tplCtx); err != nil {
		s.logger.Error("failed to write progress line", logger.Err(err))
	}
}

// archiveSession persists the session's final state. Archiving the same
// session twice overwrites, so racing callers are harmless.
func (s *Service) archiveSession(session *tour.Session) {
	if err := s.archive.Save(session); err != nil {
		s.logger.Error("failed to archive session", logger.Err(err),
			slog.String("session", session.ID()))
		return
	}
	s.logger.Info("session archived", slog.String("session", session.ID()),
		slog.String("status", session.Status().String()))
}

// openDirections publishes a walking route from the latest known position to
// the waypoint under the session's cursor.
func (s *Service) openDirections(session *tour.Session) {
	s.stateLock.RLock()
	sample := s.sample
	s.stateLock.RUnlock()

	var origin *geo.Coordinate
	if sample != nil {
		origin = &sample.Coordinate
	}
	dest := session.Current()
	if err := s.dispatcher.OpenDirections(origin, geo.Coordinate{Lat: dest.Lat, Lon: dest.Lon}); err != nil {
		s.logger.Error("failed to open directions", logger.Err(err))
	}
}

func (s *Service) createDispatcher() *dispatch.Dispatcher {
	var narrator dispatch.Narrator
	if !s.config.Narration.Disable {
		narrator = dispatch.NewConsoleNarrator(os.Stderr)
	}
	return dispatch.New(narrator, dispatch.NewDesktopNotifier(s.localizer, s.logger),
		dispatch.NewConsoleNavigator(os.Stderr), s.config.Locale, s.logger)
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}
