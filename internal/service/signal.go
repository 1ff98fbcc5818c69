// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// stdLibSignalSource is the production implementation.
type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals processes user signals until the context is cancelled.
// SIGUSR1 advances the active session's waypoint cursor and reprints the
// status line, SIGUSR2 aborts the active session. Without an active session
// SIGUSR1 still reprints, so the idle status line can be refreshed on
// demand.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				if session := s.manager.Active(); session != nil {
					session.Next()
					s.openDirections(session)
				}
				s.printProgress(ctx)
			case syscall.SIGUSR2:
				s.EndTour(ctx)
			}
		}
	}
}
