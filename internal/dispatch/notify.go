// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/vorlif/spreak"

	"github.com/ghaith435/DrobSaudia-sub001/internal/logger"
)

const (
	notifyBusName    = "org.freedesktop.Notifications"
	notifyObjectPath = "/org/freedesktop/Notifications"
	notifyMethod     = "org.freedesktop.Notifications.Notify"

	notifyAppName   = "drobtour"
	notifyTimeoutMs = 10000
)

// DesktopNotifier delivers the completion reward as a desktop notification on
// the session bus.
type DesktopNotifier struct {
	localizer *spreak.Localizer
	log       *logger.Logger
}

// NewDesktopNotifier creates a notifier. The bus connection is established
// per notification, so a missing session bus degrades to a log line instead
// of failing tour completion.
func NewDesktopNotifier(localizer *spreak.Localizer, log *logger.Logger) *DesktopNotifier {
	return &DesktopNotifier{localizer: localizer, log: log}
}

// NotifyTourCompleted implements Rewarder.
func (n *DesktopNotifier) NotifyTourCompleted(tourID, badgeID string) {
	summary := n.localizer.Getf("Tour completed! You earned the badge %s.", badgeID)
	if err := n.send(summary); err != nil {
		n.log.Error("failed to deliver completion notification", logger.Err(err),
			slog.String("tour", tourID), slog.String("badge", badgeID))
		return
	}
	n.log.Info("completion notification delivered", slog.String("tour", tourID),
		slog.String("badge", badgeID))
}

func (n *DesktopNotifier) send(summary string) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			n.log.Error("failed to close session bus connection", logger.Err(err))
		}
	}()

	obj := conn.Object(notifyBusName, notifyObjectPath)
	call := obj.Call(notifyMethod, 0, notifyAppName, uint32(0), "", summary, "",
		[]string{}, map[string]dbus.Variant{}, int32(notifyTimeoutMs))
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}
	return nil
}
