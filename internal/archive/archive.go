// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

// Package archive persists finished tour sessions to a local SQLite database
// so past runs and earned badges survive restarts.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ghaith435/DrobSaudia-sub001/internal/tour"
)

// SessionRecord is one archived tour run.
type SessionRecord struct {
	ID            string `gorm:"primaryKey"`
	TourID        string `gorm:"index"`
	BadgeID       string
	Status        string
	WaypointCount int
	VisitedCount  int
	StartedAt     time.Time
	EndedAt       time.Time
	CreatedAt     time.Time
}

// VisitRecord is one archived waypoint arrival.
type VisitRecord struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	SessionID  string `gorm:"index"`
	WaypointID string
	VisitedAt  time.Time
}

// Archive wraps the session database.
type Archive struct {
	db *gorm.DB
}

// Open opens (and migrates) the archive at the given file path. An empty path
// opens a private in-memory database, used by tests. The shared cache keeps
// the pooled connections of one Open call on the same memory database.
func Open(path string) (*Archive, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
		dsn = path
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session archive: %w", err)
	}
	if err = db.AutoMigrate(&SessionRecord{}, &VisitRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session archive: %w", err)
	}

	return &Archive{db: db}, nil
}

// Save archives a session in its current state together with its visit log.
// Saving the same session again overwrites the previous record.
func (a *Archive) Save(session *tour.Session) error {
	record := SessionRecord{
		ID:            session.ID(),
		TourID:        session.TourID(),
		BadgeID:       session.BadgeID(),
		Status:        session.Status().String(),
		WaypointCount: len(session.Waypoints()),
		VisitedCount:  session.VisitedCount(),
		StartedAt:     session.StartedAt(),
		EndedAt:       session.EndedAt(),
	}
	if err := a.db.Save(&record).Error; err != nil {
		return fmt.Errorf("failed to archive session %s: %w", session.ID(), err)
	}

	if err := a.db.Where("session_id = ?", session.ID()).Delete(&VisitRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear visit log for session %s: %w", session.ID(), err)
	}
	visits := session.Visits()
	if len(visits) == 0 {
		return nil
	}
	records := make([]VisitRecord, 0, len(visits))
	for _, visit := range visits {
		records = append(records, VisitRecord{
			SessionID:  session.ID(),
			WaypointID: visit.WaypointID,
			VisitedAt:  visit.At,
		})
	}
	if err := a.db.Create(&records).Error; err != nil {
		return fmt.Errorf("failed to archive visit log for session %s: %w", session.ID(), err)
	}
	return nil
}

// Sessions returns all archived sessions, most recent first.
func (a *Archive) Sessions() ([]SessionRecord, error) {
	var records []SessionRecord
	if err := a.db.Order("started_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list archived sessions: %w", err)
	}
	return records, nil
}

// Visits returns the visit log of an archived session in arrival order.
func (a *Archive) Visits(sessionID string) ([]VisitRecord, error) {
	var records []VisitRecord
	if err := a.db.Where("session_id = ?", sessionID).Order("visited_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load visit log for session %s: %w", sessionID, err)
	}
	return records, nil
}

// Badges returns the badge IDs of all completed sessions, without duplicates.
func (a *Archive) Badges() ([]string, error) {
	var badges []string
	if err := a.db.Model(&SessionRecord{}).Distinct("badge_id").
		Where("status = ? AND badge_id <> ''", tour.Completed.String()).
		Pluck("badge_id", &badges).Error; err != nil {
		return nil, fmt.Errorf("failed to list earned badges: %w", err)
	}
	return badges, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
