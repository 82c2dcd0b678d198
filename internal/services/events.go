// Package services implements the local edit operations behind the CLI.
// Every mutation marks the touched record dirty and leaves propagation to
// the sync worker.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draytht/lvsk-calendar-extended/internal/dbx"
	"github.com/draytht/lvsk-calendar-extended/internal/logging"
	"github.com/draytht/lvsk-calendar-extended/internal/models"
	"github.com/draytht/lvsk-calendar-extended/internal/repositories/events"
)

type EventService interface {
	// Create stores a new dirty event.
	Create(ctx context.Context, title, description string, start, end time.Time, allDay bool) (*models.Event, error)
	// Day lists the events starting on the given calendar day.
	Day(ctx context.Context, day time.Time) ([]*models.Event, error)
	// Range lists events starting in [from, to).
	Range(ctx context.Context, from, to time.Time) ([]*models.Event, error)
	// Delete tombstones an event; the remote deletion happens on the
	// next push.
	Delete(ctx context.Context, id string) error
}

type eventService struct {
	db   *sql.DB
	repo events.Repository
	log  logging.Logger
}

func NewEventService(db *sql.DB, repo events.Repository, log logging.Logger) EventService {
	return &eventService{db: db, repo: repo, log: log}
}

func (s *eventService) Create(ctx context.Context, title, description string, start, end time.Time, allDay bool) (*models.Event, error) {
	e := models.NewEvent(title, start, end)
	e.Description = description
	e.AllDay = allDay

	if err := s.repo.CreateOrUpdate(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.log.Info(ctx, "event created", "id", e.ID, "title", e.Title)
	return e, nil
}

func (s *eventService) Day(ctx context.Context, day time.Time) ([]*models.Event, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return s.Range(ctx, start, start.Add(24*time.Hour))
}

func (s *eventService) Range(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	out, err := s.repo.GetInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return out, nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := events.NewSQLiteRepository(tx)

		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		e.Deleted = true
		e.Dirty = true
		e.UpdatedAt = time.Now().UTC().Truncate(time.Second)
		return repo.CreateOrUpdate(ctx, e)
	})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.log.Info(ctx, "event deleted", "id", id)
	return nil
}
