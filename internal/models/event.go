// Package models defines the records lvsk stores locally and reconciles
// against Google: calendar events, tasks, and the OAuth credential.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a calendar event record. The local ID is generated once at
// creation and never sent to the remote service; SyncID is the identifier
// Google assigned when the event was first pushed or pulled.
type Event struct {
	// ID is the stable local identifier (UUID).
	ID string

	// Title is the event summary.
	Title string

	// Description is optional free-form text. Empty means absent.
	Description string

	// StartTime and EndTime are in UTC. For all-day events they point at
	// midnight of the start/end dates.
	StartTime time.Time
	EndTime   time.Time

	// AllDay marks a date-only event.
	AllDay bool

	// CalendarID is the remote collection the event was pulled from.
	// Empty for locally created events; pushes then target the primary
	// calendar.
	CalendarID string

	// SyncID is the remote-assigned identifier. Empty until the event has
	// been pushed or pulled at least once.
	SyncID string

	// Etag is the remote concurrency token, kept for logging only.
	Etag string

	// Dirty marks local changes not yet reflected remotely.
	Dirty bool

	// Deleted is the soft-delete tombstone. A record with Deleted set and
	// Dirty clear has already been deleted remotely (or never existed
	// there) and is inert.
	Deleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEvent returns a locally created event: fresh UUID, dirty, not yet
// known to the remote service.
func NewEvent(title string, start, end time.Time) *Event {
	now := time.Now().UTC().Truncate(time.Second)
	return &Event{
		ID:        uuid.NewString(),
		Title:     title,
		StartTime: start.UTC().Truncate(time.Second),
		EndTime:   end.UTC().Truncate(time.Second),
		Dirty:     true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
