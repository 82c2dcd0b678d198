package events

import (
	"context"
	"time"

	"github.com/draytht/lvsk-calendar-extended/internal/models"
)

// Repository describes storage operations for calendar event records.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// CreateOrUpdate inserts a new event or replaces an existing one by ID.
	// CreatedAt is preserved when the row already exists.
	CreateOrUpdate(ctx context.Context, e *models.Event) error

	// GetByID returns an event by its local identifier.
	GetByID(ctx context.Context, id string) (*models.Event, error)

	// GetBySyncID returns the event carrying the given remote identifier,
	// or common.ErrNotFound. The pull dedup rule depends on this lookup.
	GetBySyncID(ctx context.Context, syncID string) (*models.Event, error)

	// GetAllDirty returns events with local changes not yet pushed,
	// tombstones included.
	GetAllDirty(ctx context.Context) ([]*models.Event, error)

	// GetInRange returns non-deleted events starting in [from, to),
	// ordered by start time.
	GetInRange(ctx context.Context, from, to time.Time) ([]*models.Event, error)

	// MarkClean clears the dirty flag. A non-empty syncID or etag is
	// stored; empty values keep whatever the row already has.
	MarkClean(ctx context.Context, id string, syncID, etag string) error
}
