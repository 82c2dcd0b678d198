package tasks

import (
	"context"

	"github.com/draytht/lvsk-calendar-extended/internal/models"
)

// Repository describes storage operations for task records.
type Repository interface {
	// CreateOrUpdate inserts a new task or replaces an existing one by ID.
	// CreatedAt is preserved when the row already exists.
	CreateOrUpdate(ctx context.Context, tk *models.Task) error

	// GetByID returns a task by its local identifier.
	GetByID(ctx context.Context, id string) (*models.Task, error)

	// GetBySyncID returns the task carrying the given remote identifier,
	// or common.ErrNotFound.
	GetBySyncID(ctx context.Context, syncID string) (*models.Task, error)

	// GetAllDirty returns tasks with local changes not yet pushed,
	// tombstones included.
	GetAllDirty(ctx context.Context) ([]*models.Task, error)

	// GetAll returns non-deleted tasks ordered by priority (highest
	// first), then due date, then title.
	GetAll(ctx context.Context) ([]*models.Task, error)

	// MarkClean clears the dirty flag. A non-empty syncID is stored;
	// an empty value keeps whatever the row already has.
	MarkClean(ctx context.Context, id string, syncID string) error
}
