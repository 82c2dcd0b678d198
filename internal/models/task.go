package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a to-do record synced with Google Tasks.
type Task struct {
	// ID is the stable local identifier (UUID).
	ID string

	// Title is the task text.
	Title string

	// Notes is optional free-form text. Empty means absent.
	Notes string

	// Due is the optional due time in UTC.
	Due *time.Time

	// Completed mirrors the remote "completed"/"needsAction" status.
	Completed bool

	// Priority orders the task list locally. It is never pushed; the
	// remote task shape has no equivalent field.
	Priority int

	// TaskListID is the remote collection the task was pulled from.
	// Empty for locally created tasks; pushes then target the default
	// list.
	TaskListID string

	// SyncID is the remote-assigned identifier. Empty until the task has
	// been pushed or pulled at least once.
	SyncID string

	// Dirty marks local changes not yet reflected remotely.
	Dirty bool

	// Deleted is the soft-delete tombstone.
	Deleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTask returns a locally created task: fresh UUID, dirty, not yet known
// to the remote service.
func NewTask(title string) *Task {
	now := time.Now().UTC().Truncate(time.Second)
	return &Task{
		ID:        uuid.NewString(),
		Title:     title,
		Dirty:     true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
