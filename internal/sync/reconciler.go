// Package sync implements the bidirectional reconciliation between the
// local store and the remote calendar and task collections, plus the
// background worker that schedules it.
package sync

import (
	"context"
	"errors"

	"github.com/draytht/lvsk-calendar-extended/internal/common"
	"github.com/draytht/lvsk-calendar-extended/internal/google"
	"github.com/draytht/lvsk-calendar-extended/internal/logging"
	"github.com/draytht/lvsk-calendar-extended/internal/models"
	"github.com/draytht/lvsk-calendar-extended/internal/repositories/events"
	"github.com/draytht/lvsk-calendar-extended/internal/repositories/tasks"
)

// Fallbacks for records that never recorded an origin collection.
const (
	defaultCalendarID = "primary"
	defaultTaskListID = "@default"
)

// Reconciler folds remote state into the local store and pushes local
// changes back out. Local edits always win: a dirty record is never
// overwritten by a pull.
type Reconciler struct {
	remote      google.Client
	events      events.Repository
	tasks       tasks.Repository
	calendarIDs []string
	taskListIDs []string
	log         logging.Logger
}

func NewReconciler(remote google.Client, ev events.Repository, tk tasks.Repository,
	calendarIDs, taskListIDs []string, log logging.Logger) *Reconciler {
	return &Reconciler{
		remote:      remote,
		events:      ev,
		tasks:       tk,
		calendarIDs: calendarIDs,
		taskListIDs: taskListIDs,
		log:         log,
	}
}

// FullSync runs a pull followed by a push and reports combined totals.
func (r *Reconciler) FullSync(ctx context.Context) (int, int, []error) {
	pulled, errs := r.Pull(ctx)
	pushed, pushErrs := r.PushDirty(ctx)
	return pulled, pushed, append(errs, pushErrs...)
}

// Pull fetches every configured collection and applies the results
// locally. A collection that fails to list contributes one error and the
// remaining collections still run. Returns the number of remote records
// accepted.
func (r *Reconciler) Pull(ctx context.Context) (int, []error) {
	pulled := 0
	var errs []error

	for _, calID := range r.calendarIDs {
		remote, err := r.remote.ListEvents(ctx, calID)
		if err != nil {
			r.log.Warn(ctx, "event pull failed", "calendar", calID, "error", err)
			errs = append(errs, err)
			continue
		}
		for _, e := range remote {
			if r.applyRemoteEvent(ctx, e) {
				pulled++
			}
		}
	}

	for _, listID := range r.taskListIDs {
		remote, err := r.remote.ListTasks(ctx, listID)
		if err != nil {
			r.log.Warn(ctx, "task pull failed", "task_list", listID, "error", err)
			errs = append(errs, err)
			continue
		}
		for _, tk := range remote {
			if r.applyRemoteTask(ctx, tk) {
				pulled++
			}
		}
	}

	return pulled, errs
}

// applyRemoteEvent folds one remote record in. Returns true when the
// record was accepted, which includes a dirty local copy winning over
// the incoming one.
func (r *Reconciler) applyRemoteEvent(ctx context.Context, remote *models.Event) bool {
	existing, err := r.events.GetBySyncID(ctx, remote.SyncID)
	switch {
	case err == nil:
		if existing.Dirty {
			// Local edits win; the remote state is reconsidered on the
			// pull after the push completes.
			return true
		}
		remote.ID = existing.ID
	case errors.Is(err, common.ErrNotFound):
		// First sighting: keep the fresh local ID.
	default:
		r.log.Error(ctx, "event lookup failed", "sync_id", remote.SyncID, "error", err)
		return false
	}

	if err := r.events.CreateOrUpdate(ctx, remote); err != nil {
		r.log.Error(ctx, "failed to store pulled event", "sync_id", remote.SyncID, "error", err)
		return false
	}
	return true
}

func (r *Reconciler) applyRemoteTask(ctx context.Context, remote *models.Task) bool {
	existing, err := r.tasks.GetBySyncID(ctx, remote.SyncID)
	switch {
	case err == nil:
		if existing.Dirty {
			return true
		}
		remote.ID = existing.ID
	case errors.Is(err, common.ErrNotFound):
	default:
		r.log.Error(ctx, "task lookup failed", "sync_id", remote.SyncID, "error", err)
		return false
	}

	if err := r.tasks.CreateOrUpdate(ctx, remote); err != nil {
		r.log.Error(ctx, "failed to store pulled task", "sync_id", remote.SyncID, "error", err)
		return false
	}
	return true
}

// PushDirty sends every dirty record out and marks the confirmed ones
// clean. Returns the confirmed count and one error per failed remote
// call; a failed record stays dirty for the next pass.
func (r *Reconciler) PushDirty(ctx context.Context) (int, []error) {
	pushed, errs := r.pushDirtyEvents(ctx)
	tkPushed, tkErrs := r.pushDirtyTasks(ctx)
	return pushed + tkPushed, append(errs, tkErrs...)
}

func (r *Reconciler) pushDirtyEvents(ctx context.Context) (int, []error) {
	dirty, err := r.events.GetAllDirty(ctx)
	if err != nil {
		r.log.Error(ctx, "failed to read dirty events", "error", err)
		return 0, nil
	}

	pushed := 0
	var errs []error

	for _, e := range dirty {
		calID := e.CalendarID
		if calID == "" {
			calID = defaultCalendarID
		}

		var (
			syncID, etag string
			err          error
		)
		switch {
		case e.Deleted && e.SyncID != "":
			err = r.remote.DeleteEvent(ctx, calID, e.SyncID)
		case e.Deleted:
			// Created and deleted between passes; the remote never saw
			// it, so there is nothing to call.
		case e.SyncID != "":
			etag, err = r.remote.UpdateEvent(ctx, calID, e)
		default:
			syncID, etag, err = r.remote.CreateEvent(ctx, calID, e)
		}

		if err != nil {
			r.log.Warn(ctx, "event push failed", "id", e.ID, "error", err)
			errs = append(errs, err)
			continue
		}

		if err := r.events.MarkClean(ctx, e.ID, syncID, etag); err != nil {
			r.log.Error(ctx, "failed to mark event clean", "id", e.ID, "error", err)
			continue
		}
		pushed++
	}

	return pushed, errs
}

func (r *Reconciler) pushDirtyTasks(ctx context.Context) (int, []error) {
	dirty, err := r.tasks.GetAllDirty(ctx)
	if err != nil {
		r.log.Error(ctx, "failed to read dirty tasks", "error", err)
		return 0, nil
	}

	pushed := 0
	var errs []error

	for _, tk := range dirty {
		listID := tk.TaskListID
		if listID == "" {
			listID = defaultTaskListID
		}

		var (
			syncID string
			err    error
		)
		switch {
		case tk.Deleted && tk.SyncID != "":
			err = r.remote.DeleteTask(ctx, listID, tk.SyncID)
		case tk.Deleted:
		case tk.SyncID != "":
			err = r.remote.UpdateTask(ctx, listID, tk)
		default:
			syncID, err = r.remote.CreateTask(ctx, listID, tk)
		}

		if err != nil {
			r.log.Warn(ctx, "task push failed", "id", tk.ID, "error", err)
			errs = append(errs, err)
			continue
		}

		if err := r.tasks.MarkClean(ctx, tk.ID, syncID); err != nil {
			r.log.Error(ctx, "failed to mark task clean", "id", tk.ID, "error", err)
			continue
		}
		pushed++
	}

	return pushed, errs
}
