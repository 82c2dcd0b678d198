package google

import (
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"

	"github.com/draytht/lvsk-calendar-extended/internal/models"
)

const (
	noTitle    = "(no title)"
	dateLayout = "2006-01-02"
)

// eventFromAPI converts a remote event into a clean local record with a
// fresh local ID. Events without usable start or end times are rejected.
func eventFromAPI(item *calendar.Event, calendarID string) (*models.Event, bool) {
	start, okStart := parseEventTime(item.Start)
	end, okEnd := parseEventTime(item.End)
	if !okStart || !okEnd {
		return nil, false
	}

	title := item.Summary
	if title == "" {
		title = noTitle
	}

	now := time.Now().UTC().Truncate(time.Second)
	return &models.Event{
		ID:          uuid.NewString(),
		Title:       title,
		Description: item.Description,
		StartTime:   start,
		EndTime:     end,
		AllDay:      item.Start.Date != "",
		CalendarID:  calendarID,
		SyncID:      item.Id,
		Etag:        item.Etag,
		Dirty:       false,
		Deleted:     item.Status == "cancelled",
		CreatedAt:   now,
		UpdatedAt:   now,
	}, true
}

// parseEventTime handles both shapes Google sends: a dateTime for timed
// events and a bare date for all-day ones, which maps to midnight UTC.
func parseEventTime(dt *calendar.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC().Truncate(time.Second), true
	}
	if dt.Date != "" {
		t, err := time.Parse(dateLayout, dt.Date)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}

// eventToAPI builds the write payload. Only user-editable fields go out;
// identity and sync bookkeeping stay local.
func eventToAPI(e *models.Event) *calendar.Event {
	out := &calendar.Event{
		Summary:     e.Title,
		Description: e.Description,
	}
	if e.AllDay {
		out.Start = &calendar.EventDateTime{Date: e.StartTime.UTC().Format(dateLayout)}
		out.End = &calendar.EventDateTime{Date: e.EndTime.UTC().Format(dateLayout)}
	} else {
		out.Start = &calendar.EventDateTime{DateTime: e.StartTime.UTC().Format(time.RFC3339), TimeZone: "UTC"}
		out.End = &calendar.EventDateTime{DateTime: e.EndTime.UTC().Format(time.RFC3339), TimeZone: "UTC"}
	}
	return out
}

// taskFromAPI converts a remote task into a clean local record. Priority
// is a local-only notion and starts at zero.
func taskFromAPI(item *tasks.Task, taskListID string) *models.Task {
	title := item.Title
	if title == "" {
		title = noTitle
	}

	var due *time.Time
	if item.Due != "" {
		if t, err := time.Parse(time.RFC3339, item.Due); err == nil {
			u := t.UTC().Truncate(time.Second)
			due = &u
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	return &models.Task{
		ID:         uuid.NewString(),
		Title:      title,
		Notes:      item.Notes,
		Due:        due,
		Completed:  item.Status == "completed",
		TaskListID: taskListID,
		SyncID:     item.Id,
		Dirty:      false,
		Deleted:    item.Deleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func taskToAPI(tk *models.Task) *tasks.Task {
	status := "needsAction"
	if tk.Completed {
		status = "completed"
	}

	out := &tasks.Task{
		Title:  tk.Title,
		Notes:  tk.Notes,
		Status: status,
	}
	if tk.Due != nil {
		out.Due = tk.Due.UTC().Format(time.RFC3339)
	}
	return out
}
