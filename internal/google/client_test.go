package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/draytht/lvsk-calendar-extended/internal/logging"
	"github.com/draytht/lvsk-calendar-extended/internal/models"
)

var _ Client = (*Service)(nil)

func newTestLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	svc, err := NewService(context.Background(), ts, newTestLogger(), option.WithEndpoint(srv.URL))
	require.NoError(t, err)
	return svc
}

func TestListEvents(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "2500", q.Get("maxResults"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[
			{"id":"abc123","etag":"e1","summary":"Standup",
			 "start":{"dateTime":"2026-03-10T09:00:00Z"},
			 "end":{"dateTime":"2026-03-10T09:15:00Z"}},
			{"id":"gone","etag":"e2","status":"cancelled","summary":"Old",
			 "start":{"dateTime":"2026-03-11T09:00:00Z"},
			 "end":{"dateTime":"2026-03-11T10:00:00Z"}},
			{"id":"broken","etag":"e3","summary":"No times"}
		]}`)
	})

	events, err := newTestService(t, handler).ListEvents(context.Background(), "primary")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, "abc123", events[0].SyncID)
	assert.False(t, events[0].Dirty)
	assert.True(t, events[1].Deleted)
}

func TestCreateEvent(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	e := models.NewEvent("Standup", start, start.Add(15*time.Minute))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)

		var payload calendar.Event
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Standup", payload.Summary)
		assert.Equal(t, "2026-03-10T09:00:00Z", payload.Start.DateTime)
		assert.Empty(t, payload.Id)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"abc123","etag":"e1"}`)
	})

	syncID, etag, err := newTestService(t, handler).CreateEvent(context.Background(), "primary", e)
	require.NoError(t, err)
	assert.Equal(t, "abc123", syncID)
	assert.Equal(t, "e1", etag)
}

func TestUpdateEvent(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	e := models.NewEvent("Standup", start, start.Add(15*time.Minute))
	e.SyncID = "abc123"

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/calendars/primary/events/abc123", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"abc123","etag":"e2"}`)
	})

	etag, err := newTestService(t, handler).UpdateEvent(context.Background(), "primary", e)
	require.NoError(t, err)
	assert.Equal(t, "e2", etag)
}

func TestDeleteEvent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/calendars/primary/events/abc123", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	err := newTestService(t, handler).DeleteEvent(context.Background(), "primary", "abc123")
	require.NoError(t, err)
}

func TestListTasks(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lists/@default/tasks", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("showCompleted"))
		assert.Equal(t, "true", q.Get("showHidden"))
		assert.Equal(t, "true", q.Get("showDeleted"))
		assert.Equal(t, "100", q.Get("maxResults"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[
			{"id":"task-1","title":"Buy milk","status":"needsAction"},
			{"id":"task-2","title":"Old chore","status":"completed","deleted":true}
		]}`)
	})

	got, err := newTestService(t, handler).ListTasks(context.Background(), "@default")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Buy milk", got[0].Title)
	assert.Equal(t, "task-1", got[0].SyncID)
	assert.False(t, got[0].Completed)
	assert.True(t, got[1].Completed)
	assert.True(t, got[1].Deleted)
}

func TestCreateTask(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/lists/@default/tasks", r.URL.Path)

		var payload tasks.Task
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Buy milk", payload.Title)
		assert.Equal(t, "needsAction", payload.Status)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"task-42"}`)
	})

	syncID, err := newTestService(t, handler).CreateTask(context.Background(), "@default", models.NewTask("Buy milk"))
	require.NoError(t, err)
	assert.Equal(t, "task-42", syncID)
}

func TestUpdateTask(t *testing.T) {
	tk := models.NewTask("Buy milk")
	tk.SyncID = "task-42"
	tk.Completed = true

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/lists/@default/tasks/task-42", r.URL.Path)

		var payload tasks.Task
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "completed", payload.Status)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"task-42"}`)
	})

	err := newTestService(t, handler).UpdateTask(context.Background(), "@default", tk)
	require.NoError(t, err)
}

func TestDeleteTask(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/lists/@default/tasks/task-42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	err := newTestService(t, handler).DeleteTask(context.Background(), "@default", "task-42")
	require.NoError(t, err)
}

func TestRemoteErrorSurfaces(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	})

	svc := newTestService(t, handler)

	_, err := svc.ListEvents(context.Background(), "primary")
	assert.Error(t, err)

	_, _, err = svc.CreateEvent(context.Background(), "primary",
		models.NewEvent("x", time.Now(), time.Now().Add(time.Hour)))
	assert.Error(t, err)
}
