package google

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/draytht/lvsk-calendar-extended/internal/logging"
	"github.com/draytht/lvsk-calendar-extended/internal/models"
)

// Client is the remote API surface the sync engine works against, one
// method per calendar or task-list operation. Update and delete address
// the remote record through its sync ID.
type Client interface {
	ListEvents(ctx context.Context, calendarID string) ([]*models.Event, error)
	CreateEvent(ctx context.Context, calendarID string, e *models.Event) (syncID, etag string, err error)
	UpdateEvent(ctx context.Context, calendarID string, e *models.Event) (etag string, err error)
	DeleteEvent(ctx context.Context, calendarID, syncID string) error

	ListTasks(ctx context.Context, taskListID string) ([]*models.Task, error)
	CreateTask(ctx context.Context, taskListID string, tk *models.Task) (syncID string, err error)
	UpdateTask(ctx context.Context, taskListID string, tk *models.Task) error
	DeleteTask(ctx context.Context, taskListID, syncID string) error
}

// Service implements Client over the Google Calendar v3 and Tasks v1 APIs.
type Service struct {
	cal  *calendar.Service
	task *tasks.Service
	log  logging.Logger
}

// NewService builds both API clients over a shared authenticated HTTP
// client. Every request pulls a token from ts, so expiry and refresh are
// handled per call. Extra options are applied after the HTTP client and
// can point the services at a test endpoint.
func NewService(ctx context.Context, ts oauth2.TokenSource, log logging.Logger, opts ...option.ClientOption) (*Service, error) {
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = 30 * time.Second

	all := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	cal, err := calendar.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	task, err := tasks.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Service{cal: cal, task: task, log: log}, nil
}

// ListEvents fetches the expanded instance list for one calendar in a
// single shot. Events without usable start or end times are skipped.
func (s *Service) ListEvents(ctx context.Context, calendarID string) ([]*models.Event, error) {
	res, err := s.cal.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(2500).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	out := make([]*models.Event, 0, len(res.Items))
	for _, item := range res.Items {
		e, ok := eventFromAPI(item, calendarID)
		if !ok {
			s.log.Warn(ctx, "skipping event without usable times", "event_id", item.Id)
			continue
		}
		out = append(out, e)
	}

	s.log.Info(ctx, "fetched events", "calendar", calendarID, "count", len(out))
	return out, nil
}

func (s *Service) CreateEvent(ctx context.Context, calendarID string, e *models.Event) (string, string, error) {
	created, err := s.cal.Events.Insert(calendarID, eventToAPI(e)).Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to create event: %w", err)
	}
	return created.Id, created.Etag, nil
}

func (s *Service) UpdateEvent(ctx context.Context, calendarID string, e *models.Event) (string, error) {
	updated, err := s.cal.Events.Update(calendarID, e.SyncID, eventToAPI(e)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update event: %w", err)
	}
	return updated.Etag, nil
}

func (s *Service) DeleteEvent(ctx context.Context, calendarID, syncID string) error {
	if err := s.cal.Events.Delete(calendarID, syncID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListTasks fetches one task list in a single shot, including completed,
// hidden, and deleted entries so tombstones propagate.
func (s *Service) ListTasks(ctx context.Context, taskListID string) ([]*models.Task, error) {
	res, err := s.task.Tasks.List(taskListID).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(true).
		MaxResults(100).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	out := make([]*models.Task, 0, len(res.Items))
	for _, item := range res.Items {
		out = append(out, taskFromAPI(item, taskListID))
	}

	s.log.Info(ctx, "fetched tasks", "task_list", taskListID, "count", len(out))
	return out, nil
}

func (s *Service) CreateTask(ctx context.Context, taskListID string, tk *models.Task) (string, error) {
	created, err := s.task.Tasks.Insert(taskListID, taskToAPI(tk)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create task: %w", err)
	}
	return created.Id, nil
}

func (s *Service) UpdateTask(ctx context.Context, taskListID string, tk *models.Task) error {
	if _, err := s.task.Tasks.Update(taskListID, tk.SyncID, taskToAPI(tk)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (s *Service) DeleteTask(ctx context.Context, taskListID, syncID string) error {
	if err := s.task.Tasks.Delete(taskListID, syncID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
