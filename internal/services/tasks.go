package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draytht/lvsk-calendar-extended/internal/dbx"
	"github.com/draytht/lvsk-calendar-extended/internal/logging"
	"github.com/draytht/lvsk-calendar-extended/internal/models"
	"github.com/draytht/lvsk-calendar-extended/internal/repositories/tasks"
)

type TaskService interface {
	// Create stores a new dirty task.
	Create(ctx context.Context, title, notes string, due *time.Time, priority int) (*models.Task, error)
	// List returns the live tasks in display order.
	List(ctx context.Context) ([]*models.Task, error)
	// Overdue returns live tasks whose due time has passed and that are
	// not completed.
	Overdue(ctx context.Context, now time.Time) ([]*models.Task, error)
	// Toggle flips completion and returns the updated task.
	Toggle(ctx context.Context, id string) (*models.Task, error)
	// Delete tombstones a task; the remote deletion happens on the next
	// push.
	Delete(ctx context.Context, id string) error
}

type taskService struct {
	db   *sql.DB
	repo tasks.Repository
	log  logging.Logger
}

func NewTaskService(db *sql.DB, repo tasks.Repository, log logging.Logger) TaskService {
	return &taskService{db: db, repo: repo, log: log}
}

func (s *taskService) Create(ctx context.Context, title, notes string, due *time.Time, priority int) (*models.Task, error) {
	tk := models.NewTask(title)
	tk.Notes = notes
	tk.Priority = priority
	if due != nil {
		d := due.UTC().Truncate(time.Second)
		tk.Due = &d
	}

	if err := s.repo.CreateOrUpdate(ctx, tk); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.Info(ctx, "task created", "id", tk.ID, "title", tk.Title)
	return tk, nil
}

func (s *taskService) List(ctx context.Context) ([]*models.Task, error) {
	out, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return out, nil
}

func (s *taskService) Overdue(ctx context.Context, now time.Time) ([]*models.Task, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []*models.Task
	for _, tk := range all {
		if tk.Due != nil && tk.Due.Before(now) && !tk.Completed {
			out = append(out, tk)
		}
	}
	return out, nil
}

func (s *taskService) Toggle(ctx context.Context, id string) (*models.Task, error) {
	var toggled *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := tasks.NewSQLiteRepository(tx)

		tk, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		tk.Completed = !tk.Completed
		tk.Dirty = true
		tk.UpdatedAt = time.Now().UTC().Truncate(time.Second)
		if err := repo.CreateOrUpdate(ctx, tk); err != nil {
			return err
		}
		toggled = tk
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}

	s.log.Info(ctx, "task toggled", "id", id, "completed", toggled.Completed)
	return toggled, nil
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := tasks.NewSQLiteRepository(tx)

		tk, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		tk.Deleted = true
		tk.Dirty = true
		tk.UpdatedAt = time.Now().UTC().Truncate(time.Second)
		return repo.CreateOrUpdate(ctx, tk)
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log.Info(ctx, "task deleted", "id", id)
	return nil
}
