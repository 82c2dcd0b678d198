package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/draytht/lvsk-calendar-extended/internal/common"
	"github.com/draytht/lvsk-calendar-extended/internal/dbx"
	"github.com/draytht/lvsk-calendar-extended/internal/models"
)

const taskColumns = `id, title, notes, due, completed, priority,
	task_list_id, sync_id, dirty, deleted, created_at, updated_at`

// SQLiteRepository is a SQLite-backed implementation of Repository.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, tk *models.Task) error {
	query := `INSERT INTO tasks
		(id, title, notes, due, completed, priority,
		 task_list_id, sync_id, dirty, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			notes=excluded.notes,
			due=excluded.due,
			completed=excluded.completed,
			priority=excluded.priority,
			task_list_id=excluded.task_list_id,
			sync_id=excluded.sync_id,
			dirty=excluded.dirty,
			deleted=excluded.deleted,
			updated_at=excluded.updated_at;`

	_, err := r.db.ExecContext(ctx, query,
		tk.ID, tk.Title, dbx.NullString(tk.Notes), dbx.NullTime(tk.Due),
		tk.Completed, tk.Priority,
		dbx.NullString(tk.TaskListID), dbx.NullString(tk.SyncID),
		tk.Dirty, tk.Deleted,
		dbx.FormatTime(tk.CreatedAt), dbx.FormatTime(tk.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = ?;`, taskColumns)
	tk, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return tk, nil
}

func (r *SQLiteRepository) GetBySyncID(ctx context.Context, syncID string) (*models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE sync_id = ?;`, taskColumns)
	tk, err := scanTask(r.db.QueryRowContext(ctx, query, syncID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load task by sync id: %w", err)
	}
	return tk, nil
}

func (r *SQLiteRepository) GetAllDirty(ctx context.Context) ([]*models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE dirty = 1;`, taskColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query dirty tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks
		WHERE deleted = 0
		ORDER BY priority DESC, due, title;`, taskColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *SQLiteRepository) MarkClean(ctx context.Context, id string, syncID string) error {
	query := `UPDATE tasks
		SET dirty = 0,
		    sync_id = COALESCE(?, sync_id)
		WHERE id = ?;`
	_, err := r.db.ExecContext(ctx, query, dbx.NullString(syncID), id)
	if err != nil {
		return fmt.Errorf("failed to mark task clean: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		tk                   models.Task
		notes, due           sql.NullString
		taskListID, syncID   sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&tk.ID, &tk.Title, &notes, &due, &tk.Completed, &tk.Priority,
		&taskListID, &syncID, &tk.Dirty, &tk.Deleted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	tk.Notes = notes.String
	tk.TaskListID = taskListID.String
	tk.SyncID = syncID.String

	if due.Valid {
		d, err := dbx.ParseTime(due.String)
		if err != nil {
			return nil, fmt.Errorf("bad due: %w", err)
		}
		tk.Due = &d
	}
	if tk.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if tk.UpdatedAt, err = dbx.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at: %w", err)
	}
	return &tk, nil
}

func collectTasks(rows *sql.Rows) ([]*models.Task, error) {
	var result []*models.Task
	for rows.Next() {
		tk, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		result = append(result, tk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return result, nil
}
