package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/draytht/lvsk-calendar-extended/internal/common"
	"github.com/draytht/lvsk-calendar-extended/internal/dbx"
	"github.com/draytht/lvsk-calendar-extended/internal/models"
)

const eventColumns = `id, title, description, start_time, end_time, all_day,
	calendar_id, sync_id, etag, dirty, deleted, created_at, updated_at`

// SQLiteRepository is a SQLite-backed implementation of Repository.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, e *models.Event) error {
	query := `INSERT INTO events
		(id, title, description, start_time, end_time, all_day,
		 calendar_id, sync_id, etag, dirty, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			description=excluded.description,
			start_time=excluded.start_time,
			end_time=excluded.end_time,
			all_day=excluded.all_day,
			calendar_id=excluded.calendar_id,
			sync_id=excluded.sync_id,
			etag=excluded.etag,
			dirty=excluded.dirty,
			deleted=excluded.deleted,
			updated_at=excluded.updated_at;`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, dbx.NullString(e.Description),
		dbx.FormatTime(e.StartTime), dbx.FormatTime(e.EndTime), e.AllDay,
		dbx.NullString(e.CalendarID), dbx.NullString(e.SyncID), dbx.NullString(e.Etag),
		e.Dirty, e.Deleted,
		dbx.FormatTime(e.CreatedAt), dbx.FormatTime(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = ?;`, eventColumns)
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetBySyncID(ctx context.Context, syncID string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE sync_id = ?;`, eventColumns)
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, syncID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load event by sync id: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetAllDirty(ctx context.Context) ([]*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE dirty = 1;`, eventColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query dirty events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *SQLiteRepository) GetInRange(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events
		WHERE start_time >= ? AND start_time < ? AND deleted = 0
		ORDER BY start_time;`, eventColumns)
	rows, err := r.db.QueryContext(ctx, query, dbx.FormatTime(from), dbx.FormatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query events in range: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *SQLiteRepository) MarkClean(ctx context.Context, id string, syncID, etag string) error {
	query := `UPDATE events
		SET dirty = 0,
		    sync_id = COALESCE(?, sync_id),
		    etag = COALESCE(?, etag)
		WHERE id = ?;`
	_, err := r.db.ExecContext(ctx, query, dbx.NullString(syncID), dbx.NullString(etag), id)
	if err != nil {
		return fmt.Errorf("failed to mark event clean: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e                       models.Event
		description, calendarID sql.NullString
		syncID, etag            sql.NullString
		startTime, endTime      string
		createdAt, updatedAt    string
	)
	err := row.Scan(&e.ID, &e.Title, &description, &startTime, &endTime, &e.AllDay,
		&calendarID, &syncID, &etag, &e.Dirty, &e.Deleted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	e.Description = description.String
	e.CalendarID = calendarID.String
	e.SyncID = syncID.String
	e.Etag = etag.String

	if e.StartTime, err = dbx.ParseTime(startTime); err != nil {
		return nil, fmt.Errorf("bad start_time: %w", err)
	}
	if e.EndTime, err = dbx.ParseTime(endTime); err != nil {
		return nil, fmt.Errorf("bad end_time: %w", err)
	}
	if e.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if e.UpdatedAt, err = dbx.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at: %w", err)
	}
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]*models.Event, error) {
	var result []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return result, nil
}
