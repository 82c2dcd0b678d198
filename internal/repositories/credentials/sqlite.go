package credentials

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

// SQLiteRepository is a SQLite-backed implementation of Repository.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, c *models.Credential) error {
	query := `INSERT INTO credentials (provider, access_token, refresh_token, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			access_token=excluded.access_token,
			refresh_token=COALESCE(excluded.refresh_token, refresh_token),
			expires_at=excluded.expires_at;`

	var expires sql.NullString
	if !c.ExpiresAt.IsZero() {
		expires = sql.NullString{String: dbx.FormatTime(c.ExpiresAt), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		c.Provider, c.AccessToken, dbx.NullString(c.RefreshToken), expires)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, provider string) (*models.Credential, error) {
	query := `SELECT provider, access_token, refresh_token, expires_at
		FROM credentials WHERE provider = ?;`

	var (
		c                     models.Credential
		refreshToken, expires sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, provider).
		Scan(&c.Provider, &c.AccessToken, &refreshToken, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	c.RefreshToken = refreshToken.String
	if expires.Valid {
		t, err := dbx.ParseTime(expires.String)
		if err != nil {
			return nil, fmt.Errorf("bad expires_at: %w", err)
		}
		c.ExpiresAt = t
	} else {
		c.ExpiresAt = time.Time{}
	}
	return &c, nil
}
