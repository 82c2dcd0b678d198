package credentials

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/draytht/lvsk-calendar-extended/internal/common"
	"github.com/draytht/lvsk-calendar-extended/internal/models"
)

var _ Repository = (*SQLiteRepository)(nil)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file:credstest?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS credentials (
			provider TEXT PRIMARY KEY,
			access_token TEXT NOT NULL,
			refresh_token TEXT,
			expires_at TEXT
		);
		DELETE FROM credentials;
	`)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	expires := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	c := &models.Credential{
		Provider:     models.ProviderGoogle,
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    expires,
	}
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.Get(ctx, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "at-1", got.AccessToken)
	assert.Equal(t, "rt-1", got.RefreshToken)
	assert.True(t, got.ExpiresAt.Equal(expires))
}

func TestGet_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	_, err := repo.Get(context.Background(), models.ProviderGoogle)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSave_RefreshTokenSurvivesOmission(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Save(ctx, &models.Credential{
		Provider:     models.ProviderGoogle,
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}))

	// A renewal response carries a fresh access token but, typically,
	// no refresh token.
	require.NoError(t, repo.Save(ctx, &models.Credential{
		Provider:    models.ProviderGoogle,
		AccessToken: "at-2",
		ExpiresAt:   time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
	}))

	got, err := repo.Get(ctx, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "at-2", got.AccessToken)
	assert.Equal(t, "rt-1", got.RefreshToken)
	assert.Equal(t, 11, got.ExpiresAt.Hour())
}

func TestSave_NewRefreshTokenReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Save(ctx, &models.Credential{
		Provider:     models.ProviderGoogle,
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
	}))
	require.NoError(t, repo.Save(ctx, &models.Credential{
		Provider:     models.ProviderGoogle,
		AccessToken:  "at-2",
		RefreshToken: "rt-2",
	}))

	got, err := repo.Get(ctx, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "rt-2", got.RefreshToken)
}

func TestSave_ZeroExpiryStoredAsAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Save(ctx, &models.Credential{
		Provider:    models.ProviderGoogle,
		AccessToken: "at-1",
	}))

	got, err := repo.Get(ctx, models.ProviderGoogle)
	require.NoError(t, err)
	assert.True(t, got.ExpiresAt.IsZero())
}
