package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draytht/lvsk-calendar-extended/internal/common"
)

func TestTaskService_CreateIsDirty(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTaskService(t)

	due := time.Date(2026, 3, 12, 18, 0, 0, 500, time.UTC)
	tk, err := svc.Create(ctx, "Buy milk", "2 liters", &due, 2)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2 liters", got.Notes)
	assert.Equal(t, 2, got.Priority)
	assert.True(t, got.Dirty)
	require.NotNil(t, got.Due)
	assert.True(t, got.Due.Equal(due.Truncate(time.Second)))
}

func TestTaskService_CreateWithoutDue(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTaskService(t)

	tk, err := svc.Create(ctx, "Someday", "", nil, 0)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Due)
}

func TestTaskService_Toggle(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTaskService(t)

	tk, err := svc.Create(ctx, "Buy milk", "", nil, 0)
	require.NoError(t, err)

	// A synced copy should turn dirty again when toggled.
	require.NoError(t, repo.MarkClean(ctx, tk.ID, "rtk-1"))

	toggled, err := svc.Toggle(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	got, err := repo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.True(t, got.Dirty)

	toggled, err = svc.Toggle(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
}

func TestTaskService_ToggleMissing(t *testing.T) {
	svc, _ := newTaskService(t)

	_, err := svc.Toggle(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTaskService_DeleteTombstones(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTaskService(t)

	tk, err := svc.Create(ctx, "Buy milk", "", nil, 0)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, tk.ID))

	got, err := repo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.True(t, got.Dirty)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaskService_DeleteMissing(t *testing.T) {
	svc, _ := newTaskService(t)

	err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTaskService_Overdue(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTaskService(t)

	now := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	_, err := svc.Create(ctx, "late", "", &past, 0)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "ahead", "", &future, 0)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "undated", "", nil, 0)
	require.NoError(t, err)

	done, err := svc.Create(ctx, "late but done", "", &past, 0)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, done.ID)
	require.NoError(t, err)

	got, err := svc.Overdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].Title)
}
