package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archie/internal/core/domain"
)

func TestRunStore_SaveAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	report := domain.BatchReport{RunID: "run-1", Job: domain.JobUpdate, State: domain.BatchDone, Processed: 3}
	require.NoError(t, store.Save(ctx, report))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Processed)
	assert.Equal(t, domain.BatchDone, got.State)
}

func TestRunStore_Get_NotFound(t *testing.T) {
	store := NewRunStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_SaveReplaces(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.BatchReport{RunID: "run-1", State: domain.BatchProcessing}))
	require.NoError(t, store.Save(ctx, domain.BatchReport{RunID: "run-1", State: domain.BatchAborted}))

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.BatchAborted, runs[0].State)
}

func TestRunStore_List_NewestFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.BatchReport{RunID: "b", StartedAt: base.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.BatchReport{RunID: "a", StartedAt: base}))
	require.NoError(t, store.Save(ctx, domain.BatchReport{RunID: "c", StartedAt: base.Add(2 * time.Hour)}))

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
	assert.Equal(t, "a", runs[2].RunID)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
