package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archie/internal/core/domain"
)

func TestIndexUpdater_ApplyStagesUntilCommit(t *testing.T) {
	ctx := context.Background()
	index := newFaultyIndex()
	u := NewIndexUpdater(index)

	update := domain.NewPartialUpdate("D1")
	update.Set(domain.FieldTitle, "Harvest")
	require.NoError(t, u.Apply(ctx, "D1", update))

	assert.Equal(t, 1, u.Staged())
	_, ok := index.Get("D1")
	assert.False(t, ok, "staged writes are invisible")

	require.NoError(t, u.CommitBatch(ctx))
	assert.Equal(t, 0, u.Staged())
	rec, ok := index.Get("D1")
	require.True(t, ok)
	assert.Equal(t, []string{"Harvest"}, rec.Values[domain.FieldTitle])
}

func TestIndexUpdater_PartialUpdateLeavesOtherFields(t *testing.T) {
	ctx := context.Background()
	index := newFaultyIndex()
	index.Put(domain.IndexRecord{ID: "D1", Values: map[domain.Field][]string{
		domain.FieldTitle:   {"Old"},
		domain.FieldCreator: {"Gat"},
	}})
	u := NewIndexUpdater(index)

	update := domain.NewPartialUpdate("D1")
	update.Set(domain.FieldTitle, "New")
	require.NoError(t, u.Apply(ctx, "D1", update))
	require.NoError(t, u.CommitBatch(ctx))

	rec, _ := index.Get("D1")
	assert.Equal(t, []string{"New"}, rec.Values[domain.FieldTitle])
	assert.Equal(t, []string{"Gat"}, rec.Values[domain.FieldCreator])
}

func TestIndexUpdater_AddsMissingID(t *testing.T) {
	index := newFaultyIndex()
	u := NewIndexUpdater(index)

	update := domain.NewPartialUpdate("D1")
	update.Unset(domain.FieldID)
	update.Set(domain.FieldTitle, "x")
	require.NoError(t, u.Apply(context.Background(), "D1", update))

	require.Len(t, index.updates, 1)
	id, ok := index.updates[0].ID()
	require.True(t, ok)
	assert.Equal(t, "D1", id)
	_, ok = update.ID()
	assert.False(t, ok, "caller's update is not modified")
}

func TestIndexUpdater_RejectsInvalidUpdates(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		update func() domain.PartialUpdate
		want   error
	}{
		{
			name:   "empty id",
			id:     "",
			update: func() domain.PartialUpdate { return domain.NewPartialUpdate("") },
			want:   domain.ErrInvalidInput,
		},
		{
			name:   "changed id",
			id:     "D1",
			update: func() domain.PartialUpdate { return domain.NewPartialUpdate("D2") },
			want:   domain.ErrImmutableID,
		},
		{
			name: "deleted id",
			id:   "D1",
			update: func() domain.PartialUpdate {
				u := domain.NewPartialUpdate("D1")
				u.Delete(domain.FieldID)
				return u
			},
			want: domain.ErrImmutableID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := newFaultyIndex()
			u := NewIndexUpdater(index)

			err := u.Apply(context.Background(), tt.id, tt.update())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			kind, ok := domain.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, domain.KindValidation, kind)
			assert.Empty(t, index.updates)
			assert.Equal(t, 0, u.Staged())
		})
	}
}

func TestIndexUpdater_StageFailureIsIndexError(t *testing.T) {
	index := newFaultyIndex()
	index.addErr = errors.New("connection refused")
	u := NewIndexUpdater(index)

	err := u.Apply(context.Background(), "D1", domain.NewPartialUpdate("D1"))
	require.Error(t, err)
	kind, _ := domain.KindOf(err)
	assert.Equal(t, domain.KindIndex, kind)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 0, u.Staged())
}

func TestIndexUpdater_CommitFailure(t *testing.T) {
	ctx := context.Background()
	index := newFaultyIndex()
	index.commitErr = errors.New("disk full")
	u := NewIndexUpdater(index)

	require.NoError(t, u.Apply(ctx, "D1", domain.NewPartialUpdate("D1")))
	err := u.CommitBatch(ctx)
	require.Error(t, err)
	kind, _ := domain.KindOf(err)
	assert.Equal(t, domain.KindIndex, kind)
	assert.Equal(t, 1, u.Staged())
}

func TestIndexUpdater_Discard(t *testing.T) {
	ctx := context.Background()
	index := newFaultyIndex()
	u := NewIndexUpdater(index)

	u.Discard(ctx)
	assert.Equal(t, 0, index.rollbacks, "nothing staged, nothing to discard")

	require.NoError(t, u.Apply(ctx, "D1", domain.NewPartialUpdate("D1")))
	u.Discard(ctx)
	assert.Equal(t, 1, index.rollbacks)
	assert.Equal(t, 0, u.Staged())
	assert.Equal(t, 0, index.Index.Staged())
}
