package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
	"github.com/custodia-labs/archie/internal/logger"
)

// IndexUpdater stages partial updates on the index and commits them once per
// batch. Staged writes are owned by the batch that made them.
type IndexUpdater struct {
	index  driven.IndexConnector
	staged int
}

// NewIndexUpdater creates an updater over the given index connector.
func NewIndexUpdater(index driven.IndexConnector) *IndexUpdater {
	return &IndexUpdater{index: index}
}

// Apply stages a write that sets each field in update on the record for id,
// leaving all other stored fields as they are. The update must not change or
// clear the identifier; it is added if missing.
func (u *IndexUpdater) Apply(ctx context.Context, id string, update domain.PartialUpdate) error {
	if id == "" {
		return domain.NewBatchError(domain.KindValidation, id,
			fmt.Errorf("%w: empty document id", domain.ErrInvalidInput))
	}

	if fu, ok := update.Get(domain.FieldID); ok {
		if fu.Op != domain.OpSet || fu.Value != id {
			return domain.NewBatchError(domain.KindValidation, id, domain.ErrImmutableID)
		}
	} else {
		update = update.Clone()
		update.Set(domain.FieldID, id)
	}

	if err := u.index.AddOrUpdate(ctx, id, update); err != nil {
		return domain.NewBatchError(domain.KindIndex, id, fmt.Errorf("stage update: %w", err))
	}
	u.staged++
	logger.Debug("Staged %d fields for %s", update.Len(), id)
	return nil
}

// CommitBatch makes every staged write durable and visible.
func (u *IndexUpdater) CommitBatch(ctx context.Context) error {
	logger.Info("Committing changes to %d documents", u.staged)
	if err := u.index.Commit(ctx); err != nil {
		return domain.NewBatchError(domain.KindIndex, "", fmt.Errorf("commit: %w", err))
	}
	u.staged = 0
	return nil
}

// Discard drops staged writes after an aborted batch. Connectors that cannot
// discard are left as they are; their writes stay uncommitted.
func (u *IndexUpdater) Discard(ctx context.Context) {
	if u.staged == 0 {
		return
	}
	if r, ok := u.index.(driven.IndexRollbacker); ok {
		if err := r.Rollback(ctx); err != nil {
			logger.Warn("Failed to discard %d staged updates: %v", u.staged, err)
			return
		}
	}
	u.staged = 0
}

// Staged returns the number of updates staged since the last commit.
func (u *IndexUpdater) Staged() int {
	return u.staged
}
