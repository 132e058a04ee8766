package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
	"github.com/custodia-labs/archie/internal/core/ports/driving"
	"github.com/custodia-labs/archie/internal/logger"
)

// Ensure CreatorFixer implements the interface.
var _ driving.CreatorService = (*CreatorFixer)(nil)

// CreatorFixer rewrites creator values across the index from a list of
// corrections. It only touches the index; artifacts never move.
type CreatorFixer struct {
	index   driven.IndexConnector
	updater *IndexUpdater
	cfg     *runConfig
}

// NewCreatorFixer creates a creator fixer over the index connector.
func NewCreatorFixer(index driven.IndexConnector, opts ...Option) *CreatorFixer {
	return &CreatorFixer{
		index:   index,
		updater: NewIndexUpdater(index),
		cfg:     newRunConfig(opts),
	}
}

// Fix applies each correction to every record whose only creator is the
// existing value, then commits once. Records with several creators are
// reported and left alone.
func (f *CreatorFixer) Fix(ctx context.Context, fixes []domain.CreatorFix) (*domain.BatchReport, error) {
	r, err := f.cfg.begin(ctx, domain.JobFixCreators, f.updater)
	if err != nil {
		return r.report, err
	}

	logger.Section("Fix Creators " + r.report.RunID)

	for _, fix := range fixes {
		if err := interrupted(ctx); err != nil {
			return r.abort(ctx, err)
		}

		if fix.IsNoop() {
			logger.Info("All fields are blank for creator %s", fix.Existing)
			continue
		}

		records, err := f.index.Find(ctx, domain.FieldCreator, fix.Existing)
		if err != nil {
			return r.abort(ctx, domain.NewBatchError(domain.KindIndex, "",
				fmt.Errorf("find creator %q: %w", fix.Existing, err)))
		}
		logger.Info("%d documents found for %s", len(records), fix.Existing)

		for _, rec := range records {
			if err := r.next(); err != nil {
				return r.abort(ctx, err)
			}

			creators := rec.Values[domain.FieldCreator]
			if len(creators) != 1 {
				r.warn(domain.Warning{
					DocumentID: rec.ID,
					Code:       domain.WarnMultipleCreators,
					Message:    fmt.Sprintf("holds %d creators %v", len(creators), creators),
				})
				continue
			}

			if err := f.updater.Apply(ctx, rec.ID, creatorUpdate(rec.ID, creators[0], fix)); err != nil {
				if err := r.handle(rec.ID, err); err != nil {
					return r.abort(ctx, err)
				}
				continue
			}
			r.report.Processed++
		}
	}

	return r.commit(ctx)
}

// creatorUpdate builds the change for one record. Setting a replacement wins
// over deleting.
func creatorUpdate(id, current string, fix domain.CreatorFix) domain.PartialUpdate {
	update := domain.NewPartialUpdate(id)
	if fix.Delete {
		update.Delete(domain.FieldCreator)
	}
	if fix.CopyToDescription {
		update.Set(domain.FieldDescription, current)
	}
	if replacement := strings.TrimSpace(fix.Replacement); replacement != "" {
		update.Set(domain.FieldCreator, replacement)
	}
	return update
}
