package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driving"
	"github.com/custodia-labs/archie/internal/logger"
)

// Ensure BatchDriver implements the interface.
var _ driving.UpdateService = (*BatchDriver)(nil)

// BatchDriver runs the update pipeline over a batch of documents:
// normalise, stage the index update, relocate artifacts, and commit the
// index once for the whole batch.
//
// Runs are strictly sequential. Callers must not run two batches over the
// same documents concurrently unless a BatchLock is configured.
type BatchDriver struct {
	normalizer *Normalizer
	updater    *IndexUpdater
	relocator  *Relocator
	cfg        *runConfig
}

// NewBatchDriver creates a batch driver over the given connectors.
func NewBatchDriver(c Connectors, opts ...Option) *BatchDriver {
	locator := NewLocator(c.Storage, c.Repositories)
	return &BatchDriver{
		normalizer: NewNormalizer(),
		updater:    NewIndexUpdater(c.Index),
		relocator:  NewRelocator(c.Storage, locator, c.Repositories),
		cfg:        newRunConfig(opts),
	}
}

// Run processes docs in order and commits once at the end.
func (d *BatchDriver) Run(ctx context.Context, docs []domain.Document) (*domain.BatchReport, error) {
	return d.RunSource(ctx, &sliceSource{docs: docs})
}

// RunSource streams documents from src and commits once at the end.
// Any aborting failure stops the batch before the commit; the returned
// report describes how far it got.
//
//nolint:gocognit // Orchestration loop applying the error policy
func (d *BatchDriver) RunSource(ctx context.Context, src driving.RecordSource) (*domain.BatchReport, error) {
	r, err := d.cfg.begin(ctx, domain.JobUpdate, d.updater)
	if err != nil {
		return r.report, err
	}

	logger.Section("Update Batch " + r.report.RunID)

	for {
		if err := interrupted(ctx); err != nil {
			return r.abort(ctx, err)
		}

		doc, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var be *domain.BatchError
			if !errors.As(err, &be) {
				err = domain.NewBatchError(domain.KindInput, "", fmt.Errorf("read record: %w", err))
			}
			if err := r.handle("", err); err != nil {
				return r.abort(ctx, err)
			}
			continue
		}

		if err := r.next(); err != nil {
			return r.abort(ctx, err)
		}

		// Every stage keys on the same trimmed id
		doc.ID = strings.TrimSpace(doc.ID)
		if err := d.process(ctx, r, doc); err != nil {
			if err := r.handle(doc.ID, err); err != nil {
				return r.abort(ctx, err)
			}
			continue
		}
		r.report.Processed++
	}

	return r.commit(ctx)
}

// process handles one document: normalise, validate, stage, relocate.
func (d *BatchDriver) process(ctx context.Context, r *run, doc domain.Document) error {
	logger.Debug("Processing document %s", doc.ID)

	// 1. NORMALISE
	update := d.normalizer.Normalize(doc)

	// 2. VALIDATE the relocation target before anything is written
	if _, _, err := d.relocator.ResolveTarget(doc); err != nil {
		return err
	}

	// 3. STAGE the index update
	if err := d.updater.Apply(ctx, doc.ID, update); err != nil {
		return err
	}

	// 4. RELOCATE artifacts
	result, err := d.relocator.Relocate(ctx, doc)
	r.report.Moved += len(result.Moved)
	if result.Warning != nil {
		r.warn(*result.Warning)
	}
	if err != nil {
		return err
	}
	if result.Status == domain.RelocationMoved {
		logger.Info("Moved %d artifacts of %s from %s to %s",
			len(result.Moved), doc.ID, result.Source, result.Target)
	}
	return nil
}

// sliceSource adapts an in-memory batch to a RecordSource.
type sliceSource struct {
	docs []domain.Document
	pos  int
}

func (s *sliceSource) Next(_ context.Context) (domain.Document, error) {
	if s.pos >= len(s.docs) {
		return domain.Document{}, io.EOF
	}
	doc := s.docs[s.pos]
	s.pos++
	return doc, nil
}
