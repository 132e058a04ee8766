package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
	"github.com/custodia-labs/archie/internal/logger"
)

// Relocator moves a document's artifact family into the repository named by
// its access rights.
type Relocator struct {
	storage      driven.StorageConnector
	locator      *Locator
	repositories domain.RepositoryList
}

// NewRelocator creates a relocator. The locator decides where artifacts
// currently live.
func NewRelocator(storage driven.StorageConnector, locator *Locator, repositories domain.RepositoryList) *Relocator {
	return &Relocator{
		storage:      storage,
		locator:      locator,
		repositories: repositories,
	}
}

// ResolveTarget returns the repository the document's artifacts belong in.
// It performs no I/O. ok is false when there is nothing to relocate: no
// format, or no access rights. Access rights naming no configured repository
// are a validation error.
func (r *Relocator) ResolveTarget(doc domain.Document) (target string, ok bool, err error) {
	if !doc.HasPrimaryArtifact() {
		return "", false, nil
	}
	rights, ok := doc.AccessRights()
	if !ok {
		return "", false, nil
	}
	target, ok = r.repositories.Resolve(rights)
	if !ok {
		return "", false, domain.NewBatchError(domain.KindValidation, doc.ID,
			fmt.Errorf("%w: access rights %q", domain.ErrUnknownRepository, rights))
	}
	return target, true, nil
}

// Relocate makes the document's artifact storage consistent with its access
// rights. The original, thumbnail and text artifacts are moved in that order;
// missing derived artifacts are skipped. Moves already made are not undone
// when a later move fails.
//
//nolint:gocyclo // Sequential relocation steps
func (r *Relocator) Relocate(ctx context.Context, doc domain.Document) (domain.RelocationResult, error) {
	// 1. No format, no original artifact
	format, ok := doc.Format()
	if !ok {
		return domain.RelocationResult{Status: domain.RelocationNoFormat}, nil
	}

	// 2. Resolve the target before any storage I/O
	target, ok, err := r.ResolveTarget(doc)
	if err != nil {
		return domain.RelocationResult{}, err
	}
	if !ok {
		return domain.RelocationResult{
			Status: domain.RelocationNoAccessRights,
			Warning: &domain.Warning{
				DocumentID: doc.ID,
				Code:       domain.WarnNoAccessRights,
				Message:    "format declared without access rights, artifacts not relocated",
			},
		}, nil
	}

	// 3. Locate the original
	family := domain.ArtifactFamily(doc.ID, format)
	original := family[0]
	source, found, err := r.locator.Locate(ctx, original.Path)
	if err != nil {
		return domain.RelocationResult{Target: target}, domain.NewBatchError(domain.KindStorage, doc.ID, err)
	}
	if !found {
		return domain.RelocationResult{
			Status: domain.RelocationNotLocated,
			Target: target,
			Warning: &domain.Warning{
				DocumentID: doc.ID,
				Code:       domain.WarnOriginalMissing,
				Message:    fmt.Sprintf("%s not found in any repository", original.Path),
			},
		}, nil
	}

	result := domain.RelocationResult{Source: source, Target: target}

	// 4. Already consistent
	if domain.SameRepository(source, target) {
		result.Status = domain.RelocationConsistent
		return result, nil
	}

	// 5. Move original, thumbnail, text
	for _, artifact := range family {
		if artifact.Optional() {
			exists, err := r.storage.Exists(ctx, source, artifact.Path)
			if err != nil {
				return result, domain.NewBatchError(domain.KindStorage, doc.ID,
					fmt.Errorf("check %s in %s: %w", artifact.Path, source, err))
			}
			if !exists {
				continue
			}
		}

		logger.Debug("Moving %s from %s to %s", artifact.Path, source, target)
		if err := r.storage.Move(ctx, source, target, artifact.Path); err != nil {
			return result, domain.NewBatchError(domain.KindStorage, doc.ID,
				fmt.Errorf("move %s from %s to %s: %w", artifact.Path, source, target, err))
		}
		result.Moved = append(result.Moved, artifact.Path)
	}

	result.Status = domain.RelocationMoved
	return result, nil
}
