package driving

import (
	"context"

	"github.com/custodia-labs/archie/internal/core/domain"
)

// CreatorService corrects creator values across the index.
type CreatorService interface {
	// Fix applies each correction to every record holding exactly the
	// existing creator, then commits once.
	Fix(ctx context.Context, fixes []domain.CreatorFix) (*domain.BatchReport, error)
}
