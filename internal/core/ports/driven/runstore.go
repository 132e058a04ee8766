package driven

import (
	"context"

	"github.com/custodia-labs/archie/internal/core/domain"
)

// RunStore persists batch run reports.
type RunStore interface {
	// Save stores or updates a report keyed by its run ID.
	Save(ctx context.Context, report domain.BatchReport) error

	// Get retrieves a report by run ID.
	Get(ctx context.Context, runID string) (*domain.BatchReport, error)

	// List returns the most recent reports, newest first.
	// A limit of zero or less returns all reports.
	List(ctx context.Context, limit int) ([]domain.BatchReport, error)
}
