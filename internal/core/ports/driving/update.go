package driving

import (
	"context"

	"github.com/custodia-labs/archie/internal/core/domain"
)

// RecordSource yields documents one at a time from an external record source
// such as a CSV file. Next returns io.EOF after the last document. A malformed
// record is returned as an error; the source stays usable for the next call.
type RecordSource interface {
	Next(ctx context.Context) (domain.Document, error)
}

// UpdateService applies document metadata updates to the index and keeps
// each document's artifacts in the repository its access rights name.
type UpdateService interface {
	// Run processes docs in order and commits once at the end.
	// The report is returned even when the batch aborts.
	Run(ctx context.Context, docs []domain.Document) (*domain.BatchReport, error)

	// RunSource streams documents from src and commits once at the end.
	RunSource(ctx context.Context, src RecordSource) (*domain.BatchReport, error)
}

// RunHistory exposes past batch runs.
type RunHistory interface {
	// Runs returns the most recent reports, newest first.
	Runs(ctx context.Context, limit int) ([]domain.BatchReport, error)

	// Run returns one report by ID.
	Run(ctx context.Context, runID string) (*domain.BatchReport, error)
}
