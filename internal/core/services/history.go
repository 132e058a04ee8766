package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
	"github.com/custodia-labs/archie/internal/core/ports/driving"
)

// Ensure RunHistoryService implements the interface.
var _ driving.RunHistory = (*RunHistoryService)(nil)

// errHistoryNotConfigured is returned when no run store is wired.
var errHistoryNotConfigured = errors.New("run history not configured")

// RunHistoryService reads past batch runs from a RunStore.
type RunHistoryService struct {
	runs driven.RunStore
}

// NewRunHistoryService creates a history service. runs may be nil.
func NewRunHistoryService(runs driven.RunStore) *RunHistoryService {
	return &RunHistoryService{runs: runs}
}

// Runs returns the most recent reports, newest first.
func (s *RunHistoryService) Runs(ctx context.Context, limit int) ([]domain.BatchReport, error) {
	if s.runs == nil {
		return nil, errHistoryNotConfigured
	}
	return s.runs.List(ctx, limit)
}

// Run returns one report by ID.
func (s *RunHistoryService) Run(ctx context.Context, runID string) (*domain.BatchReport, error) {
	if s.runs == nil {
		return nil, errHistoryNotConfigured
	}
	return s.runs.Get(ctx, runID)
}
