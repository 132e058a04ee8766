package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu    sync.RWMutex
	runs  map[string]domain.BatchReport
	order []string
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.BatchReport),
	}
}

// Save stores or replaces a run report.
func (s *RunStore) Save(_ context.Context, report domain.BatchReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[report.RunID]; !ok {
		s.order = append(s.order, report.RunID)
	}
	report.Warnings = append([]domain.Warning(nil), report.Warnings...)
	s.runs[report.RunID] = report
	return nil
}

// Get retrieves a run report.
func (s *RunStore) Get(_ context.Context, runID string) (*domain.BatchReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &report, nil
}

// List returns reports newest first. A limit of zero or less returns all.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.BatchReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.BatchReport, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
