package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driving"
)

// mockUpdateService drains the source and returns a canned report.
type mockUpdateService struct {
	report *domain.BatchReport
	err    error
	seen   []string
}

func (m *mockUpdateService) Run(ctx context.Context, docs []domain.Document) (*domain.BatchReport, error) {
	return m.RunSource(ctx, &docSource{docs: docs})
}

func (m *mockUpdateService) RunSource(ctx context.Context, src driving.RecordSource) (*domain.BatchReport, error) {
	for {
		doc, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return m.report, err
		}
		m.seen = append(m.seen, doc.ID)
	}
	return m.report, m.err
}

type mockCreatorService struct {
	fixes  []domain.CreatorFix
	report *domain.BatchReport
	err    error
}

func (m *mockCreatorService) Fix(_ context.Context, fixes []domain.CreatorFix) (*domain.BatchReport, error) {
	m.fixes = fixes
	return m.report, m.err
}

type mockRunHistory struct {
	reports []domain.BatchReport
	limit   int
}

func (m *mockRunHistory) Runs(_ context.Context, limit int) ([]domain.BatchReport, error) {
	m.limit = limit
	return m.reports, nil
}

func (m *mockRunHistory) Run(_ context.Context, runID string) (*domain.BatchReport, error) {
	for i := range m.reports {
		if m.reports[i].RunID == runID {
			return &m.reports[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

type docSource struct {
	docs []domain.Document
	pos  int
}

func (s *docSource) Next(_ context.Context) (domain.Document, error) {
	if s.pos >= len(s.docs) {
		return domain.Document{}, io.EOF
	}
	s.pos++
	return s.docs[s.pos-1], nil
}

// setupServices injects s for the duration of the test.
func setupServices(t *testing.T, s *Services) {
	t.Helper()
	oldServices, oldWire, oldDir := services, wire, configDir
	services, wire, closeFn = s, nil, nil
	t.Cleanup(func() {
		services, wire, closeFn, configDir = oldServices, oldWire, nil, oldDir
	})
}

// execute runs the root command with args and returns everything printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return buf.String(), err
}
