package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save stores or updates a run report.
func (s *runStore) Save(ctx context.Context, report domain.BatchReport) error {
	if report.RunID == "" {
		return domain.ErrInvalidInput
	}

	warnings := report.Warnings
	if warnings == nil {
		warnings = []domain.Warning{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("marshalling warnings: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, job, state, processed, skipped, moved, warnings, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			job = excluded.job,
			state = excluded.state,
			processed = excluded.processed,
			skipped = excluded.skipped,
			moved = excluded.moved,
			warnings = excluded.warnings,
			error = excluded.error,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`, report.RunID, string(report.Job), string(report.State),
		report.Processed, report.Skipped, report.Moved, string(warningsJSON),
		nullString(report.Error), formatTime(report.StartedAt), formatTime(report.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Get retrieves a run report by ID.
func (s *runStore) Get(ctx context.Context, runID string) (*domain.BatchReport, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT run_id, job, state, processed, skipped, moved, warnings, error, started_at, finished_at
		FROM runs WHERE run_id = ?
	`, runID)
	return scanRun(row)
}

// List returns run reports, most recent first. A limit of zero or less
// returns every run.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.BatchReport, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, job, state, processed, skipped, moved, warnings, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.BatchReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return reports, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.BatchReport, error) {
	var report domain.BatchReport
	var job, state, warningsJSON string
	var errMsg, startedAt, finishedAt sql.NullString

	if err := row.Scan(&report.RunID, &job, &state, &report.Processed, &report.Skipped,
		&report.Moved, &warningsJSON, &errMsg, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	report.Job = domain.Job(job)
	report.State = domain.BatchState(state)
	if errMsg.Valid {
		report.Error = errMsg.String
	}
	report.StartedAt = parseTime(startedAt)
	report.FinishedAt = parseTime(finishedAt)

	if err := json.Unmarshal([]byte(warningsJSON), &report.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshalling warnings: %w", err)
	}
	if len(report.Warnings) == 0 {
		report.Warnings = nil
	}
	return &report, nil
}
