package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// indexStore implements driven.IndexConnector. Writes are buffered until
// Commit, which applies them in one transaction.
type indexStore struct {
	store *Store

	mu      sync.Mutex
	pending []pendingWrite
	closed  bool
}

var (
	_ driven.IndexConnector  = (*indexStore)(nil)
	_ driven.IndexRollbacker = (*indexStore)(nil)
)

type pendingWrite struct {
	id     string
	update domain.PartialUpdate
}

// AddOrUpdate buffers a partial update until the next Commit.
func (s *indexStore) AddOrUpdate(_ context.Context, id string, update domain.PartialUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrIndexClosed
	}
	s.pending = append(s.pending, pendingWrite{id: id, update: update.Clone()})
	return nil
}

// Commit applies every buffered write in a single transaction.
// On failure nothing is applied and the buffer is kept.
func (s *indexStore) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrIndexClosed
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(time.Now())
	for _, w := range s.pending {
		if err := applyWrite(ctx, tx, w, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index writes: %w", err)
	}
	s.pending = nil
	return nil
}

func applyWrite(ctx context.Context, tx *sql.Tx, w pendingWrite, now interface{}) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, updated_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`, w.id, now)
	if err != nil {
		return fmt.Errorf("saving document %s: %w", w.id, err)
	}

	for _, field := range w.update.Fields() {
		if field == domain.FieldID {
			continue
		}
		fu, _ := w.update.Get(field)

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM document_fields WHERE document_id = ? AND field = ?",
			w.id, string(field)); err != nil {
			return fmt.Errorf("clearing %s on %s: %w", field, w.id, err)
		}
		if fu.Op != domain.OpSet {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO document_fields (document_id, field, position, value) VALUES (?, ?, 0, ?)",
			w.id, string(field), fu.Value); err != nil {
			return fmt.Errorf("setting %s on %s: %w", field, w.id, err)
		}
	}
	return nil
}

// Rollback drops buffered writes.
func (s *indexStore) Rollback(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	return nil
}

// Find returns committed records holding value in field.
func (s *indexStore) Find(ctx context.Context, field domain.Field, value string) ([]domain.IndexRecord, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, domain.ErrIndexClosed
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT f.document_id, f.field, f.value
		FROM document_fields f
		WHERE f.document_id IN (
			SELECT document_id FROM document_fields WHERE field = ? AND value = ?
		)
		ORDER BY f.document_id, f.field, f.position
	`, string(field), value)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", field, err)
	}
	defer rows.Close()

	var records []domain.IndexRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id, name, v string
		if err := rows.Scan(&id, &name, &v); err != nil {
			return nil, fmt.Errorf("scanning document field: %w", err)
		}
		if len(records) == 0 || records[len(records)-1].ID != id {
			records = append(records, domain.IndexRecord{ID: id, Values: make(map[domain.Field][]string)})
		}
		rec := &records[len(records)-1]
		f := domain.Field(name)
		rec.Values[f] = append(rec.Values[f], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document fields: %w", err)
	}
	return records, nil
}

// Close drops buffered writes. The database stays open for the Store.
func (s *indexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.closed = true
	return nil
}
