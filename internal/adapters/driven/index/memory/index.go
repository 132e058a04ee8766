// Package memory provides an in-memory IndexConnector.
//
// Staged writes are kept apart from committed records until Commit, which
// mirrors the buffering of a real search index and makes the batch commit
// boundary observable in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Ensure Index implements the interfaces.
var (
	_ driven.IndexConnector  = (*Index)(nil)
	_ driven.IndexRollbacker = (*Index)(nil)
)

type stagedWrite struct {
	id     string
	update domain.PartialUpdate
}

// Index is an in-memory implementation of driven.IndexConnector.
type Index struct {
	mu      sync.RWMutex
	records map[string]map[domain.Field][]string
	staged  []stagedWrite
	commits int
	closed  bool
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{records: make(map[string]map[domain.Field][]string)}
}

// Put stores a committed record directly, bypassing staging.
func (x *Index) Put(rec domain.IndexRecord) {
	x.mu.Lock()
	defer x.mu.Unlock()
	values := make(map[domain.Field][]string, len(rec.Values)+1)
	for f, vs := range rec.Values {
		values[f] = append([]string(nil), vs...)
	}
	values[domain.FieldID] = []string{rec.ID}
	x.records[rec.ID] = values
}

// AddOrUpdate stages a partial update.
func (x *Index) AddOrUpdate(_ context.Context, id string, update domain.PartialUpdate) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return domain.ErrIndexClosed
	}
	x.staged = append(x.staged, stagedWrite{id: id, update: update.Clone()})
	return nil
}

// Commit applies every staged write in order.
func (x *Index) Commit(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return domain.ErrIndexClosed
	}
	for _, w := range x.staged {
		rec, ok := x.records[w.id]
		if !ok {
			rec = map[domain.Field][]string{domain.FieldID: {w.id}}
			x.records[w.id] = rec
		}
		for _, f := range w.update.Fields() {
			if f == domain.FieldID {
				continue
			}
			fu, _ := w.update.Get(f)
			switch fu.Op {
			case domain.OpSet:
				rec[f] = []string{fu.Value}
			case domain.OpDelete:
				delete(rec, f)
			}
		}
	}
	x.staged = nil
	x.commits++
	return nil
}

// Rollback drops staged writes.
func (x *Index) Rollback(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.staged = nil
	return nil
}

// Find returns committed records holding value in field.
func (x *Index) Find(_ context.Context, field domain.Field, value string) ([]domain.IndexRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return nil, domain.ErrIndexClosed
	}
	var out []domain.IndexRecord
	for id, rec := range x.records {
		for _, v := range rec[field] {
			if v == value {
				out = append(out, toRecord(id, rec))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns a committed record.
func (x *Index) Get(id string) (domain.IndexRecord, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	rec, ok := x.records[id]
	if !ok {
		return domain.IndexRecord{}, false
	}
	return toRecord(id, rec), true
}

// Len returns the number of committed records.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// Staged returns the number of writes awaiting commit.
func (x *Index) Staged() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.staged)
}

// Commits returns how many times Commit succeeded.
func (x *Index) Commits() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.commits
}

// Close drops staged writes and rejects further use.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.staged = nil
	x.closed = true
	return nil
}

func toRecord(id string, rec map[domain.Field][]string) domain.IndexRecord {
	values := make(map[domain.Field][]string, len(rec))
	for f, vs := range rec {
		if f == domain.FieldID {
			continue
		}
		values[f] = append([]string(nil), vs...)
	}
	return domain.IndexRecord{ID: id, Values: values}
}
