package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Ensure BatchLock implements the interface.
var _ driven.BatchLock = (*BatchLock)(nil)

// BatchLock is a process-local driven.BatchLock.
type BatchLock struct {
	mu    sync.Mutex
	held  map[string]uint64
	token uint64
}

// NewBatchLock creates a new process-local lock set.
func NewBatchLock() *BatchLock {
	return &BatchLock{held: make(map[string]uint64)}
}

// Acquire takes the named lock or fails with domain.ErrBatchInProgress.
func (l *BatchLock) Acquire(_ context.Context, name string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[name]; ok {
		return nil, domain.ErrBatchInProgress
	}
	l.token++
	token := l.token
	l.held[name] = token

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[name] != token {
			return domain.ErrLockNotHeld
		}
		delete(l.held, name)
		return nil
	}, nil
}

// Held reports whether the named lock is taken.
func (l *BatchLock) Held(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[name]
	return ok
}
