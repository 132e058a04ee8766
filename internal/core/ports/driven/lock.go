package driven

import "context"

// BatchLock coordinates batch runs across processes.
// Locate-then-move is a check-then-act sequence, so two runs over the same
// documents must never overlap.
type BatchLock interface {
	// Acquire takes the named lock or fails with domain.ErrBatchInProgress.
	// The returned function releases it.
	Acquire(ctx context.Context, name string) (release func(context.Context) error, err error)
}
