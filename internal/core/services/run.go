package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
	"github.com/custodia-labs/archie/internal/logger"
)

// DefaultLockName is the run lock shared by every batch job over one index.
const DefaultLockName = "archie:batch"

// runConfig holds the settings shared by batch jobs.
type runConfig struct {
	policy   domain.ErrorPolicy
	lock     driven.BatchLock
	lockName string
	runs     driven.RunStore
	now      func() time.Time
	newRunID func() string
}

// Option configures a batch job.
type Option func(*runConfig)

// WithErrorPolicy sets the per error kind abort/skip policy.
func WithErrorPolicy(policy domain.ErrorPolicy) Option {
	return func(c *runConfig) {
		c.policy = policy
	}
}

// WithBatchLock makes each run hold the named lock for its duration.
// An empty name uses DefaultLockName.
func WithBatchLock(lock driven.BatchLock, name string) Option {
	return func(c *runConfig) {
		c.lock = lock
		if name != "" {
			c.lockName = name
		}
	}
}

// WithRunStore records every run's report.
func WithRunStore(runs driven.RunStore) Option {
	return func(c *runConfig) {
		c.runs = runs
	}
}

func newRunConfig(opts []Option) *runConfig {
	c := &runConfig{
		policy:   domain.DefaultErrorPolicy(),
		lockName: DefaultLockName,
		now:      time.Now,
		newRunID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run is one execution of a batch job: its state machine, report and lock.
type run struct {
	cfg     *runConfig
	updater *IndexUpdater
	batch   *domain.Batch
	report  *domain.BatchReport
	release func(context.Context) error
}

// begin starts a run and takes the run lock if one is configured.
// On failure the returned run is already aborted.
func (c *runConfig) begin(ctx context.Context, job domain.Job, updater *IndexUpdater) (*run, error) {
	id := c.newRunID()
	r := &run{
		cfg:     c,
		updater: updater,
		batch:   domain.NewBatch(id),
		report: &domain.BatchReport{
			RunID:     id,
			Job:       job,
			State:     domain.BatchIdle,
			StartedAt: c.now(),
		},
	}

	if c.lock != nil {
		release, err := c.lock.Acquire(ctx, c.lockName)
		if err != nil {
			_, err = r.abort(ctx, fmt.Errorf("acquire run lock: %w", err))
			return r, err
		}
		r.release = release
	}

	logger.Debug("Run %s started (%s)", id, job)
	return r, nil
}

// next moves to the next document.
func (r *run) next() error {
	if err := r.batch.Transition(domain.BatchProcessing); err != nil {
		return err
	}
	r.report.State = r.batch.State
	return nil
}

// handle applies the error policy to a document failure. It returns nil if
// the document was skipped and the run continues.
func (r *run) handle(docID string, err error) error {
	kind, ok := domain.KindOf(err)
	if !ok {
		return err
	}
	if r.cfg.policy.ActionFor(kind) != domain.ActionSkip {
		return err
	}
	r.report.Skipped++
	r.warn(domain.Warning{DocumentID: docID, Code: domain.WarnSkipped, Message: err.Error()})
	return nil
}

// warn records and logs a warning.
func (r *run) warn(w domain.Warning) {
	r.report.AddWarning(w)
	logger.Warn("%s", w.String())
}

// commit runs AllProcessed -> Committing -> Done.
func (r *run) commit(ctx context.Context) (*domain.BatchReport, error) {
	if err := r.batch.Transition(domain.BatchAllProcessed); err != nil {
		return r.abort(ctx, err)
	}
	if err := r.batch.Transition(domain.BatchCommitting); err != nil {
		return r.abort(ctx, err)
	}
	r.report.State = r.batch.State

	if err := r.updater.CommitBatch(ctx); err != nil {
		return r.abort(ctx, err)
	}

	if err := r.batch.Transition(domain.BatchDone); err != nil {
		return r.abort(ctx, err)
	}
	r.finish(ctx)
	logger.Info("Run %s completed: %d processed, %d skipped, %d artifacts moved",
		r.report.RunID, r.report.Processed, r.report.Skipped, r.report.Moved)
	return r.report, nil
}

// abort ends the run without committing. Artifact moves already made stay
// where they are.
func (r *run) abort(ctx context.Context, err error) (*domain.BatchReport, error) {
	if r.batch.State.CanTransition(domain.BatchAborted) {
		_ = r.batch.Transition(domain.BatchAborted)
	} else {
		r.batch.State = domain.BatchAborted
	}
	r.report.Error = err.Error()
	r.updater.Discard(ctx)
	r.finish(ctx)
	logger.Error("Run %s aborted after %d documents: %v", r.report.RunID, r.report.Processed, err)
	return r.report, err
}

// finish records the terminal state, history and releases the lock.
func (r *run) finish(ctx context.Context) {
	r.report.State = r.batch.State
	r.report.FinishedAt = r.cfg.now()

	// Bookkeeping uses a fresh context so a cancelled run is still recorded.
	bg := context.WithoutCancel(ctx)
	if r.cfg.runs != nil {
		if err := r.cfg.runs.Save(bg, *r.report); err != nil {
			logger.Warn("Failed to record run %s: %v", r.report.RunID, err)
		}
	}
	if r.release != nil {
		if err := r.release(bg); err != nil && !errors.Is(err, domain.ErrLockNotHeld) {
			logger.Warn("Failed to release run lock: %v", err)
		}
		r.release = nil
	}
}

// interrupted converts a context error into an interrupted batch error.
func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.NewBatchError(domain.KindInterrupted, "", err)
	}
	return nil
}
