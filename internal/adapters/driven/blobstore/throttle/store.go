// Package throttle wraps a StorageConnector with a token bucket so batch
// runs stay within an object store's request budget.
package throttle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StorageConnector = (*Store)(nil)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate limit. Zero or less disables
	// limiting.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size (default: 1).
	BurstSize int
}

// Store rate-limits every call to the wrapped connector.
type Store struct {
	next    driven.StorageConnector
	limiter *rate.Limiter
}

// New wraps next. A non-positive rate returns next unchanged.
func New(next driven.StorageConnector, cfg Config) driven.StorageConnector {
	if cfg.RequestsPerSecond <= 0 {
		return next
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &Store{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Exists waits for a token, then checks existence.
func (s *Store) Exists(ctx context.Context, repository, path string) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	return s.next.Exists(ctx, repository, path)
}

// Move waits for a token, then moves.
func (s *Store) Move(ctx context.Context, source, target, path string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	return s.next.Move(ctx, source, target, path)
}

func (s *Store) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}
