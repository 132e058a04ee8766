// Package memory provides an in-memory StorageConnector.
// Each repository is a map from artifact path to content.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StorageConnector = (*Store)(nil)

// Store is an in-memory implementation of driven.StorageConnector.
type Store struct {
	mu    sync.RWMutex
	repos map[string]map[string][]byte
}

// NewStore creates a store with the given empty repositories.
func NewStore(repositories ...string) *Store {
	s := &Store{repos: make(map[string]map[string][]byte, len(repositories))}
	for _, r := range repositories {
		s.repos[r] = make(map[string][]byte)
	}
	return s
}

// Put stores an artifact, creating the repository if needed.
func (s *Store) Put(repository, path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, ok := s.repos[repository]
	if !ok {
		repo = make(map[string][]byte)
		s.repos[repository] = repo
	}
	repo[path] = data
}

// Has reports whether an artifact is stored, without going through a context.
func (s *Store) Has(repository, path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.repos[repository][path]
	return ok
}

// List returns the artifact paths of a repository, sorted.
func (s *Store) List(repository string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.repos[repository]))
	for p := range s.repos[repository] {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Exists reports whether path is present in repository.
func (s *Store) Exists(_ context.Context, repository, path string) (bool, error) {
	return s.Has(repository, path), nil
}

// Move relocates path from source to target.
func (s *Store) Move(_ context.Context, source, target, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.repos[source][path]
	if !ok {
		return fmt.Errorf("%w: %s in %s", domain.ErrArtifactNotFound, path, source)
	}
	dst, ok := s.repos[target]
	if !ok {
		return fmt.Errorf("%w: repository %s", domain.ErrNotFound, target)
	}
	dst[path] = data
	delete(s.repos[source], path)
	return nil
}
