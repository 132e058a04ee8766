package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Locator finds the repository currently holding an artifact.
type Locator struct {
	storage      driven.StorageConnector
	repositories domain.RepositoryList
}

// NewLocator creates a locator that searches repositories in list order.
func NewLocator(storage driven.StorageConnector, repositories domain.RepositoryList) *Locator {
	return &Locator{storage: storage, repositories: repositories}
}

// Locate returns the first repository, in configured order, for which the
// existence check succeeds. Absence from every repository is not an error.
func (l *Locator) Locate(ctx context.Context, path string) (string, bool, error) {
	for _, repository := range l.repositories.IDs() {
		exists, err := l.storage.Exists(ctx, repository, path)
		if err != nil {
			return "", false, fmt.Errorf("check %s in %s: %w", path, repository, err)
		}
		if exists {
			return repository, true, nil
		}
	}
	return "", false, nil
}
