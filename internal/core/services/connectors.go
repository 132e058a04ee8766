package services

import (
	"fmt"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Connectors holds the collaborator handles shared by the update pipeline.
// The hosting application builds it once and passes it to each component.
type Connectors struct {
	Index        driven.IndexConnector
	Storage      driven.StorageConnector
	Repositories domain.RepositoryList
}

// Validate checks that every required handle is present.
func (c Connectors) Validate() error {
	if c.Index == nil {
		return fmt.Errorf("%w: index connector not configured", domain.ErrInvalidInput)
	}
	if c.Storage == nil {
		return fmt.Errorf("%w: storage connector not configured", domain.ErrInvalidInput)
	}
	if c.Repositories.Len() == 0 {
		return fmt.Errorf("%w: no repositories configured", domain.ErrInvalidInput)
	}
	return nil
}
