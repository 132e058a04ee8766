package driven

import (
	"context"

	"github.com/custodia-labs/archie/internal/core/domain"
)

// IndexConnector is the search index holding document metadata records.
// Writes are buffered: nothing staged through AddOrUpdate is guaranteed to be
// durable or visible until Commit returns.
type IndexConnector interface {
	// AddOrUpdate stages a partial update of the record for id. Only the
	// fields present in the update are written; set replaces the stored
	// value and delete clears it. Missing records are created.
	AddOrUpdate(ctx context.Context, id string, update domain.PartialUpdate) error

	// Commit flushes every staged write of this connector.
	Commit(ctx context.Context) error

	// Find returns the committed records whose field matches value exactly.
	Find(ctx context.Context, field domain.Field, value string) ([]domain.IndexRecord, error)

	// Close releases resources. Staged writes that were not committed are dropped.
	Close() error
}

// IndexRollbacker is implemented by index connectors able to discard staged
// writes that have not been committed.
type IndexRollbacker interface {
	Rollback(ctx context.Context) error
}
