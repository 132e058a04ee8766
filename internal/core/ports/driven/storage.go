package driven

import "context"

// StorageConnector is the artifact store, partitioned into named repositories.
// Artifact paths are relative to a repository (e.g. "originals/D1.pdf").
type StorageConnector interface {
	// Exists reports whether path is present in repository.
	Exists(ctx context.Context, repository, path string) (bool, error)

	// Move relocates path from source to target. The artifact exists in
	// exactly one of the two afterwards. Fails with domain.ErrArtifactNotFound
	// if the source artifact is absent.
	Move(ctx context.Context, source, target, path string) error
}
