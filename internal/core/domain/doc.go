// Package domain defines the core business entities for archie.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An archive document with its metadata fields
//   - PartialUpdate: A per-field set/delete change to an index record
//   - Artifact: A stored file belonging to a document (original, thumbnail, text)
//   - RepositoryList: The ordered access-rights tiers artifacts live in
//   - Batch: The state machine of one update run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
