// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - IndexConnector: Partial updates, batch commit and lookups on the search index
//   - StorageConnector: Existence checks and moves between storage repositories
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - BatchLock: External single-run coordination. Without it, callers must
//     ensure at most one batch runs at a time.
//   - RunStore: Batch run history. Without it, reports are only returned.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
