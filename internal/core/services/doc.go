// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The update pipeline is built from small components, leaves first:
// Normalizer, IndexUpdater, Locator, Relocator and the BatchDriver that runs
// them per document. All of them receive their collaborators explicitly
// through Connectors; there is no package-level state.
package services
