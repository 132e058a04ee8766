package domain

import (
	"fmt"
	"time"
)

// BatchState is the state of one batch run.
type BatchState string

// Batch states.
const (
	BatchIdle         BatchState = "idle"
	BatchProcessing   BatchState = "processing"
	BatchAllProcessed BatchState = "all_processed"
	BatchCommitting   BatchState = "committing"
	BatchDone         BatchState = "done"
	BatchAborted      BatchState = "aborted"
)

// allowed lists the legal transitions. Processing loops onto itself once per
// document. A failed commit aborts the run.
var allowed = map[BatchState][]BatchState{
	BatchIdle:         {BatchProcessing, BatchAllProcessed, BatchAborted},
	BatchProcessing:   {BatchProcessing, BatchAllProcessed, BatchAborted},
	BatchAllProcessed: {BatchCommitting},
	BatchCommitting:   {BatchDone, BatchAborted},
}

// IsTerminal returns true for Done and Aborted.
func (s BatchState) IsTerminal() bool {
	return s == BatchDone || s == BatchAborted
}

// CanTransition reports whether a move from s to next is legal.
func (s BatchState) CanTransition(next BatchState) bool {
	for _, to := range allowed[s] {
		if to == next {
			return true
		}
	}
	return false
}

// Batch tracks the progress of one run through its state machine.
type Batch struct {
	RunID string
	State BatchState

	// Position is the zero-based index of the document being processed.
	// It is -1 before the first document.
	Position int
}

// NewBatch creates an idle batch.
func NewBatch(runID string) *Batch {
	return &Batch{RunID: runID, State: BatchIdle, Position: -1}
}

// Transition moves the batch to next, or returns ErrInvalidTransition.
func (b *Batch) Transition(next BatchState) error {
	if !b.State.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.State, next)
	}
	if next == BatchProcessing {
		b.Position++
	}
	b.State = next
	return nil
}

// WarningCode identifies a non-fatal condition worth reporting.
type WarningCode string

// Warning codes.
const (
	// WarnOriginalMissing means the original artifact exists in no repository.
	WarnOriginalMissing WarningCode = "original_missing"

	// WarnNoAccessRights means a document with a format declares no access
	// rights, so its artifacts were not relocated.
	WarnNoAccessRights WarningCode = "no_access_rights"

	// WarnMultipleCreators means a creator fix skipped a record holding more
	// than one creator.
	WarnMultipleCreators WarningCode = "multiple_creators"

	// WarnSkipped means a failing document was skipped by the error policy.
	WarnSkipped WarningCode = "skipped"
)

// Warning is a non-fatal condition reported by a run.
type Warning struct {
	DocumentID string
	Code       WarningCode
	Message    string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s [%s]: %s", w.DocumentID, w.Code, w.Message)
}

// RelocationStatus describes what relocation did for one document.
type RelocationStatus string

// Relocation statuses.
const (
	RelocationNoFormat       RelocationStatus = "no_format"
	RelocationNoAccessRights RelocationStatus = "no_access_rights"
	RelocationNotLocated     RelocationStatus = "not_located"
	RelocationConsistent     RelocationStatus = "consistent"
	RelocationMoved          RelocationStatus = "moved"
)

// RelocationResult reports the outcome of relocating one document.
type RelocationResult struct {
	Status RelocationStatus

	// Source is the repository the original was found in.
	Source string

	// Target is the repository the document's access rights name.
	Target string

	// Moved lists the artifact paths moved, in move order.
	Moved []string

	Warning *Warning
}

// Job names the kind of work a batch run performs.
type Job string

// Jobs.
const (
	JobUpdate      Job = "update"
	JobFixCreators Job = "fix_creators"
)

// BatchReport summarises one batch run.
type BatchReport struct {
	RunID string
	Job   Job
	State BatchState

	// Processed counts documents that completed all steps.
	Processed int

	// Skipped counts documents dropped by the error policy.
	Skipped int

	// Moved counts artifacts relocated.
	Moved int

	Warnings []Warning

	// Error is the abort reason, empty unless State is BatchAborted.
	Error string

	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded returns true if the batch committed.
func (r *BatchReport) Succeeded() bool {
	return r.State == BatchDone
}

// AddWarning appends a warning to the report.
func (r *BatchReport) AddWarning(w Warning) {
	r.Warnings = append(r.Warnings, w)
}
