package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown index or storage backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnknownRepository indicates an access-rights value that names no
	// configured repository.
	ErrUnknownRepository = errors.New("unknown repository")

	// ErrImmutableID indicates an update that tries to change or clear a
	// document identifier.
	ErrImmutableID = errors.New("document id is immutable")

	// ErrInvalidTransition indicates an illegal batch state change.
	ErrInvalidTransition = errors.New("invalid batch state transition")

	// ErrBatchInProgress indicates another batch run holds the run lock.
	ErrBatchInProgress = errors.New("batch in progress")

	// ErrLockNotHeld indicates a release of a lock this run does not own.
	ErrLockNotHeld = errors.New("lock not held")

	// Storage Errors.

	// ErrArtifactNotFound indicates a move of an artifact that is absent
	// from the source repository.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrStorageUnavailable indicates the storage backend cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Index Errors.

	// ErrIndexUnavailable indicates the search index cannot be reached.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrIndexClosed indicates use of a closed index connector.
	ErrIndexClosed = errors.New("index closed")
)

// ErrorKind classifies failures seen by a batch run.
type ErrorKind string

// Error kinds.
const (
	// KindInput is a malformed record from the record source.
	KindInput ErrorKind = "input"

	// KindValidation is a document that cannot be processed as described,
	// e.g. access rights naming no repository. Raised before any I/O.
	KindValidation ErrorKind = "validation"

	// KindIndex is a failure from the index connector.
	KindIndex ErrorKind = "index"

	// KindStorage is a failed existence check or move.
	KindStorage ErrorKind = "storage"

	// KindInterrupted is a cancelled run.
	KindInterrupted ErrorKind = "interrupted"
)

// Skippable reports whether a policy may skip documents failing with this
// kind. Interrupts end the run. A storage failure comes after the document's
// index write was staged and may leave its artifacts half moved.
func (k ErrorKind) Skippable() bool {
	return k != KindInterrupted && k != KindStorage
}

// ErrorKinds lists every error kind.
var ErrorKinds = []ErrorKind{KindInput, KindValidation, KindIndex, KindStorage, KindInterrupted}

// BatchError is a classified failure for one document of a batch.
type BatchError struct {
	Kind       ErrorKind
	DocumentID string
	Err        error
}

// NewBatchError wraps err with a kind and the document it occurred on.
func NewBatchError(kind ErrorKind, documentID string, err error) *BatchError {
	return &BatchError{Kind: kind, DocumentID: documentID, Err: err}
}

func (e *BatchError) Error() string {
	if e.DocumentID == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error on document %s: %v", e.Kind, e.DocumentID, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first BatchError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var be *BatchError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}

// Action is what a batch does when a document fails.
type Action string

// Actions.
const (
	// ActionAbort stops the batch without committing.
	ActionAbort Action = "abort"

	// ActionSkip records the failure and continues with the next document.
	ActionSkip Action = "skip"
)

// ParseAction parses "abort" or "skip".
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAbort, ActionSkip:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: unknown error action %q", ErrInvalidInput, s)
	}
}

// ErrorPolicy decides per error kind whether a batch aborts or skips.
// Kinds missing from the policy abort.
type ErrorPolicy map[ErrorKind]Action

// DefaultErrorPolicy aborts on every kind of error.
func DefaultErrorPolicy() ErrorPolicy {
	p := make(ErrorPolicy, len(ErrorKinds))
	for _, k := range ErrorKinds {
		p[k] = ActionAbort
	}
	return p
}

// ActionFor returns the action for an error kind.
// Kinds that are not Skippable always abort.
func (p ErrorPolicy) ActionFor(kind ErrorKind) Action {
	if !kind.Skippable() {
		return ActionAbort
	}
	if a, ok := p[kind]; ok {
		return a
	}
	return ActionAbort
}
