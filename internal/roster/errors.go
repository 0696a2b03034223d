package roster

import "errors"

// Validation failures returned by Manager.  None of them mutate the roster.
var (
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrMissingField        = errors.New("missing required field")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrNotFound            = errors.New("traveller not found")
)

// Reasons recorded by Load when the persisted snapshot is discarded.
var (
	errSnapshotTooLarge   = errors.New("snapshot exceeds capacity")
	errSnapshotIncomplete = errors.New("snapshot entry has empty field")
	errSnapshotDuplicate  = errors.New("snapshot has duplicate identifier")
)
