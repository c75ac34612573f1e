package moderation

import (
	"errors"
	"fmt"
)

// ErrPolicy is wrapped by every error caused by a request the policy rejects.
var ErrPolicy = errors.New("policy violation")

var (
	ErrInvalidDuration = fmt.Errorf("%w: duration must be between 1 minute and 365 days", ErrPolicy)
	ErrInvalidKind     = fmt.Errorf("%w: unknown punishment kind", ErrPolicy)
	ErrMissingMember   = fmt.Errorf("%w: member id is required", ErrPolicy)
)

// ErrNotFound is returned when an id matches neither a punishment nor a warning.
var ErrNotFound = errors.New("no punishment or warning with that id")

// PersistenceError reports a failed save. The in-memory change that triggered
// it has already been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
