package syncer

import (
	"errors"
	"fmt"
)

// ErrPrecondition is wrapped by PreconditionError.
var ErrPrecondition = errors.New("precondition failed")

// PreconditionError stops a sync before anything was changed.
type PreconditionError struct {
	Check  string // "clean worktree", "base ref", "branch", "fork tag"
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Check, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }
