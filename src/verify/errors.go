package verify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrMissingTag is wrapped by MissingTagError.
	ErrMissingTag = errors.New("fork tag missing on remote")
	// ErrAssertionMismatch is wrapped by AssertionMismatchError.
	ErrAssertionMismatch = errors.New("preview assertions failed")
)

// MissingTagError means the fork tag is not resolvable on the remote.
// Verification stops before any preview runs.
type MissingTagError struct {
	Tag    string
	Remote string
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("tag %s not found on remote %s", e.Tag, e.Remote)
}

func (e *MissingTagError) Unwrap() error { return ErrMissingTag }

// AssertionMismatchError collects every failed preview assertion of one run.
type AssertionMismatchError struct {
	ForkTag string
	Errors  *multierror.Error
}

func newAssertionMismatch(forkTag string, failures []string) *AssertionMismatchError {
	var merr *multierror.Error
	for _, f := range failures {
		merr = multierror.Append(merr, errors.New(f))
	}
	merr.ErrorFormat = listFormat
	return &AssertionMismatchError{ForkTag: forkTag, Errors: merr}
}

func (e *AssertionMismatchError) Error() string {
	return fmt.Sprintf("verification of %s failed: %s", e.ForkTag, e.Errors.Error())
}

// Failures returns the individual failure messages in check order.
func (e *AssertionMismatchError) Failures() []string {
	out := make([]string, len(e.Errors.Errors))
	for i, err := range e.Errors.Errors {
		out[i] = err.Error()
	}
	return out
}

func (e *AssertionMismatchError) Is(target error) bool { return target == ErrAssertionMismatch }

func listFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "  - " + err.Error()
	}
	return fmt.Sprintf("%d assertion(s) failed:\n%s", len(errs), strings.Join(lines, "\n"))
}
