package git

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMergeConflict is wrapped by MergeConflictError.
var ErrMergeConflict = errors.New("merge conflict")

// CommandError is a git invocation that exited non-zero.
type CommandError struct {
	Args   []string
	Status int
	Stderr string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: exit status %d", strings.Join(e.Args, " "), e.Status)
	if e.Stderr != "" {
		msg += ": " + lastLine(e.Stderr)
	}
	return msg
}

// ExitCode returns the status git exited with.
func (e *CommandError) ExitCode() int { return e.Status }

// MergeConflictError is returned when merging Ref into the current branch fails.
// Files lists paths left with unresolved conflicts.
type MergeConflictError struct {
	Ref    string
	Branch string
	Files  []string
	Status int
}

func (e *MergeConflictError) Error() string {
	if len(e.Files) == 0 {
		return fmt.Sprintf("merging %s into %s failed (exit status %d)", e.Ref, e.Branch, e.Status)
	}
	return fmt.Sprintf("merging %s into %s left %d conflicted file(s): %s",
		e.Ref, e.Branch, len(e.Files), strings.Join(e.Files, ", "))
}

// ExitCode returns the status of the failed merge.
func (e *MergeConflictError) ExitCode() int {
	if e.Status == 0 {
		return 1
	}
	return e.Status
}

func (e *MergeConflictError) Unwrap() error { return ErrMergeConflict }

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, "\n"); idx != -1 {
		return s[idx+1:]
	}
	return s
}
