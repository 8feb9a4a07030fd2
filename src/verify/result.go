package verify

import (
	"fmt"

	"github.com/vidaislive/forksync/src/build"
)

// Check is one evaluated assertion.
type Check struct {
	Target build.Target // "" for checks that are not tied to a preview
	Name   string
	Want   string
	Passed bool
	Detail string
}

// Failure renders the check as a failure message naming the missing text.
func (c Check) Failure() string {
	where := "verification"
	if c.Target != "" {
		where = string(c.Target) + " preview"
	}
	if c.Detail != "" {
		return fmt.Sprintf("%s: %s: want %q, got %s", where, c.Name, c.Want, c.Detail)
	}
	return fmt.Sprintf("%s: missing %q", where, c.Want)
}

// Result is the outcome of one verification run.
type Result struct {
	ForkTag   string
	SourceRef string
	ImageTag  string
	Checks    []Check
	// Failures holds one message per failed check, in evaluation order.
	Failures []string
	// DockerSkipped is set when only the remote tag precondition ran.
	DockerSkipped bool
}

func (r *Result) add(c Check) {
	r.Checks = append(r.Checks, c)
	if !c.Passed {
		r.Failures = append(r.Failures, c.Failure())
	}
}

// Passed reports whether every check passed.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// Err returns nil for a passing result and an *AssertionMismatchError otherwise.
func (r *Result) Err() error {
	if r.Passed() {
		return nil
	}
	return newAssertionMismatch(r.ForkTag, r.Failures)
}
