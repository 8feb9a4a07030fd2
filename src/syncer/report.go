package syncer

import (
	"time"

	"github.com/vidaislive/forksync/src/verify"
)

// Step statuses, shared with output.StatusIcon.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Step is one recorded action of a sync or tag run.
type Step struct {
	Name   string
	Status string
	Detail string
}

// Report collects what a run did, for rendering.
type Report struct {
	UpstreamTag string
	Base        string
	Branch      string
	ForkTag     string
	HandoffPath string
	DryRun      bool
	Steps       []Step
	// Verification is set when the fork tag was verified after pushing.
	Verification *verify.Result
	Started      time.Time
}

func newReport(dryRun bool) *Report {
	return &Report{DryRun: dryRun, Started: time.Now()}
}

func (r *Report) ok(name, detail string) {
	r.Steps = append(r.Steps, Step{Name: name, Status: StatusSuccess, Detail: detail})
}

func (r *Report) fail(name, detail string) {
	r.Steps = append(r.Steps, Step{Name: name, Status: StatusFailed, Detail: detail})
}

func (r *Report) skip(name, detail string) {
	r.Steps = append(r.Steps, Step{Name: name, Status: StatusSkipped, Detail: detail})
}

// Status is "failed" if any step failed, otherwise "success".
func (r *Report) Status() string {
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			return StatusFailed
		}
	}
	return StatusSuccess
}
