package output

import (
	"fmt"
	"io"
	"time"

	"github.com/vidaislive/forksync/src/syncer"
	"github.com/vidaislive/forksync/src/verify"
)

// SyncReport renders the steps of a sync or tag run.
func SyncReport(w io.Writer, title string, rep *syncer.Report, color bool) {
	kv := []KV{{"upstream", orDash(rep.UpstreamTag)}, {"fork tag", orDash(rep.ForkTag)}}
	if rep.Branch != "" {
		kv = append(kv, KV{"branch", rep.Branch}, KV{"base", orDash(rep.Base)})
	}
	if rep.DryRun {
		kv = append(kv, KV{"mode", "dry run"})
	}
	ContextBlock(w, kv)

	sec := NewSection(w, title, time.Since(rep.Started), color)
	for _, s := range rep.Steps {
		sec.Status(s.Name, s.Status, s.Detail)
	}
	if rep.HandoffPath != "" {
		sec.Separator()
		sec.Row("handoff written to %s", rep.HandoffPath)
	}
	sec.Close()

	if rep.Verification != nil {
		VerifyReport(w, rep.Verification, 0, color)
	}
}

// VerifyReport renders every check of a verification run and its outcome.
func VerifyReport(w io.Writer, res *verify.Result, elapsed time.Duration, color bool) {
	ContextBlock(w, []KV{
		{"fork tag", res.ForkTag},
		{"source", res.SourceRef},
		{"image tag", res.ImageTag},
	})

	sec := NewSection(w, "Verify", elapsed, color)
	for _, c := range res.Checks {
		status := "success"
		if !c.Passed {
			status = "failed"
		}
		label := c.Name
		if c.Target != "" {
			label = string(c.Target) + " " + c.Name
		}
		sec.Status(label, status, c.Want)
	}
	if res.DockerSkipped {
		sec.Status("docker previews", "skipped", "--skip-docker")
	}
	sec.Separator()
	if res.Passed() {
		sec.Row("%s all %d check(s) passed", StatusIcon("success", color), len(res.Checks))
	} else {
		summary := fmt.Sprintf("%d of %d check(s) failed", len(res.Failures), len(res.Checks))
		sec.Row("%s %s", StatusIcon("failed", color), Bold(summary, color))
		for _, f := range res.Failures {
			sec.Row("  %s", f)
		}
	}
	sec.Close()
}

// ImageTags prints one tab-separated "ref tag" line per reference.
func ImageTags(w io.Writer, pairs [][2]string) {
	for _, p := range pairs {
		fmt.Fprintf(w, "%s\t%s\n", p[0], p[1])
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
