// Package build runs dry-run previews of the docker packaging repository's
// make targets.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Target is a make target of the packaging repository.
type Target string

const (
	TargetBuild Target = "build"
	TargetPush  Target = "push"
)

// PreviewOutput is the captured plan of a dry-run invocation.
type PreviewOutput struct {
	Target   Target
	Ref      string
	Command  []string
	Output   string // stdout and stderr, interleaved
	ExitCode int
	Duration time.Duration
}

// OK reports whether the preview command exited zero.
func (p *PreviewOutput) OK() bool { return p.ExitCode == 0 }

// MakePreview runs `make -n <target> REF=<ref>` in the packaging repository.
// make -n prints the recipe without executing it.
type MakePreview struct {
	Make    string // make binary, default "make"
	Dir     string
	RefVar  string // variable receiving the ref, default "REF"
	Targets map[Target]string
	Timeout time.Duration
	Log     *logrus.Entry
}

// Command returns the argv for previewing target at ref.
func (m *MakePreview) Command(target Target, ref string) []string {
	bin := m.Make
	if bin == "" {
		bin = "make"
	}
	refVar := m.RefVar
	if refVar == "" {
		refVar = "REF"
	}
	name := string(target)
	if t, ok := m.Targets[target]; ok && t != "" {
		name = t
	}
	return []string{bin, "-n", name, fmt.Sprintf("%s=%s", refVar, ref)}
}

// Preview runs the dry-run for target. A non-zero exit is reported in the
// output, not as an error; errors mean make could not be run at all.
func (m *MakePreview) Preview(ctx context.Context, target Target, ref string) (*PreviewOutput, error) {
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	argv := m.Command(target, ref)
	if m.Log != nil {
		m.Log.WithField("dir", m.Dir).Debugf("exec: %s", strings.Join(argv, " "))
	}

	start := time.Now()
	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = m.Dir
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	out := &PreviewOutput{Target: target, Ref: ref, Command: argv}
	err := cmd.Run()
	out.Duration = time.Since(start)
	out.Output = buf.String()
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s preview timed out: %w", target, ctx.Err())
	}
	return nil, fmt.Errorf("running %s: %w", strings.Join(argv, " "), err)
}
