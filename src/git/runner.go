package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Result holds the captured output of a git invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes the git binary in a working directory.
// Mutating commands go through Run, which honours DryRun; read-only
// commands go through Output and always execute.
type Runner struct {
	Dir    string
	DryRun bool
	Log    *logrus.Entry

	// Stdout receives a copy of Run output so long merges and pushes show progress.
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a Runner for dir.
func NewRunner(dir string, dryRun bool, log *logrus.Entry) *Runner {
	return &Runner{Dir: dir, DryRun: dryRun, Log: log}
}

// Run executes a mutating git command. In dry-run mode the command is
// logged and reported as successful without executing.
func (r *Runner) Run(ctx context.Context, args ...string) (*Result, error) {
	if r.DryRun {
		r.log().WithField("dir", r.Dir).Infof("would run: git %s", strings.Join(args, " "))
		return &Result{}, nil
	}
	return r.exec(ctx, true, args...)
}

// Output executes a read-only git command and returns its result.
func (r *Runner) Output(ctx context.Context, args ...string) (*Result, error) {
	return r.exec(ctx, false, args...)
}

func (r *Runner) exec(ctx context.Context, tee bool, args ...string) (*Result, error) {
	r.log().WithField("dir", r.Dir).Debugf("exec: git %s", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if tee && r.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.Stdout)
	}
	if tee && r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	}

	err := cmd.Run()
	res := &Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &CommandError{Args: args, Status: res.ExitCode, Stderr: res.Stderr}
	}
	return res, fmt.Errorf("running git %s: %w", strings.Join(args, " "), err)
}

func (r *Runner) log() *logrus.Entry {
	if r.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return r.Log
}
