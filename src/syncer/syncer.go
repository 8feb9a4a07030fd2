// Package syncer merges upstream releases into the fork, tags fork releases
// and hands off merges that need manual conflict resolution.
package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"

	"github.com/vidaislive/forksync/src/git"
	"github.com/vidaislive/forksync/src/gitver"
	"github.com/vidaislive/forksync/src/handoff"
	"github.com/vidaislive/forksync/src/verify"
)

// Repository is the git surface a sync needs. *git.Repo implements it.
type Repository interface {
	IsClean(ctx context.Context) (bool, error)
	ListTagsByRecency(ctx context.Context) ([]string, error)
	TagExists(ctx context.Context, name string) (bool, error)
	LocalBranchExists(ctx context.Context, name string) (bool, error)
	RemoteBranchExists(ctx context.Context, remote, name string) (bool, error)
	RefExists(ctx context.Context, rev string) (bool, error)
	Fetch(ctx context.Context, remote string) error
	CreateBranch(ctx context.Context, name, base string) error
	Merge(ctx context.Context, ref, message string) error
	CreateTag(ctx context.Context, name, message string) error
	Push(ctx context.Context, remote string, refs ...string) error
	Commits(ctx context.Context, from, to string) ([]git.Commit, error)
}

// Verifier checks a pushed fork tag. *verify.Checker implements it.
type Verifier interface {
	Verify(ctx context.Context, forkTag, sourceRef string) (*verify.Result, error)
}

// Syncer runs syncs against one repository.
type Syncer struct {
	Repo     Repository
	Verifier Verifier // nil disables post-push verification
	Origin   string
	Upstream string
	Project  string // shown in handoff notes
	// Worktree is read to count conflict hunks for the handoff note; optional.
	Worktree billy.Filesystem
	Log      *logrus.Entry
}

// Options are the per-run settings of a sync.
type Options struct {
	Tag            string // upstream tag; resolved from Selector when empty
	Selector       gitver.Selector
	Base           string
	Branch         string // sync branch; BranchTemplate applied when empty
	BranchTemplate func(tag string) string
	ForkTag        string // fork tag; ForkTagPrefix+Tag when empty
	ForkTagPrefix  string
	NoForkTag      bool
	Handoff        bool
	HandoffPath    func(branch string) string
	Verify         bool
	Push           bool
	DryRun         bool
	AllowDirty     bool
}

// Sync creates a sync branch from the base, merges the upstream tag into it,
// tags the result as a fork release, pushes and verifies it. It stops at
// the first failure; a conflicted merge is left in the worktree and
// described in a handoff note.
func (s *Syncer) Sync(ctx context.Context, opts Options) (*Report, error) {
	rep := newReport(opts.DryRun)
	log := s.log()

	if opts.AllowDirty {
		rep.skip("clean worktree", "--allow-dirty")
	} else {
		clean, err := s.Repo.IsClean(ctx)
		if err != nil {
			return rep, err
		}
		if !clean {
			rep.fail("clean worktree", "uncommitted changes")
			return rep, &PreconditionError{Check: "clean worktree", Reason: "working tree has uncommitted changes (use --allow-dirty to override)"}
		}
		rep.ok("clean worktree", "")
	}

	for _, remote := range []string{s.Upstream, s.Origin} {
		if err := s.Repo.Fetch(ctx, remote); err != nil {
			rep.fail("fetch "+remote, err.Error())
			return rep, err
		}
		rep.ok("fetch "+remote, "")
	}

	tag, err := upstreamTag(ctx, opts.Selector, opts.Tag, s.Repo)
	if err != nil {
		rep.fail("upstream tag", err.Error())
		return rep, err
	}
	rep.UpstreamTag = tag
	rep.ok("upstream tag", tag)
	log = log.WithField("tag", tag)

	base, err := s.resolveBase(ctx, opts.Base)
	if err != nil {
		rep.fail("base", err.Error())
		return rep, err
	}
	rep.Base = base
	rep.ok("base", base)

	branch := opts.Branch
	if branch == "" && opts.BranchTemplate != nil {
		branch = opts.BranchTemplate(tag)
	}
	if err := s.checkBranchFree(ctx, branch); err != nil {
		rep.fail("branch", err.Error())
		return rep, err
	}
	rep.Branch = branch

	forkTag := ""
	if !opts.NoForkTag {
		forkTag = opts.ForkTag
		if forkTag == "" {
			forkTag = gitver.ForkTag(opts.ForkTagPrefix, tag)
		}
		if err := s.checkTagFree(ctx, forkTag); err != nil {
			rep.fail("fork tag", err.Error())
			return rep, err
		}
	}
	rep.ForkTag = forkTag

	if err := s.Repo.CreateBranch(ctx, branch, base); err != nil {
		rep.fail("branch", err.Error())
		return rep, err
	}
	rep.ok("branch", branch+" from "+base)

	log.WithField("branch", branch).Info("merging upstream tag")
	if err := s.Repo.Merge(ctx, tag, fmt.Sprintf("Merge upstream %s into %s", tag, branch)); err != nil {
		rep.fail("merge", err.Error())
		var conflict *git.MergeConflictError
		if errors.As(err, &conflict) {
			if conflict.Branch == "" {
				conflict.Branch = branch
			}
			s.writeHandoff(ctx, rep, opts, conflict, base)
		}
		return rep, err
	}
	rep.ok("merge", tag+" into "+branch)

	if forkTag == "" {
		rep.skip("fork tag", "--no-fork-tag")
	} else {
		if err := s.Repo.CreateTag(ctx, forkTag, "fork release "+tag); err != nil {
			rep.fail("fork tag", err.Error())
			return rep, err
		}
		rep.ok("fork tag", forkTag)
	}

	if !opts.Push {
		rep.skip("push", "--no-push")
		rep.skip("verify", "nothing pushed")
		return rep, nil
	}
	refs := []string{branch}
	if forkTag != "" {
		refs = append(refs, "refs/tags/"+forkTag)
	}
	for _, ref := range refs {
		if err := s.Repo.Push(ctx, s.Origin, ref); err != nil {
			rep.fail("push", err.Error())
			return rep, err
		}
	}
	rep.ok("push", fmt.Sprintf("%d ref(s) to %s", len(refs), s.Origin))

	return rep, s.verify(ctx, rep, opts, forkTag)
}

func (s *Syncer) verify(ctx context.Context, rep *Report, opts Options, forkTag string) error {
	switch {
	case !opts.Verify:
		rep.skip("verify", "--no-verify")
		return nil
	case forkTag == "":
		rep.skip("verify", "no fork tag")
		return nil
	case opts.DryRun:
		rep.skip("verify", "dry run")
		return nil
	case s.Verifier == nil:
		rep.skip("verify", "docker repository not available")
		return nil
	}

	res, err := s.Verifier.Verify(ctx, forkTag, forkTag)
	if err != nil {
		rep.fail("verify", err.Error())
		return err
	}
	rep.Verification = res
	if err := res.Err(); err != nil {
		rep.fail("verify", fmt.Sprintf("%d assertion(s) failed", len(res.Failures)))
		return err
	}
	rep.ok("verify", "image tag "+res.ImageTag)
	return nil
}

// upstreamTag resolves the tag to sync, falling back to the default
// upstream selector when none was configured.
func upstreamTag(ctx context.Context, sel gitver.Selector, explicit string, lister gitver.TagLister) (string, error) {
	if sel.Pattern == nil {
		sel = gitver.UpstreamSelector()
	}
	return sel.Resolve(ctx, explicit, lister)
}

// resolveBase prefers the remote-tracking branch over a local one.
func (s *Syncer) resolveBase(ctx context.Context, base string) (string, error) {
	candidates := []string{s.Origin + "/" + base, base}
	for _, c := range candidates {
		ok, err := s.Repo.RefExists(ctx, c)
		if err != nil {
			return "", err
		}
		if ok {
			return c, nil
		}
	}
	return "", &PreconditionError{Check: "base ref", Reason: fmt.Sprintf("neither %s nor %s exists", candidates[0], candidates[1])}
}

func (s *Syncer) checkBranchFree(ctx context.Context, branch string) error {
	if branch == "" {
		return &PreconditionError{Check: "branch", Reason: "no branch name"}
	}
	local, err := s.Repo.LocalBranchExists(ctx, branch)
	if err != nil {
		return err
	}
	if local {
		return &PreconditionError{Check: "branch", Reason: fmt.Sprintf("branch %s already exists", branch)}
	}
	remote, err := s.Repo.RemoteBranchExists(ctx, s.Origin, branch)
	if err != nil {
		return err
	}
	if remote {
		return &PreconditionError{Check: "branch", Reason: fmt.Sprintf("branch %s already exists on %s", branch, s.Origin)}
	}
	return nil
}

func (s *Syncer) checkTagFree(ctx context.Context, tag string) error {
	exists, err := s.Repo.TagExists(ctx, tag)
	if err != nil {
		return err
	}
	if exists {
		return &PreconditionError{Check: "fork tag", Reason: fmt.Sprintf("tag %s already exists", tag)}
	}
	return nil
}

// writeHandoff records the conflict for manual resolution. Failing to write
// the note is logged; the merge conflict stays the error the caller sees.
func (s *Syncer) writeHandoff(ctx context.Context, rep *Report, opts Options, conflict *git.MergeConflictError, base string) {
	if !opts.Handoff || opts.HandoffPath == nil {
		rep.skip("handoff", "disabled")
		return
	}
	path := opts.HandoffPath(conflict.Branch)

	commits, err := s.Repo.Commits(ctx, base, conflict.Ref)
	if err != nil {
		s.log().WithError(err).Warn("could not list incoming commits for handoff")
	}

	var hunks map[string]int
	if s.Worktree != nil {
		hunks, err = handoff.CountHunks(s.Worktree, conflict.Files)
		if err != nil {
			s.log().WithError(err).Warn("could not count conflict hunks for handoff")
		}
	}

	err = handoff.Write(path, handoff.Input{
		Project:   s.Project,
		Branch:    conflict.Branch,
		Base:      base,
		SourceRef: conflict.Ref,
		ForkTag:   rep.ForkTag,
		Origin:    s.Origin,
		Files:     conflict.Files,
		Hunks:     hunks,
		Commits:   commits,
	})
	if err != nil {
		s.log().WithError(err).Error("writing handoff")
		rep.fail("handoff", err.Error())
		return
	}
	rep.HandoffPath = path
	rep.ok("handoff", path)
}

func (s *Syncer) log() *logrus.Entry {
	if s.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return s.Log
}
