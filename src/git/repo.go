// Package git wraps the repository operations used by fork syncing.
// Reads go through go-git; anything that mutates the repository or talks to
// a remote shells out to the git binary so the user's credentials, hooks and
// merge machinery apply.
package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repo is a working copy on disk.
type Repo struct {
	repo   *gogit.Repository
	runner *Runner
}

// Open opens the repository containing dir.
func Open(dir string, runner *Runner) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	return New(repo, runner), nil
}

// New wraps an already opened go-git repository.
func New(repo *gogit.Repository, runner *Runner) *Repo {
	return &Repo{repo: repo, runner: runner}
}

// IsClean reports whether the worktree has no staged or unstaged changes.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("opening worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("reading worktree status: %w", err)
	}
	return status.IsClean(), nil
}

// Filesystem returns the worktree rooted at the top of the repository.
func (r *Repo) Filesystem() (billy.Filesystem, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	return wt.Filesystem, nil
}

// CurrentBranch returns the short name of the checked out branch.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", head.Hash().String()[:7])
	}
	return head.Name().Short(), nil
}

// TagExists reports whether refs/tags/<name> exists locally.
func (r *Repo) TagExists(ctx context.Context, name string) (bool, error) {
	return r.hasReference(plumbing.NewTagReferenceName(name))
}

// LocalBranchExists reports whether refs/heads/<name> exists.
func (r *Repo) LocalBranchExists(ctx context.Context, name string) (bool, error) {
	return r.hasReference(plumbing.NewBranchReferenceName(name))
}

// RemoteBranchExists reports whether refs/remotes/<remote>/<name> exists,
// as of the last fetch.
func (r *Repo) RemoteBranchExists(ctx context.Context, remote, name string) (bool, error) {
	return r.hasReference(plumbing.NewRemoteReferenceName(remote, name))
}

// RefExists reports whether rev resolves to a commit. go-git reports
// unknown revisions with assorted errors; none of them mean the ref exists.
func (r *Repo) RefExists(ctx context.Context, rev string) (bool, error) {
	_, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	return err == nil, nil
}

func (r *Repo) hasReference(name plumbing.ReferenceName) (bool, error) {
	_, err := r.repo.Reference(name, false)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("reading %s: %w", name, err)
}

// RemoteTagExists asks the remote whether it has refs/tags/<name>.
func (r *Repo) RemoteTagExists(ctx context.Context, remote, name string) (bool, error) {
	_, err := r.runner.Output(ctx, "ls-remote", "--exit-code", "--tags", remote, "refs/tags/"+name)
	if err == nil {
		return true, nil
	}
	var cmdErr *CommandError
	// ls-remote --exit-code exits 2 when no matching refs were found.
	if errors.As(err, &cmdErr) && cmdErr.Status == 2 {
		return false, nil
	}
	return false, fmt.Errorf("listing tags on %s: %w", remote, err)
}

// Fetch updates remote-tracking branches and tags from remote.
func (r *Repo) Fetch(ctx context.Context, remote string) error {
	if _, err := r.runner.Run(ctx, "fetch", "--tags", "--prune", remote); err != nil {
		return fmt.Errorf("fetching %s: %w", remote, err)
	}
	return nil
}

// CreateBranch creates and checks out name starting at base.
func (r *Repo) CreateBranch(ctx context.Context, name, base string) error {
	if _, err := r.runner.Run(ctx, "checkout", "-b", name, base); err != nil {
		return fmt.Errorf("creating branch %s from %s: %w", name, base, err)
	}
	return nil
}

// Merge merges ref into the current branch with a merge commit. A failed
// merge is left in place for manual resolution and reported as a
// *MergeConflictError.
func (r *Repo) Merge(ctx context.Context, ref, message string) error {
	args := []string{"merge", "--no-ff", "--no-edit"}
	if message != "" {
		args = append(args, "-m", message)
	}
	args = append(args, ref)

	_, err := r.runner.Run(ctx, args...)
	if err == nil {
		return nil
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return fmt.Errorf("merging %s: %w", ref, err)
	}

	conflict := &MergeConflictError{Ref: ref, Status: cmdErr.Status}
	if branch, berr := r.CurrentBranch(ctx); berr == nil {
		conflict.Branch = branch
	}
	files, ferr := r.ConflictedFiles(ctx)
	if ferr == nil {
		conflict.Files = files
	}
	return conflict
}

// ConflictedFiles lists paths with unresolved merge conflicts.
func (r *Repo) ConflictedFiles(ctx context.Context) ([]string, error) {
	res, err := r.runner.Output(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, fmt.Errorf("listing conflicted files: %w", err)
	}
	return splitLines(res.Stdout), nil
}

// CreateTag creates an annotated tag at HEAD.
func (r *Repo) CreateTag(ctx context.Context, name, message string) error {
	if message == "" {
		message = name
	}
	if _, err := r.runner.Run(ctx, "tag", "-a", name, "-m", message); err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}
	return nil
}

// Push pushes refs to remote.
func (r *Repo) Push(ctx context.Context, remote string, refs ...string) error {
	args := append([]string{"push", remote}, refs...)
	if _, err := r.runner.Run(ctx, args...); err != nil {
		return fmt.Errorf("pushing %s to %s: %w", strings.Join(refs, " "), remote, err)
	}
	return nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
