package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vidaislive/forksync/src/build"
	"github.com/vidaislive/forksync/src/config"
	"github.com/vidaislive/forksync/src/git"
	"github.com/vidaislive/forksync/src/gitver"
	"github.com/vidaislive/forksync/src/verify"
)

// openRepo opens the fork repository with a runner echoing git output.
func openRepo(dryRun bool) (*git.Repo, error) {
	runner := git.NewRunner(repoDir, dryRun, logger)
	runner.Stdout = os.Stderr
	runner.Stderr = os.Stderr
	return git.Open(repoDir, runner)
}

func upstreamSelector(c *config.Config) (gitver.Selector, error) {
	return gitver.NewSelector(c.Sync.UpstreamTagPattern, c.Sync.ExcludeSubstrings)
}

// stringOr returns flag when set, otherwise the config value.
func stringOr(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

// newChecker builds a verifier for dockerDir. A nil previewer (skipDocker)
// limits verification to the remote tag precondition.
func newChecker(c *config.Config, tags verify.RemoteTags, prefix, dockerDir string, skipDocker bool) *verify.Checker {
	chk := &verify.Checker{
		Remote: c.Remotes.Origin,
		Prefix: prefix,
		Tags:   tags,
		Expect: verify.Expectations{
			BuildArg:    c.Verify.BuildArg,
			Image:       c.Verify.Image,
			NoCacheFlag: c.Verify.NoCacheFlag,
			PushFlag:    c.Verify.PushFlag,
		},
		Log: logger.WithField("component", "verify"),
	}
	if !skipDocker {
		chk.Previewer = &build.MakePreview{
			Make:   c.Verify.Make,
			Dir:    dockerDir,
			RefVar: c.Verify.RefVar,
			Targets: map[build.Target]string{
				build.TargetBuild: c.Verify.BuildTarget,
				build.TargetPush:  c.Verify.PushTarget,
			},
			Timeout: time.Duration(c.Verify.Timeout),
			Log:     logger.WithField("component", "preview"),
		}
	}
	return chk
}

// dockerDirExists reports whether the packaging repository is checked out.
func dockerDirExists(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("docker repository %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("docker repository %s is not a directory", dir)
	}
	return nil
}

// projectName is best effort; a fork without an origin URL still syncs.
func projectName(ctx context.Context, repo *git.Repo, remote string) string {
	p, err := repo.RemoteProject(ctx, remote)
	if err != nil {
		logger.WithError(err).Debug("no project name")
		return ""
	}
	return p.Name
}
