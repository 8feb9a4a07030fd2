package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/vidaislive/forksync/src/output"
	"github.com/vidaislive/forksync/src/syncer"
)

var (
	syTag           string
	syBranch        string
	syBase          string
	syForkTag       string
	syForkTagPrefix string
	syNoForkTag     bool
	syNoHandoff     bool
	syHandoffPath   string
	syNoVerify      bool
	syNoPush        bool
	syDryRun        bool
	syAllowDirty    bool
	syDockerDir     string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge an upstream release into a new sync branch and tag it",
	Long: `Create a sync branch from the base branch, merge the upstream release tag
into it, tag the result as a fork release and push branch and tag.

When the merge stops on conflicts nothing is committed or pushed; a handoff
note listing the unresolved files and the remaining commands is written
instead and the command exits with git's status.`,
	RunE: runSync,
}

func init() {
	f := syncCmd.Flags()
	f.StringVar(&syTag, "tag", "", "upstream tag to sync (default: newest non-beta upstream tag)")
	f.StringVar(&syBranch, "branch", "", "sync branch to create (default: from sync.branch_template)")
	f.StringVar(&syBase, "base", "", "branch to start from (default: sync.base)")
	f.StringVar(&syForkTag, "fork-tag", "", "fork tag to create (default: <prefix><tag>)")
	f.StringVar(&syForkTagPrefix, "fork-tag-prefix", "", "fork tag prefix (default: sync.fork_tag_prefix)")
	f.BoolVar(&syNoForkTag, "no-fork-tag", false, "do not create a fork tag")
	f.BoolVar(&syNoHandoff, "no-codex-handoff", false, "do not write a handoff note on merge conflicts")
	f.StringVar(&syHandoffPath, "codex-handoff-path", "", "handoff note path (default: sync.handoff.path)")
	f.BoolVar(&syNoVerify, "no-verify", false, "skip docker verification of the pushed fork tag")
	f.BoolVar(&syNoPush, "no-push", false, "do not push branch or tag")
	f.BoolVar(&syDryRun, "dry-run", false, "print mutating git commands instead of running them")
	f.BoolVar(&syAllowDirty, "allow-dirty", false, "allow uncommitted changes in the working tree")
	f.StringVar(&syDockerDir, "docker-dir", "", "docker packaging repository (default: verify.docker_dir)")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	color := output.UseColor()

	repo, err := openRepo(syDryRun)
	if err != nil {
		return err
	}
	sel, err := upstreamSelector(cfg)
	if err != nil {
		return err
	}

	prefix := stringOr(syForkTagPrefix, cfg.Sync.ForkTagPrefix)
	s := &syncer.Syncer{
		Repo:     repo,
		Origin:   cfg.Remotes.Origin,
		Upstream: cfg.Remotes.Upstream,
		Project:  projectName(ctx, repo, cfg.Remotes.Origin),
		Log:      logger.WithField("component", "sync"),
	}

	if wt, err := repo.Filesystem(); err == nil {
		s.Worktree = wt
	}

	dockerDir := stringOr(syDockerDir, cfg.Verify.DockerDir)
	if !syNoVerify {
		if err := dockerDirExists(dockerDir); err != nil {
			logger.WithError(err).Warn("skipping docker verification")
		} else {
			s.Verifier = newChecker(cfg, repo, prefix, dockerDir, false)
		}
	}

	handoffPath := cfg.Sync.Handoff.HandoffPath
	if syHandoffPath != "" {
		handoffPath = func(string) string { return syHandoffPath }
	}

	output.SectionStart(os.Stdout, "forksync_sync", "Sync")
	rep, err := s.Sync(ctx, syncer.Options{
		Tag:            syTag,
		Selector:       sel,
		Base:           stringOr(syBase, cfg.Sync.Base),
		Branch:         syBranch,
		BranchTemplate: cfg.Sync.BranchName,
		ForkTag:        syForkTag,
		ForkTagPrefix:  prefix,
		NoForkTag:      syNoForkTag,
		Handoff:        cfg.Sync.Handoff.Enabled && !syNoHandoff,
		HandoffPath:    handoffPath,
		Verify:         !syNoVerify,
		Push:           !syNoPush,
		DryRun:         syDryRun,
		AllowDirty:     syAllowDirty,
	})
	output.SyncReport(os.Stdout, "Sync", rep, color)
	output.SectionEnd(os.Stdout, "forksync_sync")
	return err
}
