package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/vidaislive/forksync/src/output"
	"github.com/vidaislive/forksync/src/syncer"
)

var (
	tgTag           string
	tgForkTag       string
	tgForkTagPrefix string
	tgNoPush        bool
	tgDryRun        bool
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Tag HEAD as the fork release of an upstream tag",
	Long: `Create an annotated fork tag at HEAD and push it. Use this after finishing
a sync by hand from a handoff note.`,
	RunE: runTag,
}

func init() {
	f := tagCmd.Flags()
	f.StringVar(&tgTag, "tag", "", "upstream tag the release tracks (default: newest non-beta upstream tag)")
	f.StringVar(&tgForkTag, "fork-tag", "", "fork tag to create (default: <prefix><tag>)")
	f.StringVar(&tgForkTagPrefix, "fork-tag-prefix", "", "fork tag prefix (default: sync.fork_tag_prefix)")
	f.BoolVar(&tgNoPush, "no-push", false, "do not push the tag")
	f.BoolVar(&tgDryRun, "dry-run", false, "print mutating git commands instead of running them")

	rootCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	repo, err := openRepo(tgDryRun)
	if err != nil {
		return err
	}
	sel, err := upstreamSelector(cfg)
	if err != nil {
		return err
	}

	s := &syncer.Syncer{
		Repo:     repo,
		Origin:   cfg.Remotes.Origin,
		Upstream: cfg.Remotes.Upstream,
		Log:      logger.WithField("component", "tag"),
	}
	rep, err := s.TagRelease(ctx, syncer.TagOptions{
		Tag:           tgTag,
		Selector:      sel,
		ForkTag:       tgForkTag,
		ForkTagPrefix: stringOr(tgForkTagPrefix, cfg.Sync.ForkTagPrefix),
		Push:          !tgNoPush,
		DryRun:        tgDryRun,
	})
	output.SyncReport(os.Stdout, "Tag", rep, output.UseColor())
	return err
}
