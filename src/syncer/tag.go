package syncer

import (
	"context"

	"github.com/vidaislive/forksync/src/gitver"
)

// TagOptions are the settings of a standalone fork tagging run.
type TagOptions struct {
	Tag           string // upstream tag the fork release tracks
	Selector      gitver.Selector
	ForkTag       string
	ForkTagPrefix string
	Push          bool
	DryRun        bool
}

// TagRelease tags HEAD as the fork release of an upstream tag and pushes
// the tag. Used after a handoff was resolved by hand.
func (s *Syncer) TagRelease(ctx context.Context, opts TagOptions) (*Report, error) {
	rep := newReport(opts.DryRun)

	tag, err := upstreamTag(ctx, opts.Selector, opts.Tag, s.Repo)
	if err != nil {
		rep.fail("upstream tag", err.Error())
		return rep, err
	}
	rep.UpstreamTag = tag
	rep.ok("upstream tag", tag)

	forkTag := opts.ForkTag
	if forkTag == "" {
		forkTag = gitver.ForkTag(opts.ForkTagPrefix, tag)
	}
	rep.ForkTag = forkTag
	if err := s.checkTagFree(ctx, forkTag); err != nil {
		rep.fail("fork tag", err.Error())
		return rep, err
	}
	if err := s.Repo.CreateTag(ctx, forkTag, "fork release "+tag); err != nil {
		rep.fail("fork tag", err.Error())
		return rep, err
	}
	rep.ok("fork tag", forkTag)

	if !opts.Push {
		rep.skip("push", "--no-push")
		return rep, nil
	}
	if err := s.Repo.Push(ctx, s.Origin, "refs/tags/"+forkTag); err != nil {
		rep.fail("push", err.Error())
		return rep, err
	}
	rep.ok("push", forkTag+" to "+s.Origin)
	return rep, nil
}
