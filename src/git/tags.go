package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5/plumbing"
)

// TagInfo is a tag and the time it was created.
type TagInfo struct {
	Name    string
	Created time.Time
}

// Tags returns every tag with its creator date: the tagger date of an
// annotated tag, or the committer date of the commit a lightweight tag points at.
func (r *Repo) Tags(ctx context.Context) ([]TagInfo, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []TagInfo
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		created, err := r.creatorDate(ref)
		if err != nil {
			return fmt.Errorf("reading tag %s: %w", ref.Name().Short(), err)
		}
		tags = append(tags, TagInfo{Name: ref.Name().Short(), Created: created})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *Repo) creatorDate(ref *plumbing.Reference) (time.Time, error) {
	tag, err := r.repo.TagObject(ref.Hash())
	if err == nil {
		return tag.Tagger.When, nil
	}
	if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return time.Time{}, err
	}

	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return time.Time{}, err
	}
	return commit.Committer.When, nil
}

// ListTagsByRecency returns tag names, most recently created first.
// This matches `git tag --sort=-creatordate` with a deterministic tie-break.
func (r *Repo) ListTagsByRecency(ctx context.Context) ([]string, error) {
	tags, err := r.Tags(ctx)
	if err != nil {
		return nil, err
	}
	SortByRecency(tags)

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names, nil
}

// SortByRecency orders tags newest first. Tags created at the same instant
// (several lightweight tags on one commit) are ordered by version, highest
// first, when both names parse as versions, and by name otherwise.
func SortByRecency(tags []TagInfo) {
	sort.SliceStable(tags, func(i, j int) bool {
		a, b := tags[i], tags[j]
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		va, errA := semver.NewVersion(versionPart(a.Name))
		vb, errB := semver.NewVersion(versionPart(b.Name))
		if errA == nil && errB == nil && !va.Equal(vb) {
			return va.GreaterThan(vb)
		}
		return a.Name > b.Name
	})
}

// versionPart strips everything before the first "v<digit>", so fork tags
// compare by their embedded upstream version.
func versionPart(name string) string {
	for i := 0; i+1 < len(name); i++ {
		if name[i] == 'v' && name[i+1] >= '0' && name[i+1] <= '9' {
			return name[i:]
		}
	}
	return name
}
