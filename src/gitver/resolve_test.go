package gitver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	tags  []string
	err   error
	calls int
}

func (f *fakeLister) ListTagsByRecency(ctx context.Context) ([]string, error) {
	f.calls++
	return f.tags, f.err
}

func TestResolveForkTag(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit tag is returned unchanged", func(t *testing.T) {
		lister := &fakeLister{tags: []string{"vida-v2026.3.1"}}
		got, err := ResolveForkTag(ctx, "not-even-a-fork-tag", DefaultForkTagPrefix, lister)
		require.NoError(t, err)
		assert.Equal(t, "not-even-a-fork-tag", got)
		assert.Zero(t, lister.calls, "lister must not be consulted")
	})

	t.Run("first matching tag wins", func(t *testing.T) {
		lister := &fakeLister{tags: []string{"v2026.3.1", "vida-v2026.2.14", "vida-v2026.1.1"}}
		got, err := ResolveForkTag(ctx, "", DefaultForkTagPrefix, lister)
		require.NoError(t, err)
		assert.Equal(t, "vida-v2026.2.14", got)
	})

	t.Run("most recent of several fork tags", func(t *testing.T) {
		lister := &fakeLister{tags: []string{"vida-v2026.3.1", "vida-v2026.2.14", "v2026.2.14"}}
		got, err := ResolveForkTag(ctx, "", DefaultForkTagPrefix, lister)
		require.NoError(t, err)
		assert.Equal(t, "vida-v2026.3.1", got)
	})

	t.Run("prefix without version is skipped", func(t *testing.T) {
		lister := &fakeLister{tags: []string{"vida-test", "vida-vX", "vida-v2026.1.1"}}
		got, err := ResolveForkTag(ctx, "", DefaultForkTagPrefix, lister)
		require.NoError(t, err)
		assert.Equal(t, "vida-v2026.1.1", got)
	})

	t.Run("no candidate", func(t *testing.T) {
		lister := &fakeLister{tags: []string{"v2026.2.14", "main"}}
		_, err := ResolveForkTag(ctx, "", DefaultForkTagPrefix, lister)
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.ErrorIs(t, err, ErrNoTag)
		assert.Contains(t, err.Error(), "^vida-v[0-9]")
	})

	t.Run("lister failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := ResolveForkTag(ctx, "", DefaultForkTagPrefix, &fakeLister{err: boom})
		assert.ErrorIs(t, err, boom)
	})
}

func TestResolveUpstreamTag(t *testing.T) {
	ctx := context.Background()

	t.Run("skips betas and fork tags", func(t *testing.T) {
		lister := &fakeLister{tags: []string{"vida-v2026.3.1", "v2026.3.1-beta", "v2026.3.1-beta.2", "v2026.2.14", "v2026.2.1"}}
		got, err := ResolveUpstreamTag(ctx, "", lister)
		require.NoError(t, err)
		assert.Equal(t, "v2026.2.14", got)
	})

	t.Run("explicit beta is honoured", func(t *testing.T) {
		got, err := ResolveUpstreamTag(ctx, "v2026.3.1-beta", &fakeLister{})
		require.NoError(t, err)
		assert.Equal(t, "v2026.3.1-beta", got)
	})

	t.Run("only betas", func(t *testing.T) {
		_, err := ResolveUpstreamTag(ctx, "", &fakeLister{tags: []string{"v2026.3.1-beta"}})
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Contains(t, err.Error(), "-beta")
	})
}

func TestNewSelector(t *testing.T) {
	sel, err := NewSelector(`^release-`, []string{"-rc"})
	require.NoError(t, err)
	assert.True(t, sel.Match("release-1"))
	assert.False(t, sel.Match("release-1-rc"))
	assert.False(t, sel.Match("v1"))

	_, err = NewSelector(`(`, nil)
	assert.Error(t, err)
}
