package verify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidaislive/forksync/src/build"
	"github.com/vidaislive/forksync/src/gitver"
)

type fakeRemote struct {
	tags map[string]bool
	err  error
}

func (f *fakeRemote) RemoteTagExists(ctx context.Context, remote, name string) (bool, error) {
	return f.tags[remote+"/"+name], f.err
}

type fakePreviewer struct {
	outputs map[build.Target]*build.PreviewOutput
	err     error
	calls   []build.Target
	refs    []string
}

func (f *fakePreviewer) Preview(ctx context.Context, target build.Target, ref string) (*build.PreviewOutput, error) {
	f.calls = append(f.calls, target)
	f.refs = append(f.refs, ref)
	if f.err != nil {
		return nil, f.err
	}
	out := *f.outputs[target]
	out.Target = target
	out.Ref = ref
	return &out, nil
}

const (
	buildPlan = "docker buildx build --no-cache --build-arg OPENCLAW_GIT_REF=vida-v2026.2.14 " +
		"-t vidaislive/openclaw-docker:2026-02-14 --load ."
	pushPlan = "docker buildx build --no-cache --build-arg OPENCLAW_GIT_REF=vida-v2026.2.14 " +
		"-t vidaislive/openclaw-docker:2026-02-14 --push ."
)

func previewer(buildOut, pushOut string) *fakePreviewer {
	return &fakePreviewer{outputs: map[build.Target]*build.PreviewOutput{
		build.TargetBuild: {Output: buildOut},
		build.TargetPush:  {Output: pushOut},
	}}
}

func newChecker(p Previewer) *Checker {
	return &Checker{
		Remote:    "origin",
		Prefix:    gitver.DefaultForkTagPrefix,
		Tags:      &fakeRemote{tags: map[string]bool{"origin/vida-v2026.2.14": true}},
		Previewer: p,
		Expect:    DefaultExpectations(),
	}
}

func TestVerifyPasses(t *testing.T) {
	p := previewer(buildPlan, pushPlan)
	res, err := newChecker(p).Verify(context.Background(), "vida-v2026.2.14", "")
	require.NoError(t, err)

	assert.True(t, res.Passed(), "failures: %v", res.Failures)
	assert.NoError(t, res.Err())
	assert.Equal(t, "vida-v2026.2.14", res.SourceRef)
	assert.Equal(t, "2026-02-14", res.ImageTag)
	assert.Equal(t, []build.Target{build.TargetBuild, build.TargetPush}, p.calls)
	assert.Equal(t, []string{"vida-v2026.2.14", "vida-v2026.2.14"}, p.refs)
	// remote tag, 3 build checks, 4 push checks
	assert.Len(t, res.Checks, 8)
}

func TestVerifyQuotedPlan(t *testing.T) {
	buildOut := `docker buildx build --no-cache --build-arg "OPENCLAW_GIT_REF=vida-v2026.2.14" --tag=vidaislive/openclaw-docker:2026-02-14 .`
	pushOut := `docker buildx build "--no-cache" --build-arg OPENCLAW_GIT_REF='vida-v2026.2.14' -t "vidaislive/openclaw-docker:2026-02-14" \` +
		"\n\t--push ."
	res, err := newChecker(previewer(buildOut, pushOut)).Verify(context.Background(), "vida-v2026.2.14", "")
	require.NoError(t, err)
	assert.True(t, res.Passed(), "failures: %v", res.Failures)
}

func TestVerifyNamesEachMissingSubstring(t *testing.T) {
	tests := []struct {
		name     string
		buildOut string
		pushOut  string
		want     []string
	}{
		{
			name:     "no-cache missing from build",
			buildOut: strings.Replace(buildPlan, "--no-cache ", "", 1),
			pushOut:  pushPlan,
			want:     []string{`build preview: missing "--no-cache"`},
		},
		{
			name:     "push flag missing",
			buildOut: buildPlan,
			pushOut:  strings.Replace(pushPlan, "--push", "--load", 1),
			want:     []string{`push preview: missing "--push"`},
		},
		{
			name:     "wrong image tag",
			buildOut: strings.ReplaceAll(buildPlan, "2026-02-14", "latest"),
			pushOut:  pushPlan,
			want:     []string{`build preview: missing "-t vidaislive/openclaw-docker:2026-02-14"`},
		},
		{
			name:     "wrong build arg",
			buildOut: buildPlan,
			pushOut:  strings.Replace(pushPlan, "OPENCLAW_GIT_REF=vida-v2026.2.14", "OPENCLAW_GIT_REF=main", 1),
			want:     []string{`push preview: missing "--build-arg OPENCLAW_GIT_REF=vida-v2026.2.14"`},
		},
		{
			name:     "flag prefix is not the flag",
			buildOut: strings.Replace(buildPlan, "--no-cache", "--no-cache-filter=x", 1),
			pushOut:  strings.Replace(pushPlan, "--push", "--pushx", 1),
			want: []string{
				`build preview: missing "--no-cache"`,
				`push preview: missing "--push"`,
			},
		},
		{
			name:     "everything missing is reported in one run",
			buildOut: "docker build .",
			pushOut:  "docker push",
			want: []string{
				`build preview: missing "--build-arg OPENCLAW_GIT_REF=vida-v2026.2.14"`,
				`build preview: missing "-t vidaislive/openclaw-docker:2026-02-14"`,
				`build preview: missing "--no-cache"`,
				`push preview: missing "--build-arg OPENCLAW_GIT_REF=vida-v2026.2.14"`,
				`push preview: missing "-t vidaislive/openclaw-docker:2026-02-14"`,
				`push preview: missing "--no-cache"`,
				`push preview: missing "--push"`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newChecker(previewer(tt.buildOut, tt.pushOut)).Verify(context.Background(), "vida-v2026.2.14", "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Failures)

			var mismatch *AssertionMismatchError
			require.ErrorAs(t, res.Err(), &mismatch)
			assert.ErrorIs(t, res.Err(), ErrAssertionMismatch)
			assert.Equal(t, tt.want, mismatch.Failures())
			assert.Equal(t, "vida-v2026.2.14", mismatch.ForkTag)
		})
	}
}

func TestVerifyMissingTagSkipsPreviews(t *testing.T) {
	p := previewer(buildPlan, pushPlan)
	c := newChecker(p)
	c.Tags = &fakeRemote{}

	res, err := c.Verify(context.Background(), "vida-v2026.2.14", "")
	assert.Nil(t, res)
	var missing *MissingTagError
	require.ErrorAs(t, err, &missing)
	assert.ErrorIs(t, err, ErrMissingTag)
	assert.Equal(t, "origin", missing.Remote)
	assert.Empty(t, p.calls)
}

func TestVerifyRemoteError(t *testing.T) {
	p := previewer(buildPlan, pushPlan)
	c := newChecker(p)
	c.Tags = &fakeRemote{err: errors.New("network down")}

	_, err := c.Verify(context.Background(), "vida-v2026.2.14", "")
	assert.ErrorContains(t, err, "network down")
	assert.NotErrorIs(t, err, ErrMissingTag)
	assert.Empty(t, p.calls)
}

func TestVerifySourceRefOverride(t *testing.T) {
	buildOut := "docker buildx build --no-cache --build-arg OPENCLAW_GIT_REF=feature/foo -t vidaislive/openclaw-docker:feature-foo ."
	pushOut := buildOut + " --push"
	p := previewer(buildOut, pushOut)

	res, err := newChecker(p).Verify(context.Background(), "vida-v2026.2.14", "feature/foo")
	require.NoError(t, err)
	assert.True(t, res.Passed(), "failures: %v", res.Failures)
	assert.Equal(t, "feature-foo", res.ImageTag)
	assert.Equal(t, []string{"feature/foo", "feature/foo"}, p.refs)
}

func TestVerifySkipDocker(t *testing.T) {
	res, err := newChecker(nil).Verify(context.Background(), "vida-v2026.2.14", "")
	require.NoError(t, err)
	assert.True(t, res.DockerSkipped)
	assert.True(t, res.Passed())
	require.Len(t, res.Checks, 1)
	assert.Equal(t, "remote tag", res.Checks[0].Name)
}

func TestVerifyNonZeroPreview(t *testing.T) {
	p := previewer(buildPlan, pushPlan)
	p.outputs[build.TargetPush].ExitCode = 2

	res, err := newChecker(p).Verify(context.Background(), "vida-v2026.2.14", "")
	require.NoError(t, err)
	assert.Equal(t, []string{`push preview: exit status: want "exit status 0", got exit status 2`}, res.Failures)
}

func TestVerifyPreviewError(t *testing.T) {
	p := previewer(buildPlan, pushPlan)
	p.err = errors.New("make: not found")

	_, err := newChecker(p).Verify(context.Background(), "vida-v2026.2.14", "")
	assert.ErrorContains(t, err, "make: not found")
}

func TestVerifyInvalidImageTag(t *testing.T) {
	ref := "feature foo"
	out := "docker buildx build --no-cache --build-arg OPENCLAW_GIT_REF=feature foo -t vidaislive/openclaw-docker:feature foo --push"
	c := newChecker(previewer(out, out))
	c.Tags = &fakeRemote{tags: map[string]bool{"origin/" + ref: true}}

	res, err := c.Verify(context.Background(), ref, "")
	require.NoError(t, err)
	require.NotEmpty(t, res.Failures)
	assert.Contains(t, res.Failures[0], "verification: image reference")
}

func TestVerifyAnyImage(t *testing.T) {
	buildOut := "docker build --no-cache --build-arg OPENCLAW_GIT_REF=vida-v2026.2.14 -t registry.example.com:5000/team/openclaw:2026-02-14 ."
	c := newChecker(previewer(buildOut, buildOut+" --push"))
	c.Expect.Image = ""

	res, err := c.Verify(context.Background(), "vida-v2026.2.14", "")
	require.NoError(t, err)
	assert.True(t, res.Passed(), "failures: %v", res.Failures)
}

func TestAssertionMismatchMessage(t *testing.T) {
	err := newAssertionMismatch("vida-v2026.2.14", []string{"a", "b"})
	assert.Equal(t, "verification of vida-v2026.2.14 failed: 2 assertion(s) failed:\n  - a\n  - b", err.Error())
}
