// Package verify checks that the docker packaging repository plans the
// expected image for a fork release tag.
package verify

import (
	"context"
	"fmt"
	"regexp"

	"github.com/distribution/reference"
	"github.com/sirupsen/logrus"

	"github.com/vidaislive/forksync/src/build"
	"github.com/vidaislive/forksync/src/gitver"
)

// RemoteTags answers whether a tag is published on a remote.
type RemoteTags interface {
	RemoteTagExists(ctx context.Context, remote, name string) (bool, error)
}

// Previewer runs a side-effect free dry-run of a build target.
type Previewer interface {
	Preview(ctx context.Context, target build.Target, ref string) (*build.PreviewOutput, error)
}

// Expectations are the tokens every preview must contain.
type Expectations struct {
	BuildArg    string // build-arg receiving the source ref, e.g. OPENCLAW_GIT_REF
	Image       string // image repository, e.g. vidaislive/openclaw-docker; "" accepts any
	NoCacheFlag string
	PushFlag    string
}

// DefaultExpectations matches the openclaw-docker Makefile.
func DefaultExpectations() Expectations {
	return Expectations{
		BuildArg:    "OPENCLAW_GIT_REF",
		Image:       "vidaislive/openclaw-docker",
		NoCacheFlag: "--no-cache",
		PushFlag:    "--push",
	}
}

// Checker verifies a fork tag against the packaging repository.
type Checker struct {
	Remote    string
	Prefix    string // fork tag prefix used when deriving the image tag
	Tags      RemoteTags
	Previewer Previewer // nil skips the preview checks
	Expect    Expectations
	Log       *logrus.Entry
}

// Verify checks forkTag exists on the remote, then previews the build and
// push targets for sourceRef and asserts on both plans. Every failed
// assertion is collected into the result; only a missing tag or a preview
// that cannot run at all is returned as an error.
func (c *Checker) Verify(ctx context.Context, forkTag, sourceRef string) (*Result, error) {
	if sourceRef == "" {
		sourceRef = forkTag
	}
	res := &Result{
		ForkTag:   forkTag,
		SourceRef: sourceRef,
		ImageTag:  gitver.ImageTag(sourceRef, c.Prefix),
	}

	remote := c.Remote
	if remote == "" {
		remote = "origin"
	}
	exists, err := c.Tags.RemoteTagExists(ctx, remote, forkTag)
	if err != nil {
		return nil, fmt.Errorf("checking %s on %s: %w", forkTag, remote, err)
	}
	if !exists {
		return nil, &MissingTagError{Tag: forkTag, Remote: remote}
	}
	res.add(Check{Name: "remote tag", Want: remote + "/" + forkTag, Passed: true})

	if c.Previewer == nil {
		res.DockerSkipped = true
		return res, nil
	}

	if c.Expect.Image != "" {
		if _, err := c.imageReference(res.ImageTag); err != nil {
			res.add(Check{Name: "image reference", Want: c.Expect.Image + ":" + res.ImageTag, Detail: err.Error()})
		}
	}

	for _, target := range []build.Target{build.TargetBuild, build.TargetPush} {
		out, err := c.Previewer.Preview(ctx, target, sourceRef)
		if err != nil {
			return nil, fmt.Errorf("previewing %s: %w", target, err)
		}
		c.log().WithField("target", target).WithField("exit", out.ExitCode).Debug("preview captured")
		for _, chk := range c.assert(out, sourceRef, res.ImageTag) {
			res.add(chk)
		}
	}
	return res, nil
}

// assert evaluates every expectation against one preview without stopping
// at the first failure.
func (c *Checker) assert(out *build.PreviewOutput, ref, imageTag string) []Check {
	var checks []Check
	check := func(name, want string, re *regexp.Regexp) {
		checks = append(checks, Check{
			Target: out.Target,
			Name:   name,
			Want:   want,
			Passed: re.MatchString(out.Output),
		})
	}

	if !out.OK() {
		checks = append(checks, Check{
			Target: out.Target,
			Name:   "exit status",
			Want:   "exit status 0",
			Detail: fmt.Sprintf("exit status %d", out.ExitCode),
		})
	}

	check("build arg", fmt.Sprintf("--build-arg %s=%s", c.Expect.BuildArg, ref), buildArgRe(c.Expect.BuildArg, ref))
	check("image tag", c.tagFlagWant(imageTag), tagFlagRe(c.Expect.Image, imageTag))
	check("no-cache flag", c.Expect.NoCacheFlag, tokenRe(c.Expect.NoCacheFlag))
	if out.Target == build.TargetPush {
		check("push flag", c.Expect.PushFlag, tokenRe(c.Expect.PushFlag))
	}
	return checks
}

func (c *Checker) tagFlagWant(imageTag string) string {
	if c.Expect.Image == "" {
		return "-t <image>:" + imageTag
	}
	return "-t " + c.Expect.Image + ":" + imageTag
}

// imageReference validates that image:tag is a well-formed reference.
func (c *Checker) imageReference(imageTag string) (reference.NamedTagged, error) {
	named, err := reference.ParseNormalizedNamed(c.Expect.Image)
	if err != nil {
		return nil, fmt.Errorf("invalid image %q: %w", c.Expect.Image, err)
	}
	tagged, err := reference.WithTag(named, imageTag)
	if err != nil {
		return nil, fmt.Errorf("invalid image tag %q: %w", imageTag, err)
	}
	return tagged, nil
}

func (c *Checker) log() *logrus.Entry {
	if c.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return c.Log
}

const (
	tokenStart = `(?:^|[\s"'])`
	tokenEnd   = `(?:$|[\s"'\\;])`
)

// buildArgRe matches `--build-arg NAME=value` with optional quoting.
func buildArgRe(name, value string) *regexp.Regexp {
	return regexp.MustCompile(`--build-arg[\s=]+["']?` + regexp.QuoteMeta(name) + `=["']?` + regexp.QuoteMeta(value) + `["']?` + tokenEnd)
}

// tagFlagRe matches `-t image:tag` or `--tag=image:tag`. An empty image
// accepts any repository.
func tagFlagRe(image, tag string) *regexp.Regexp {
	repo := `[^\s"':]+(?::[0-9]+/[^\s"':]+)?`
	if image != "" {
		repo = regexp.QuoteMeta(image)
	}
	return regexp.MustCompile(tokenStart + `(?:-t|--tag)[\s=]+["']?` + repo + `:` + regexp.QuoteMeta(tag) + tokenEnd)
}

// tokenRe matches flag as a whole word.
func tokenRe(flag string) *regexp.Regexp {
	return regexp.MustCompile(tokenStart + regexp.QuoteMeta(flag) + tokenEnd)
}
