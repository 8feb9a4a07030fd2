package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidaislive/forksync/src/gitver"
	"github.com/vidaislive/forksync/src/output"
)

var (
	vfForkTag    string
	vfRef        string
	vfDockerDir  string
	vfSkipDocker bool
	vfPrefix     string
	vfJUnitDir   string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a fork tag is published and the docker repository plans its image",
	Long: `Check that the fork tag exists on the origin remote, then dry-run the
docker repository's build and push targets for the source ref and assert
that both plans pass the ref as a build-arg, tag the image with the derived
date tag and disable the cache; the push plan must also push.

Every failed assertion is reported in one run.`,
	RunE: runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.StringVar(&vfForkTag, "fork-tag", "", "fork tag to verify (default: newest <prefix>v* tag)")
	f.StringVar(&vfRef, "openclaw-ref", "", "source ref passed to the docker build (default: the fork tag)")
	f.StringVar(&vfDockerDir, "docker-dir", "", "docker packaging repository (default: verify.docker_dir)")
	f.BoolVar(&vfSkipDocker, "skip-docker", false, "only check the fork tag exists on the remote")
	f.StringVar(&vfPrefix, "fork-tag-prefix", "", "fork tag prefix (default: sync.fork_tag_prefix)")
	f.StringVar(&vfJUnitDir, "junit", "", "write a JUnit report to this directory")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	color := output.UseColor()
	start := time.Now()

	repo, err := openRepo(false)
	if err != nil {
		return err
	}

	prefix := stringOr(vfPrefix, cfg.Sync.ForkTagPrefix)
	forkTag, err := gitver.ResolveForkTag(ctx, vfForkTag, prefix, repo)
	if err != nil {
		return err
	}

	dockerDir := stringOr(vfDockerDir, cfg.Verify.DockerDir)
	if !vfSkipDocker {
		if err := dockerDirExists(dockerDir); err != nil {
			return err
		}
	}

	checker := newChecker(cfg, repo, prefix, dockerDir, vfSkipDocker)
	res, err := checker.Verify(ctx, forkTag, vfRef)
	if err != nil {
		return err
	}

	output.VerifyReport(os.Stdout, res, time.Since(start), color)
	if vfJUnitDir != "" {
		if err := output.WriteVerifyJUnit(vfJUnitDir, res, time.Since(start)); err != nil {
			return err
		}
	}
	return res.Err()
}
