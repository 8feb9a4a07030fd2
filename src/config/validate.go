package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/distribution/reference"
)

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error if the config is invalid.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	// ── Remotes ───────────────────────────────────────────────────────────

	if cfg.Remotes.Origin == "" {
		errs = append(errs, "remotes.origin: must not be empty")
	}
	if cfg.Remotes.Upstream == "" {
		errs = append(errs, "remotes.upstream: must not be empty")
	}
	if cfg.Remotes.Origin != "" && cfg.Remotes.Origin == cfg.Remotes.Upstream {
		warnings = append(warnings, fmt.Sprintf("remotes: origin and upstream are both %q", cfg.Remotes.Origin))
	}

	// ── Sync ──────────────────────────────────────────────────────────────

	if cfg.Sync.Base == "" {
		errs = append(errs, "sync.base: must not be empty")
	}
	if cfg.Sync.ForkTagPrefix == "" {
		errs = append(errs, "sync.fork_tag_prefix: must not be empty")
	}
	if !strings.Contains(cfg.Sync.BranchTemplate, "{tag}") {
		warnings = append(warnings, fmt.Sprintf("sync.branch_template: %q has no {tag}; every sync uses the same branch", cfg.Sync.BranchTemplate))
	}
	if _, rerr := regexp.Compile(cfg.Sync.UpstreamTagPattern); rerr != nil {
		errs = append(errs, fmt.Sprintf("sync.upstream_tag_pattern: %v", rerr))
	}
	if cfg.Sync.Handoff.Enabled && cfg.Sync.Handoff.Path == "" {
		errs = append(errs, "sync.handoff.path: required when handoff is enabled")
	}

	// ── Verify ────────────────────────────────────────────────────────────

	if cfg.Verify.Image != "" {
		if _, rerr := reference.ParseNormalizedNamed(cfg.Verify.Image); rerr != nil {
			errs = append(errs, fmt.Sprintf("verify.image: %v", rerr))
		}
	}
	if cfg.Verify.BuildArg == "" {
		errs = append(errs, "verify.build_arg: must not be empty")
	}
	if cfg.Verify.Timeout <= 0 {
		errs = append(errs, "verify.timeout: must be positive")
	}
	if cfg.Verify.DockerDir != "" {
		if _, serr := os.Stat(cfg.Verify.DockerDir); serr != nil {
			warnings = append(warnings, fmt.Sprintf("verify.docker_dir: %s not found; docker checks will be skipped", cfg.Verify.DockerDir))
		}
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("invalid config:\n  %s", strings.Join(errs, "\n  "))
	}
	return warnings, nil
}
