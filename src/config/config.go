package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// defaultConfigFiles are tried in order when no path is given.
var defaultConfigFiles = []string{".forksync.yml", ".forksync.yaml", ".forksync.toml"}

// Config is the top-level forksync configuration.
type Config struct {
	Remotes RemotesConfig `yaml:"remotes" toml:"remotes"`
	Sync    SyncConfig    `yaml:"sync" toml:"sync"`
	Verify  VerifyConfig  `yaml:"verify" toml:"verify"`

	// Path is the file the config was read from, "" for defaults.
	Path string `yaml:"-" toml:"-"`
}

// RemotesConfig names the git remotes of the fork and the upstream project.
type RemotesConfig struct {
	Origin   string `yaml:"origin" toml:"origin"`
	Upstream string `yaml:"upstream" toml:"upstream"`
}

// SyncConfig controls how upstream releases are merged into the fork.
type SyncConfig struct {
	Base               string        `yaml:"base" toml:"base"`
	BranchTemplate     string        `yaml:"branch_template" toml:"branch_template"` // {tag} is replaced
	ForkTagPrefix      string        `yaml:"fork_tag_prefix" toml:"fork_tag_prefix"`
	UpstreamTagPattern string        `yaml:"upstream_tag_pattern" toml:"upstream_tag_pattern"`
	ExcludeSubstrings  []string      `yaml:"exclude_substrings" toml:"exclude_substrings"`
	Handoff            HandoffConfig `yaml:"handoff" toml:"handoff"`
}

// HandoffConfig controls the conflict handoff artifact.
type HandoffConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"` // {branch} is replaced
}

// VerifyConfig describes the docker packaging repository and what its
// make previews must contain.
type VerifyConfig struct {
	DockerDir   string   `yaml:"docker_dir" toml:"docker_dir"`
	Image       string   `yaml:"image" toml:"image"`
	BuildArg    string   `yaml:"build_arg" toml:"build_arg"`
	Make        string   `yaml:"make" toml:"make"`
	RefVar      string   `yaml:"ref_var" toml:"ref_var"`
	BuildTarget string   `yaml:"build_target" toml:"build_target"`
	PushTarget  string   `yaml:"push_target" toml:"push_target"`
	NoCacheFlag string   `yaml:"no_cache_flag" toml:"no_cache_flag"`
	PushFlag    string   `yaml:"push_flag" toml:"push_flag"`
	Timeout     Duration `yaml:"timeout" toml:"timeout"`
}

// Duration is a time.Duration written as "30s" in config files.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Load reads configuration from a YAML or TOML file, chosen by extension.
// If path is empty, the default files are tried in order.
// Returns defaults if no file exists.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}
	for _, p := range defaultConfigFiles {
		cfg, err := loadFile(p)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return Defaults(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Remotes: RemotesConfig{
			Origin:   "origin",
			Upstream: "upstream",
		},
		Sync: SyncConfig{
			Base:               "main",
			BranchTemplate:     "sync/{tag}",
			ForkTagPrefix:      "vida-",
			UpstreamTagPattern: "^v[0-9]",
			ExcludeSubstrings:  []string{"-beta"},
			Handoff: HandoffConfig{
				Enabled: true,
				Path:    ".codex/handoff/{branch}.md",
			},
		},
		Verify: VerifyConfig{
			DockerDir:   "../openclaw-docker",
			Image:       "vidaislive/openclaw-docker",
			BuildArg:    "OPENCLAW_GIT_REF",
			Make:        "make",
			RefVar:      "REF",
			BuildTarget: "build",
			PushTarget:  "push",
			NoCacheFlag: "--no-cache",
			PushFlag:    "--push",
			Timeout:     Duration(30 * time.Second),
		},
	}
}

// BranchName expands the branch template for an upstream tag.
func (s SyncConfig) BranchName(tag string) string {
	return strings.ReplaceAll(s.BranchTemplate, "{tag}", tag)
}

// HandoffPath expands the handoff path template for a branch. Path
// separators in the branch name are flattened so each branch gets one file.
func (h HandoffConfig) HandoffPath(branch string) string {
	return strings.ReplaceAll(h.Path, "{branch}", strings.ReplaceAll(branch, "/", "-"))
}
