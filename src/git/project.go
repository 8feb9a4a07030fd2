package git

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Project identifies the repository behind a remote.
type Project struct {
	Name string // last path component of the remote URL
	URL  string // browsable URL; SSH remotes are rewritten to https
}

// RemoteProject reads remote.<name>.url from the repository config.
func (r *Repo) RemoteProject(ctx context.Context, remote string) (*Project, error) {
	rem, err := r.repo.Remote(remote)
	if err != nil {
		return nil, fmt.Errorf("reading remote %s: %w", remote, err)
	}
	urls := rem.Config().URLs
	if len(urls) == 0 {
		return nil, fmt.Errorf("remote %s has no URL", remote)
	}
	return &Project{
		Name: repoNameFromRemote(urls[0]),
		URL:  remoteToHTTPS(urls[0]),
	}, nil
}

// splitRemote splits a remote URL into host and repository path. Local
// paths have no host.
//
//	git@github.com:org/repo.git      → github.com, org/repo
//	ssh://git@github.com/org/repo    → github.com, org/repo
//	https://gitlab.com/g/sub/repo    → gitlab.com, g/sub/repo
func splitRemote(remote string) (host, repoPath string) {
	remote = strings.TrimSuffix(strings.TrimSuffix(remote, "/"), ".git")

	if scheme, rest, ok := strings.Cut(remote, "://"); ok {
		if scheme == "file" {
			return "", rest
		}
		host, repoPath, _ = strings.Cut(rest, "/")
		if _, h, ok := strings.Cut(host, "@"); ok {
			host = h
		}
		return host, repoPath
	}

	// scp-like syntax: [user@]host:path, where host has no slash
	if h, p, ok := strings.Cut(remote, ":"); ok && !strings.Contains(h, "/") {
		if _, bare, ok := strings.Cut(h, "@"); ok {
			h = bare
		}
		return h, p
	}
	return "", remote
}

func repoNameFromRemote(remote string) string {
	_, p := splitRemote(remote)
	return path.Base(p)
}

func remoteToHTTPS(remote string) string {
	host, p := splitRemote(remote)
	if host == "" {
		return p
	}
	if strings.HasPrefix(remote, "http://") {
		return "http://" + host + "/" + p
	}
	return "https://" + host + "/" + p
}
