package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Commit is a parsed commit from a log range.
type Commit struct {
	Hash     string
	Type     string // conventional commit type: feat, fix, chore, ... or ""
	Scope    string
	Summary  string
	Body     string
	Breaking bool
}

var conventionalRe = regexp.MustCompile(`^(\w+)(?:\(([^)]+)\))?(!)?\s*:\s*(.+)`)

// Commits returns the commits reachable from to but not from from, newest first.
// An empty from lists the whole history of to.
func (r *Repo) Commits(ctx context.Context, from, to string) ([]Commit, error) {
	rangeSpec := to
	if from != "" {
		rangeSpec = from + ".." + to
	}

	// Format: hash<US>subject<US>body<RS>
	res, err := r.runner.Output(ctx, "log", rangeSpec, "--format=%H\x1f%s\x1f%b\x1e")
	if err != nil {
		return nil, fmt.Errorf("git log %s: %w", rangeSpec, err)
	}
	return ParseLog(res.Stdout), nil
}

// ParseLog parses `git log --format=%H%x1f%s%x1f%b%x1e` output.
func ParseLog(out string) []Commit {
	var commits []Commit
	for _, entry := range strings.Split(out, "\x1e") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		fields := strings.SplitN(entry, "\x1f", 3)
		if len(fields) < 2 {
			continue
		}

		hash := fields[0]
		if len(hash) > 7 {
			hash = hash[:7]
		}
		c := Commit{Hash: hash, Summary: fields[1]}
		if len(fields) > 2 {
			c.Body = strings.TrimSpace(fields[2])
		}

		if m := conventionalRe.FindStringSubmatch(c.Summary); m != nil {
			c.Type = strings.ToLower(m[1])
			c.Scope = m[2]
			c.Breaking = m[3] == "!"
			c.Summary = m[4]
		}
		if strings.Contains(strings.ToUpper(c.Body), "BREAKING CHANGE") {
			c.Breaking = true
		}

		commits = append(commits, c)
	}
	return commits
}
