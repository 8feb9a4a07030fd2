package handoff

import (
	"sort"

	"github.com/vidaislive/forksync/src/git"
)

// Group is a set of incoming commits sharing a conventional commit type.
type Group struct {
	Title   string
	Type    string
	Commits []git.Commit
}

// groupOrder is the display order; unknown types land in "Other Changes".
var groupOrder = []struct {
	typ   string
	title string
}{
	{"BREAKING", "Breaking Changes"},
	{"feat", "Features"},
	{"fix", "Bug Fixes"},
	{"perf", "Performance"},
	{"security", "Security"},
	{"refactor", "Refactoring"},
	{"docs", "Documentation"},
	{"test", "Tests"},
	{"ci", "CI/CD"},
	{"build", "Build"},
	{"chore", "Maintenance"},
}

// GroupCommits buckets commits by type. Breaking changes get their own group.
func GroupCommits(commits []git.Commit) []Group {
	buckets := make(map[string][]git.Commit)
	for _, c := range commits {
		key := c.Type
		if c.Breaking {
			key = "BREAKING"
		}
		if key == "" {
			key = "other"
		}
		buckets[key] = append(buckets[key], c)
	}

	var groups []Group
	for _, g := range groupOrder {
		if cs, ok := buckets[g.typ]; ok {
			groups = append(groups, Group{Title: g.title, Type: g.typ, Commits: cs})
			delete(buckets, g.typ)
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var other []git.Commit
	for _, k := range keys {
		other = append(other, buckets[k]...)
	}
	if len(other) > 0 {
		groups = append(groups, Group{Title: "Other Changes", Type: "other", Commits: other})
	}
	return groups
}
