package gitver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoTag is wrapped by every ResolutionError.
var ErrNoTag = errors.New("no matching tag")

// ResolutionError is returned when no tag was supplied and none could be found.
type ResolutionError struct {
	Pattern string
	Exclude []string
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("no tag matching %s found", e.Pattern)
	if len(e.Exclude) > 0 {
		msg += fmt.Sprintf(" (excluding %s)", strings.Join(e.Exclude, ", "))
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return ErrNoTag }

// TagLister enumerates tag names, most recently created first.
type TagLister interface {
	ListTagsByRecency(ctx context.Context) ([]string, error)
}

// Selector picks the newest tag whose name matches Pattern and contains
// none of the Exclude substrings.
type Selector struct {
	Pattern *regexp.Regexp
	Exclude []string
}

// NewSelector compiles pattern into a Selector.
func NewSelector(pattern string, exclude []string) (Selector, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Selector{}, fmt.Errorf("invalid tag pattern %q: %w", pattern, err)
	}
	return Selector{Pattern: re, Exclude: exclude}, nil
}

// ForkSelector matches fork tags for prefix: ^<prefix>v[0-9].
func ForkSelector(prefix string) Selector {
	return Selector{Pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `v[0-9]`)}
}

// UpstreamSelector matches upstream release tags, skipping betas.
func UpstreamSelector() Selector {
	return Selector{
		Pattern: regexp.MustCompile(`^v[0-9]`),
		Exclude: []string{"-beta"},
	}
}

// Match reports whether tag is accepted by the selector.
func (s Selector) Match(tag string) bool {
	if !s.Pattern.MatchString(tag) {
		return false
	}
	for _, ex := range s.Exclude {
		if ex != "" && strings.Contains(tag, ex) {
			return false
		}
	}
	return true
}

// Resolve returns explicit verbatim when non-empty. Otherwise it lists tags
// and returns the first one the selector accepts.
func (s Selector) Resolve(ctx context.Context, explicit string, lister TagLister) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	tags, err := lister.ListTagsByRecency(ctx)
	if err != nil {
		return "", fmt.Errorf("listing tags: %w", err)
	}
	for _, tag := range tags {
		if s.Match(tag) {
			return tag, nil
		}
	}
	return "", &ResolutionError{Pattern: s.Pattern.String(), Exclude: s.Exclude}
}

// ResolveForkTag resolves the fork tag to verify.
func ResolveForkTag(ctx context.Context, explicit, prefix string, lister TagLister) (string, error) {
	return ForkSelector(prefix).Resolve(ctx, explicit, lister)
}

// ResolveUpstreamTag resolves the upstream tag to sync.
func ResolveUpstreamTag(ctx context.Context, explicit string, lister TagLister) (string, error) {
	return UpstreamSelector().Resolve(ctx, explicit, lister)
}
